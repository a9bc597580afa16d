package onboarding

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var dataValidator = validator.New()

type dataRules struct {
	PrimaryGoal      string `validate:"required"`
	BiggestChallenge string `validate:"required"`
	WorkStyle        string `validate:"required"`
	FocusArea        string `validate:"required"`
}

// Validate checks the answers locally before they are sent. It never changes
// d; submitting does not call it.
func (d Data) Validate(ctx context.Context) error {
	rules := dataRules{
		PrimaryGoal:      strings.TrimSpace(d.PrimaryGoal),
		BiggestChallenge: strings.TrimSpace(d.BiggestChallenge),
		WorkStyle:        strings.TrimSpace(d.WorkStyle),
		FocusArea:        strings.TrimSpace(d.FocusArea),
	}
	if err := dataValidator.StructCtx(ctx, rules); err != nil {
		return fmt.Errorf("%w: validation failed: %v", ErrInvalidInput, err)
	}

	// buddyEmail only matters when a buddy was asked for.
	if !d.WantsBuddy.OrElse(false) {
		return nil
	}
	email, _ := d.BuddyEmail.Get()
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: %s is required when %s is true", ErrInvalidInput, FieldBuddyEmail, FieldWantsBuddy)
	}
	if err := dataValidator.VarCtx(ctx, email, "email"); err != nil {
		return fmt.Errorf("%w: %s is not a valid email: %v", ErrInvalidInput, FieldBuddyEmail, err)
	}

	return nil
}
