package onboarding

import (
	"encoding/json"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

const (
	FieldPrimaryGoal         = "primaryGoal"
	FieldBiggestChallenge    = "biggestChallenge"
	FieldWorkStyle           = "workStyle"
	FieldFocusArea           = "focusArea"
	FieldFirstGoal           = "firstGoal"
	FieldWantsBuddy          = "wantsBuddy"
	FieldBuddyEmail          = "buddyEmail"
	FieldOnboardingCompleted = "onboardingCompleted"
	FieldOnboardingData      = "onboardingData"
)

// Data is one user's answers to the onboarding questionnaire.
type Data struct {
	PrimaryGoal      string
	BiggestChallenge string
	// WorkStyle values are defined by the backend.
	WorkStyle  string
	FocusArea  string
	FirstGoal  Optional[string]
	WantsBuddy Optional[bool]
	BuddyEmail Optional[string]
}

// Status is the backend's view of a user's onboarding. Data is nil when absent.
type Status struct {
	OnboardingCompleted bool
	OnboardingData      *Data
}

func (d Data) MarshalJSON() ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	w := objectWriter{buf: buf}
	w.open()
	w.value(FieldPrimaryGoal, d.PrimaryGoal)
	w.value(FieldBiggestChallenge, d.BiggestChallenge)
	w.value(FieldWorkStyle, d.WorkStyle)
	w.value(FieldFocusArea, d.FocusArea)
	if !d.FirstGoal.IsOmitted() {
		w.raw(FieldFirstGoal, d.FirstGoal.MarshalJSON)
	}
	if !d.WantsBuddy.IsOmitted() {
		w.raw(FieldWantsBuddy, d.WantsBuddy.MarshalJSON)
	}
	if !d.BuddyEmail.IsOmitted() {
		w.raw(FieldBuddyEmail, d.BuddyEmail.MarshalJSON)
	}
	w.close()

	if w.err != nil {
		return nil, w.err
	}
	return append([]byte(nil), buf.B...), nil
}

// UnmarshalJSON keeps a missing key and an explicit null apart for the
// optional fields. Unknown keys are ignored.
func (d *Data) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := sonic.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode onboarding data object: %w", err)
	}
	if fields == nil {
		return fmt.Errorf("decode onboarding data object: got null")
	}

	var out Data
	required := []struct {
		key string
		dst *string
	}{
		{FieldPrimaryGoal, &out.PrimaryGoal},
		{FieldBiggestChallenge, &out.BiggestChallenge},
		{FieldWorkStyle, &out.WorkStyle},
		{FieldFocusArea, &out.FocusArea},
	}
	for _, item := range required {
		raw, ok := fields[item.key]
		if !ok || isJSONNull(raw) {
			continue
		}
		if err := sonic.Unmarshal(raw, item.dst); err != nil {
			return fmt.Errorf("decode %s: %w", item.key, err)
		}
	}

	if raw, ok := fields[FieldFirstGoal]; ok {
		if err := out.FirstGoal.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("decode %s: %w", FieldFirstGoal, err)
		}
	}
	if raw, ok := fields[FieldWantsBuddy]; ok {
		if err := out.WantsBuddy.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("decode %s: %w", FieldWantsBuddy, err)
		}
	}
	if raw, ok := fields[FieldBuddyEmail]; ok {
		if err := out.BuddyEmail.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("decode %s: %w", FieldBuddyEmail, err)
		}
	}

	*d = out
	return nil
}

func (s Status) MarshalJSON() ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	w := objectWriter{buf: buf}
	w.open()
	w.value(FieldOnboardingCompleted, s.OnboardingCompleted)
	if s.OnboardingData == nil {
		w.raw(FieldOnboardingData, func() ([]byte, error) { return []byte("null"), nil })
	} else {
		w.raw(FieldOnboardingData, s.OnboardingData.MarshalJSON)
	}
	w.close()

	if w.err != nil {
		return nil, w.err
	}
	return append([]byte(nil), buf.B...), nil
}

type objectWriter struct {
	buf    *bytebufferpool.ByteBuffer
	fields int
	err    error
}

func (w *objectWriter) open() {
	_ = w.buf.WriteByte('{')
}

func (w *objectWriter) close() {
	_ = w.buf.WriteByte('}')
}

func (w *objectWriter) value(key string, value any) {
	w.raw(key, func() ([]byte, error) { return sonic.Marshal(value) })
}

func (w *objectWriter) raw(key string, encode func() ([]byte, error)) {
	if w.err != nil {
		return
	}
	encoded, err := encode()
	if err != nil {
		w.err = fmt.Errorf("encode %s: %w", key, err)
		return
	}

	if w.fields > 0 {
		_ = w.buf.WriteByte(',')
	}
	_ = w.buf.WriteByte('"')
	_, _ = w.buf.WriteString(key)
	_, _ = w.buf.WriteString(`":`)
	_, _ = w.buf.Write(encoded)
	w.fields++
}
