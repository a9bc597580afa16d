package onboarding

import crerr "github.com/cockroachdb/errors"

var ErrInvalidInput = crerr.New("invalid onboarding input")
