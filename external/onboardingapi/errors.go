package onboardingapi

import (
	"fmt"
	"unicode/utf8"

	crerr "github.com/cockroachdb/errors"
)

var (
	// ErrTransport matches every *TransportError.
	ErrTransport = crerr.New("onboarding transport failure")
	// ErrMalformedResponse matches every *MalformedResponseError.
	ErrMalformedResponse = crerr.New("onboarding malformed response")
)

const (
	OpSubmit      = "submit"
	OpFetchStatus = "fetch_status"
)

// TransportError means the request did not complete: the exchange failed or
// the backend answered with a non-2xx status. StatusCode is 0 when no
// response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("onboarding %s: backend status=%d body=%s", e.Op, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("onboarding %s: backend status=%d", e.Op, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("onboarding %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("onboarding %s: transport failure", e.Op)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// MalformedResponseError means a 2xx response arrived but its body did not
// have the expected shape.
type MalformedResponseError struct {
	Op     string
	Reason string
	Body   string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("onboarding %s: malformed response: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("onboarding %s: malformed response: %s", e.Op, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

func abbreviateBody(body []byte) string {
	const max = 512
	if len(body) <= max {
		return string(body)
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "...(truncated)"
}
