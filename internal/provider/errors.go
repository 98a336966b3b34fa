package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"unicode/utf8"

	"storybook-ai/backend/internal/credentials"
)

// Error is a failed call to an upstream provider. Message never contains
// the credentials used for the call.
type Error struct {
	Provider   string
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed with status %d: %s", e.Provider, e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Provider, e.Operation, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call ran out of time
func (e *Error) Timeout() bool {
	return IsTimeout(e.Err)
}

// IsTimeout reports whether err is a deadline or network timeout
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func newError(provider, operation string, status int, creds credentials.Credentials, err error) *Error {
	return &Error{
		Provider:   provider,
		Operation:  operation,
		StatusCode: status,
		Message:    credentials.Redact(err.Error(), creds),
		Err:        err,
	}
}

// maxErrorBody bounds the upstream response text kept in an Error
const maxErrorBody = 512

func statusError(provider, operation string, status int, body []byte, creds credentials.Credentials) *Error {
	// Redact before cutting so a secret spanning the limit is still matched
	msg := truncate(credentials.Redact(string(body), creds), maxErrorBody)
	if msg == "" {
		msg = "empty response"
	}
	return newError(provider, operation, status, creds, errors.New(msg))
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
