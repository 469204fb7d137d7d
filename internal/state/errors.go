package state

import (
	"context"
	"errors"

	"social-wallet-client-go/internal/api"
	"social-wallet-client-go/internal/validation"
)

var (
	// ErrNotAuthenticated is returned by token-gated actions when no session
	// token is held.
	ErrNotAuthenticated = errors.New("Please log in to continue")

	// ErrSuperseded is returned when a newer request on the same operation
	// (or a teardown) made this result obsolete. Nothing was applied.
	ErrSuperseded = errors.New("request superseded by a newer one")
)

// SessionExpiredError is a 401 from the current-user endpoint. The session
// has already been logged out when it is returned.
type SessionExpiredError struct {
	Err error
}

func (e *SessionExpiredError) Error() string {
	return "Session expired. Please log in again"
}

func (e *SessionExpiredError) Unwrap() error {
	return e.Err
}

// errorMessage is the text a store records in its Error field.
func errorMessage(err error) string {
	var (
		valErr     *validation.ValidationError
		reqErr     *api.RequestError
		netErr     *api.NetworkError
		expiredErr *SessionExpiredError
	)
	switch {
	case errors.As(err, &expiredErr):
		return expiredErr.Error()
	case errors.As(err, &valErr):
		return valErr.Message
	case errors.As(err, &reqErr):
		return reqErr.Message
	case errors.As(err, &netErr):
		return netErr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out. Please try again"
	default:
		return err.Error()
	}
}
