// ABOUTME: Authentication error taxonomy.
// ABOUTME: AuthError wraps one of the sentinel causes below with the failing operation.
package auth

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnverifiedAccount  = errors.New("email address not verified")
	ErrAccountExists      = errors.New("an account with this email already exists")
	ErrUnknownAccount     = errors.New("no account with this email")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrSessionExpired     = errors.New("session expired")
	ErrNotAuthenticated   = errors.New("not signed in")
)

// AuthError is returned by Gate and provider operations.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func authErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return err
	}
	return &AuthError{Op: op, Err: err}
}
