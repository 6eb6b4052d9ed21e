package service

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	ErrNoChange = errors.New("no changes detected")

	ErrTokenMissing       = errors.New("token is not provided")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// IsAuthFailure reports whether err is one of the session failure kinds.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrTokenMissing) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrUserNotFound)
}
