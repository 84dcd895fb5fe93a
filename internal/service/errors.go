package service

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrUsernameTaken      = errors.New("username is already taken")
)

// ValidationError collects every missing or malformed field of a request so
// callers get the full list in one round trip.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}
