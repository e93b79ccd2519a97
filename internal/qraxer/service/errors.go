package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrInvalidRefresh       = errors.New("invalid_refresh_token")
	ErrNotFound             = errors.New("not_found")
	ErrTransitionNotAllowed = errors.New("transition_not_allowed")
	ErrConflict             = errors.New("conflict")
)

// ValidationError reports bad caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalidInput(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Actor is the authenticated technician on whose behalf a service acts.
// Login doubles as the identity of the per-user Odoo sessions.
type Actor struct {
	ID    string
	Login string
	Name  string
}

// DisplayName falls back to the login when Odoo gave no name.
func (a Actor) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Login
}
