package services

import "errors"

// Fehlerklassen, die der HTTP-Layer in Statuscodes übersetzt.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrPaywallExceeded = errors.New("pageview limit exceeded")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Error trägt eine für Clients bestimmte Meldung und ihre Fehlerklasse.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrUsernameRequired = &Error{Kind: ErrValidation, Message: "Username is required"}
	ErrUserNotFound     = &Error{Kind: ErrNotFound, Message: "User not found"}
	ErrArticleNotFound  = &Error{Kind: ErrNotFound, Message: "Article not found"}
	ErrPageViewLimit    = &Error{Kind: ErrPaywallExceeded, Message: "Maximum pageview limit reached"}
)
