package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")

	// Dispatch configuration, fatal at startup
	ErrHandlerNotRegistered = fmt.Errorf("no handler registered for request")
	ErrDuplicateHandler     = fmt.Errorf("handler already registered for request")
	ErrMissingHandler       = fmt.Errorf("expected request has no handler")
	ErrNotARequest          = fmt.Errorf("value is not a request")

	ErrResultFailure = fmt.Errorf("value accessed on a failed result")

	// Business failures carried by results
	ErrNotFound   = fmt.Errorf("not found")
	ErrValidation = fmt.Errorf("validation failed")
	ErrForbidden  = fmt.Errorf("forbidden")

	ErrUnknownConnection = fmt.Errorf("unknown connection")
	ErrInvalidToken      = fmt.Errorf("invalid token")
	ErrTokenGeneration   = fmt.Errorf("token generation failed")
	ErrToolNotFound      = fmt.Errorf("unknown assistant tool")
	ErrTooManyToolRounds = fmt.Errorf("assistant exceeded tool rounds")
	ErrEmptyCompletion   = fmt.Errorf("model returned no candidates")
)
