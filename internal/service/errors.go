package service

import "errors"

// Error kinds surfaced by the shop service. Match them with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrPersistence       = errors.New("persistence error")
	ErrSearchUnavailable = errors.New("search index unavailable")
	ErrInterrupted       = errors.New("interrupted")
)

// Error carries a human readable message, the kind it belongs to and the
// underlying cause, if any.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

func validationError(msg string) *Error { return newError(ErrValidation, msg, nil) }
