package shopping

import "errors"

// Error kinds. Every *Error unwraps to exactly one of these.
var (
	ErrLoad       = errors.New("load failed")
	ErrCreate     = errors.New("create failed")
	ErrSubmit     = errors.New("submit failed")
	ErrDelete     = errors.New("delete failed")
	ErrValidation = errors.New("validation failed")
)

// Backend failures callers may need to tell apart.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Error is a failed session operation. Message is safe to show to a user.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}
