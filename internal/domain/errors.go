package domain

import "errors"

// Kind classifies failures of the auth flow.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicateUsername
	KindInvalidCredentials
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicateUsername:
		return "duplicate_username"
	case KindInvalidCredentials:
		return "invalid_credentials"
	default:
		return "internal"
	}
}

// Error is the only error type the service layer returns.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "Username and password required"}
	ErrDuplicateUsername  = &Error{Kind: KindDuplicateUsername, Message: "Username taken."}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "Invalid username/password"}
	ErrInternal           = &Error{Kind: KindInternal, Message: "internal server error"}
)

// Validation returns a validation error with a custom message.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Internal wraps an unexpected failure.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err. Errors outside the taxonomy are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
