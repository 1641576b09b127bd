package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so that callers can decide how to report it.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindAuthorization
	KindNotFound
	KindInvalidTransition
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Detail is the human-readable message shown
// to the user verbatim.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Kind.String() + " error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Detail == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrAuth              = &Error{Kind: KindAuth}
	ErrAuthorization     = &Error{Kind: KindAuthorization}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrTransport         = &Error{Kind: KindTransport}
)

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) error {
	return newf(KindValidation, format, args...)
}

func Auth(format string, args ...interface{}) error {
	return newf(KindAuth, format, args...)
}

func Authorization(format string, args ...interface{}) error {
	return newf(KindAuthorization, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return newf(KindNotFound, format, args...)
}

func InvalidTransition(format string, args ...interface{}) error {
	return newf(KindInvalidTransition, format, args...)
}

// Transport wraps a network or upstream failure.
func Transport(err error, format string, args ...interface{}) error {
	e := newf(KindTransport, format, args...)
	e.Err = err
	return e
}

// As unwraps err into an *Error.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindUnknown
}

// DetailOf returns the user-facing message for err.
func DetailOf(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok && appErr.Detail != "" {
		return appErr.Detail
	}
	return err.Error()
}
