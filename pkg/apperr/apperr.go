// Package apperr defines the error kinds flows return to the transport layer
package apperr

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindAuthentication
	KindUnauthenticated
	KindAuthorization
	KindNotFound
	KindCooldown
	KindTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindCooldown:
		return "cooldown"
	case KindTooLarge:
		return "too_large"
	default:
		return "unexpected"
	}
}

type Error struct {
	Kind    Kind
	Message string
	// Per field messages, only set for validation and not found errors
	Fields []string
	Err    error
	// file:line of the caller that produced an unexpected error
	Location string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s, %v", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// Authentication is a failed authentication attempt, like wrong credentials
// or an invalid verification code
func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

// Unauthenticated means no usable bearer token came with the request
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func NotFound(msg string, fields ...string) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Fields: fields}
}

func Cooldown(msg string) *Error {
	return &Error{Kind: KindCooldown, Message: msg}
}

func TooLarge(msg string) *Error {
	return &Error{Kind: KindTooLarge, Message: msg}
}

// Unexpected wraps err and records where it happened. msg is only logged.
func Unexpected(err error, msg string) *Error {
	e := &Error{Kind: KindUnexpected, Message: msg, Err: err}

	if _, file, line, ok := runtime.Caller(1); ok {
		e.Location = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	return e
}

// KindOf returns the kind of the first *Error in err's chain. Anything else
// is unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnexpected
}
