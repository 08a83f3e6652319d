package erpclean

import (
	"context"
	"errors"
	"net"
)

// Sentinel errors for errors.Is() checks, one per Kind.
var (
	ErrConfiguration        = errors.New("configuration error")
	ErrRemote               = errors.New("remote error")
	ErrUnrecognizedResponse = errors.New("unrecognized response")
	ErrTransport            = errors.New("transport error")
)

// Kind classifies an Error.
type Kind int

const (
	// KindConfiguration covers local problems detected before any network call.
	KindConfiguration Kind = iota + 1
	// KindRemote is a non-200 answer carrying a message or an errors list.
	KindRemote
	// KindUnrecognizedResponse is a non-200 answer with no known error shape.
	KindUnrecognizedResponse
	// KindTransport is a connection, DNS or timeout failure.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindRemote:
		return "remote"
	case KindUnrecognizedResponse:
		return "unrecognized_response"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindRemote:
		return ErrRemote
	case KindUnrecognizedResponse:
		return ErrUnrecognizedResponse
	case KindTransport:
		return ErrTransport
	}
	return nil
}

// Error is returned by every client operation.
type Error struct {
	Kind     Kind
	Op       string
	Message  string
	HTTPCode int
	// Response is set for remote and unrecognized-response errors.
	Response *Response
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String() + " error"
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsTimeout reports whether err is a transport failure caused by a deadline.
func IsTimeout(err error) bool {
	if KindOf(err) != KindTransport {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func configError(op, msg string, cause error) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Message: msg, Err: cause}
}
