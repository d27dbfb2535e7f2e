package domain

import (
	"errors"
	"fmt"
)

// ErrProductNotFound is returned by gateways when the product service has no
// record for the requested id.
var ErrProductNotFound = errors.New("product not found")

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindInvalidInput
	KindUpstreamFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindUpstreamFailure:
		return "upstream_failure"
	default:
		return "unknown"
	}
}

// Error is a classified failure. The HTTP layer picks a status from Kind.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

func UpstreamFailure(err error, format string, args ...any) *Error {
	return &Error{Kind: KindUpstreamFailure, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsInvalidInput(err error) bool {
	return KindOf(err) == KindInvalidInput
}
