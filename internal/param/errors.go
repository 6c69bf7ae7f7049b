package param

import (
	"errors"
	"fmt"
)

// Sentinel errors for parameter lookups and updates.
var (
	ErrNoSuchParameter    = errors.New("no such parameter")
	ErrAmbiguousParameter = errors.New("ambiguous parameter")
	ErrParse              = errors.New("invalid parameter value")
)

// Error describes a failed parameter operation. Unwrap returns one of the
// sentinel errors above so callers can use errors.Is.
type Error struct {
	Code  error
	Name  string
	Value string
	Cause error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrParse:
		return fmt.Sprintf("%v '%s' for parameter %s", e.Code, e.Value, e.Name)
	default:
		return fmt.Sprintf("%v: %s", e.Code, e.Name)
	}
}

func (e *Error) Unwrap() error {
	return e.Code
}

func newNoSuchParameterError(name string) error {
	return &Error{Code: ErrNoSuchParameter, Name: name}
}

func newAmbiguousParameterError(name string) error {
	return &Error{Code: ErrAmbiguousParameter, Name: name}
}

func newParseError(name, value string, cause error) error {
	return &Error{Code: ErrParse, Name: name, Value: value, Cause: cause}
}
