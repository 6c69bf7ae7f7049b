package remote

import (
	"errors"
	"fmt"
)

// Lookup errors.
var (
	ErrNoSuchRemote     = errors.New("no such remote")
	ErrAmbiguousRemote  = errors.New("ambiguous remote")
	ErrNoSuchCommand    = errors.New("no such command")
	ErrAmbiguousCommand = errors.New("ambiguous command")
	ErrUnknownFormat    = errors.New("unknown remote format")
)

// LookupError reports a failed remote or command lookup.
type LookupError struct {
	Code   error
	Remote string
	Name   string
}

func (e *LookupError) Error() string {
	if e.Remote != "" {
		return fmt.Sprintf("%v: %s in remote %s", e.Code, e.Name, e.Remote)
	}
	return fmt.Sprintf("%v: %s", e.Code, e.Name)
}

func (e *LookupError) Unwrap() error {
	return e.Code
}

// SourceError reports a malformed remote-definition source.
type SourceError struct {
	Path  string
	Cause error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("remote source %s: %v", e.Path, e.Cause)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}
