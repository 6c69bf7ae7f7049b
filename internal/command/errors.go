package command

import (
	"errors"
	"fmt"
)

// Routing errors. They are recoverable and reported to the client as a
// single ERROR line.
var (
	ErrNoSuchCommand     = errors.New("no such command")
	ErrAmbiguousCommand  = errors.New("ambiguous command")
	ErrSubcommandMissing = errors.New("subcommand missing")
	ErrArgumentCount     = errors.New("wrong number of arguments")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrEmptyCommandLine  = errors.New("empty command line")
)

// Error is a routing failure raised while resolving or invoking a command.
type Error struct {
	Code    error
	Name    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: %s: %s", e.Code, e.Name, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Code, e.Name)
}

func (e *Error) Unwrap() error {
	return e.Code
}

func newNoSuchCommandError(name string) error {
	return &Error{Code: ErrNoSuchCommand, Name: name}
}

func newAmbiguousCommandError(name string, candidates []string) error {
	return &Error{Code: ErrAmbiguousCommand, Name: name, Message: fmt.Sprintf("%v", candidates)}
}

func newSubcommandMissingError(name string) error {
	return &Error{Code: ErrSubcommandMissing, Name: name}
}

// ArgumentCountError reports that name was called with the wrong number of
// arguments; usage describes the expected form.
func ArgumentCountError(name, usage string) error {
	return &Error{Code: ErrArgumentCount, Name: name, Message: usage}
}

// InvalidArgumentError reports an argument that could not be interpreted.
func InvalidArgumentError(name, arg string) error {
	return &Error{Code: ErrInvalidArgument, Name: name, Message: fmt.Sprintf("'%s'", arg)}
}
