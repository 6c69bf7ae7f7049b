// Package engine evaluates command lines against the modules of one
// session.
//
// An Engine owns its module table, root executor and parameter registry.
// It is not safe for concurrent use; front ends that share collaborators
// between sessions serialize Eval calls themselves.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/girs-server/girsd/internal/command"
	"github.com/girs-server/girsd/internal/module"
	"github.com/girs-server/girsd/internal/param"
)

// Result texts of the line protocol.
const (
	SuccessMarker = "OK"
	ErrorPrefix   = "ERROR: "
	Goodbye       = "Bye!"
)

// DefaultVersion is reported when the builder is given no version.
const DefaultVersion = "girsd 0.1.0"

// State is the session state of an engine.
type State int

const (
	Running State = iota
	QuitRequested
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case QuitRequested:
		return "quit-requested"
	default:
		return "unknown"
	}
}

// Event describes one evaluated line.
type Event struct {
	Line    string
	Result  string
	Err     error
	Elapsed time.Duration
}

// Observer is notified after every Eval.
type Observer func(Event)

// Engine evaluates lines for one session.
type Engine struct {
	version  string
	modules  *module.Table
	root     *command.Executor
	params   *param.Registry
	state    State
	observer Observer
}

// Eval tokenizes and dispatches line and formats the outcome as a single
// result line. Failures, including panics raised by commands, are rendered
// as ERROR lines.
func (e *Engine) Eval(ctx context.Context, line string) string {
	result, _ := e.Exec(ctx, line)
	return result
}

// Exec is Eval that also returns the failure behind an ERROR line.
func (e *Engine) Exec(ctx context.Context, line string) (result string, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("engine: command panicked on %q: %v", line, r)
			err = fmt.Errorf("internal error: %v", r)
			result = ErrorPrefix + err.Error()
		}
		if e.observer != nil {
			e.observer(Event{Line: line, Result: result, Err: err, Elapsed: time.Since(start)})
		}
	}()

	if e.state == QuitRequested {
		return Goodbye, nil
	}

	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return SuccessMarker, nil
	}

	lines, err := e.root.Dispatch(ctx, tokens)
	if err != nil {
		return ErrorPrefix + err.Error(), err
	}
	if e.state == QuitRequested {
		return Goodbye, nil
	}
	if len(lines) == 0 {
		return SuccessMarker, nil
	}
	return strings.Join(lines, e.params.String(module.ListSeparator)), nil
}

// State returns the session state.
func (e *Engine) State() State { return e.state }

// Quit moves the engine to QuitRequested. It is terminal.
func (e *Engine) Quit() { e.state = QuitRequested }

// Version returns the server version string sent as greeting.
func (e *Engine) Version() string { return e.version }

// ModuleNames returns the names of the loaded modules, sorted.
func (e *Engine) ModuleNames() []string { return e.modules.Names() }

// Commands returns the root executor.
func (e *Engine) Commands() *command.Executor { return e.root }

// Parameters returns the parameter registry.
func (e *Engine) Parameters() *param.Registry { return e.params }

// Modules returns the module table.
func (e *Engine) Modules() *module.Table { return e.modules }
