// Package repl runs an interactive session on the local terminal.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/girs-server/girsd/internal/engine"
)

// Prompt precedes every input line.
const Prompt = "girsd> "

// Reader supplies input lines.
type Reader interface {
	GetLine(prompt string) (string, error)
}

// Run evaluates lines from in and writes each result to out until the
// engine quits, input ends or ctx is cancelled. lock may be nil when the
// engine shares nothing with other sessions.
func Run(ctx context.Context, eng *engine.Engine, in Reader, out io.Writer, lock sync.Locker) error {
	if _, err := fmt.Fprintln(out, eng.Version()); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := in.GetLine(Prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		if lock != nil {
			lock.Lock()
		}
		result := eng.Eval(ctx, line)
		if lock != nil {
			lock.Unlock()
		}

		if _, err := fmt.Fprintln(out, result); err != nil {
			return err
		}
		if eng.State() == engine.QuitRequested {
			return nil
		}
	}
}
