// Package audit records every evaluated command line as a JSON line.
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/girs-server/girsd/internal/command"
	"github.com/girs-server/girsd/internal/engine"
	"github.com/girs-server/girsd/internal/hardware"
	"github.com/girs-server/girsd/internal/irsignal"
	"github.com/girs-server/girsd/internal/logging"
	"github.com/girs-server/girsd/internal/param"
	"github.com/girs-server/girsd/internal/remote"
)

// Entry is one audit record.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Session   string    `json:"session"`
	Line      string    `json:"line"`
	Outcome   string    `json:"outcome"`
	Code      string    `json:"code"`
	LatencyMs int64     `json:"latencyMs"`
}

// Logger appends entries to a writer.
type Logger struct {
	mu  sync.Mutex
	out io.WriteCloser
	now func() time.Time
}

// Open creates a logger writing to a rotating file at path.
func Open(path string, opts logging.Options) *Logger {
	return New(logging.Rotating(path, opts))
}

// New creates a logger on out.
func New(out io.WriteCloser) *Logger {
	return &Logger{out: out, now: time.Now}
}

// Observer returns an engine observer recording events for session.
func (l *Logger) Observer(session string) engine.Observer {
	return func(ev engine.Event) {
		l.Record(session, ev)
	}
}

// Record writes one entry for ev.
func (l *Logger) Record(session string, ev engine.Event) {
	entry := Entry{
		Timestamp: l.now().UTC(),
		Session:   session,
		Line:      ev.Line,
		Outcome:   "SUCCESS",
		Code:      Code(ev.Err),
		LatencyMs: ev.Elapsed.Milliseconds(),
	}
	if ev.Err != nil {
		entry.Outcome = "ERROR"
	}
	l.write(entry)
}

func (l *Logger) write(entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal audit entry: %v\n", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(append(data, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write audit entry: %v\n", err)
	}
}

// Close closes the underlying writer.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Close()
}

var codes = []struct {
	err  error
	code string
}{
	{command.ErrNoSuchCommand, "NO_SUCH_COMMAND"},
	{command.ErrAmbiguousCommand, "AMBIGUOUS_COMMAND"},
	{command.ErrSubcommandMissing, "SUBCOMMAND_MISSING"},
	{command.ErrArgumentCount, "INVALID_ARGUMENTS"},
	{command.ErrInvalidArgument, "INVALID_ARGUMENTS"},
	{param.ErrNoSuchParameter, "NO_SUCH_PARAMETER"},
	{param.ErrAmbiguousParameter, "AMBIGUOUS_PARAMETER"},
	{param.ErrParse, "INVALID_ARGUMENTS"},
	{remote.ErrNoSuchRemote, "NO_SUCH_REMOTE"},
	{remote.ErrAmbiguousRemote, "AMBIGUOUS_REMOTE"},
	{remote.ErrNoSuchCommand, "NO_SUCH_REMOTE_COMMAND"},
	{remote.ErrAmbiguousCommand, "AMBIGUOUS_REMOTE_COMMAND"},
	{irsignal.ErrUnknownProtocol, "PROTOCOL"},
	{irsignal.ErrMissingParameter, "PROTOCOL"},
	{irsignal.ErrParameterDomain, "PROTOCOL"},
	{hardware.ErrIncompatibleHardware, "INCOMPATIBLE_HARDWARE"},
	{hardware.ErrNoHardware, "NO_HARDWARE"},
	{hardware.ErrNoSuchHardware, "NO_SUCH_HARDWARE"},
	{hardware.ErrAmbiguousHardware, "AMBIGUOUS_HARDWARE"},
	{hardware.ErrNotOpen, "HARDWARE_NOT_OPEN"},
	{hardware.ErrTimeout, "TIMEOUT"},
}

// Code maps an evaluation error to a stable audit code.
func Code(err error) string {
	if err == nil {
		return "SUCCESS"
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "ERROR"
}
