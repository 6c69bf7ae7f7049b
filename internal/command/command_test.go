package command

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func echo(name string) *Func {
	return NewFunc(name, "echo "+name, func(ctx context.Context, args []string) ([]string, error) {
		return append([]string{name}, args...), nil
	})
}

func TestDispatchPrefix(t *testing.T) {
	e := NewExecutor()
	e.Register(echo("version"))
	e.Register(echo("verbose"))

	tests := []struct {
		name        string
		tokens      []string
		expected    []string
		expectedErr error
	}{
		{"ambiguous prefix", []string{"ver"}, nil, ErrAmbiguousCommand},
		{"exact name", []string{"version"}, []string{"version"}, nil},
		{"unique prefix", []string{"versio"}, []string{"version"}, nil},
		{"case insensitive", []string{"VERB", "a"}, []string{"verbose", "a"}, nil},
		{"unknown", []string{"quit"}, nil, ErrNoSuchCommand},
		{"empty", nil, nil, ErrEmptyCommandLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Dispatch(context.Background(), tt.tokens)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("Expected %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestExactNameIsAmbiguousWithLongerName(t *testing.T) {
	e := NewExecutor()
	e.Register(echo("list"))
	e.Register(echo("listall"))

	if _, err := e.Dispatch(context.Background(), []string{"list"}); !errors.Is(err, ErrAmbiguousCommand) {
		t.Errorf("Expected ErrAmbiguousCommand for exact name shared as prefix, got %v", err)
	}
	got, err := e.Dispatch(context.Background(), []string{"lista"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got[0] != "listall" {
		t.Errorf("Expected listall, got %v", got)
	}
}

func TestCommandErrorPropagates(t *testing.T) {
	failure := errors.New("device unplugged")
	e := NewExecutor()
	e.Register(NewFunc("transmit", "", func(ctx context.Context, args []string) ([]string, error) {
		return nil, failure
	}))

	_, err := e.Dispatch(context.Background(), []string{"tr"})
	if err != failure {
		t.Errorf("Expected the command's error unchanged, got %v", err)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	e := NewExecutor()
	e.Register(echo("quit"))

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()
	e.Register(echo("QUIT"))
}

func TestWithSubcommands(t *testing.T) {
	hw := NewWithSubcommands("hardware", "hardware control",
		echo("open"),
		echo("close"),
		echo("version"),
	)
	root := NewExecutor()
	root.Register(hw)
	root.Register(echo("help"))

	got, err := root.Dispatch(context.Background(), []string{"hard", "op", "x"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"open", "x"}) {
		t.Errorf("Expected [open x], got %v", got)
	}

	if _, err := root.Dispatch(context.Background(), []string{"hardware"}); !errors.Is(err, ErrSubcommandMissing) {
		t.Errorf("Expected ErrSubcommandMissing, got %v", err)
	}
	if _, err := root.Dispatch(context.Background(), []string{"hardware", "reset"}); !errors.Is(err, ErrNoSuchCommand) {
		t.Errorf("Expected ErrNoSuchCommand for unknown subcommand, got %v", err)
	}
	if hw.Subcommands().Len() != 3 {
		t.Errorf("Expected 3 subcommands, got %d", hw.Subcommands().Len())
	}
}

func TestNamesAndGet(t *testing.T) {
	e := NewExecutor()
	e.Register(echo("Quit"))
	e.Register(echo("help"))

	if !reflect.DeepEqual(e.Names(), []string{"help", "quit"}) {
		t.Errorf("Expected folded sorted names, got %v", e.Names())
	}
	if _, ok := e.Get("QUIT"); !ok {
		t.Error("Expected Get to ignore case")
	}
	if _, ok := e.Get("qu"); ok {
		t.Error("Get must not resolve prefixes")
	}
}

func TestErrorMessages(t *testing.T) {
	err := ArgumentCountError("transmit raw", "<frequency> <durations...>")
	if err.Error() != "wrong number of arguments: transmit raw: <frequency> <durations...>" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if newNoSuchCommandError("foo").Error() != "no such command: foo" {
		t.Errorf("Unexpected message %q", newNoSuchCommandError("foo").Error())
	}
}
