package logging

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesFile(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	path := filepath.Join(t.TempDir(), "girsd.log")
	closer := Setup(Options{File: path, MaxSizeMB: 1})
	log.Printf("session %s opened", "abc")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "session abc opened") {
		t.Errorf("Expected log line in file, got %q", data)
	}
	if !strings.Contains(string(data), "logging_test.go") {
		t.Errorf("Expected short file name prefix, got %q", data)
	}
}

func TestSetupWithoutFile(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	closer := Setup(Options{})
	if err := closer.Close(); err != nil {
		t.Errorf("Expected no-op close, got %v", err)
	}
	if log.Flags() != log.LstdFlags|log.Lshortfile {
		t.Errorf("Expected standard flags with short file, got %d", log.Flags())
	}
}

func TestRotatingOptions(t *testing.T) {
	l := Rotating("/tmp/x.log", Options{MaxSizeMB: 5, MaxBackups: 2, MaxAgeDays: 7, Compress: true})
	if l.MaxSize != 5 || l.MaxBackups != 2 || l.MaxAge != 7 || !l.Compress {
		t.Errorf("Unexpected rotation settings %+v", l)
	}
}
