package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

type bufferWriter struct {
	lock   sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (w *bufferWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.buf.Write(p)
}

func (w *bufferWriter) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.closed = true
	return nil
}

func (w *bufferWriter) lines() []string {
	w.lock.Lock()
	defer w.lock.Unlock()
	return strings.Split(strings.TrimSuffix(w.buf.String(), "\n"), "\n")
}

func TestBackendFiltersByWriterLevel(t *testing.T) {
	backend := NewBackend()
	all := &bufferWriter{}
	warnings := &bufferWriter{}
	if err := backend.AddLogWriter(all, LevelDebug); err != nil {
		t.Fatalf("AddLogWriter: %+v", err)
	}
	if err := backend.AddLogWriter(warnings, LevelWarn); err != nil {
		t.Fatalf("AddLogWriter: %+v", err)
	}
	if err := backend.Run(); err != nil {
		t.Fatalf("Run: %+v", err)
	}
	if err := backend.Run(); err == nil {
		t.Fatalf("expected a second Run to fail")
	}
	if err := backend.AddLogWriter(&bufferWriter{}, LevelInfo); err == nil {
		t.Fatalf("expected adding a writer to a running backend to fail")
	}

	log := backend.Logger("TEST")
	log.SetLevel(LevelDebug)
	log.Tracef("dropped by the logger")
	log.Debugf("debug %d", 1)
	log.Warnf("warn %d", 2)
	backend.Close()

	allLines := all.lines()
	if len(allLines) != 2 || !strings.Contains(allLines[0], "[DBG] TEST: debug 1") ||
		!strings.Contains(allLines[1], "[WRN] TEST: warn 2") {
		t.Fatalf("unexpected lines %q", allLines)
	}
	warningLines := warnings.lines()
	if len(warningLines) != 1 || !strings.Contains(warningLines[0], "warn 2") {
		t.Fatalf("unexpected warning lines %q", warningLines)
	}
	if !all.closed || !warnings.closed {
		t.Fatalf("Close didn't close the writers")
	}
}

func TestBackendCallsite(t *testing.T) {
	backend := NewBackend()
	writer := &bufferWriter{}
	if err := backend.AddLogWriter(writer, LevelTrace); err != nil {
		t.Fatalf("AddLogWriter: %+v", err)
	}
	callsite, err := CallsiteFromString("short")
	if err != nil {
		t.Fatalf("CallsiteFromString: %+v", err)
	}
	backend.SetCallsite(callsite)
	if err := backend.Run(); err != nil {
		t.Fatalf("Run: %+v", err)
	}

	backend.Logger("TEST").Infof("here")
	backend.Close()

	lines := writer.lines()
	if len(lines) != 1 || !strings.Contains(lines[0], "TEST backend_test.go:") {
		t.Fatalf("expected the callsite in %q", lines)
	}
	if _, err := CallsiteFromString("everywhere"); err == nil {
		t.Fatalf("expected an unknown callsite mode to fail")
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		ok       bool
	}{
		{"trace", LevelTrace, true},
		{"DBG", LevelDebug, true},
		{"Warn", LevelWarn, true},
		{"crt", LevelCritical, true},
		{"off", LevelOff, true},
		{"verbose", LevelInfo, false},
	}
	for _, test := range tests {
		level, ok := LevelFromString(test.input)
		if level != test.expected || ok != test.ok {
			t.Fatalf("%s: expected (%s, %t), got (%s, %t)", test.input, test.expected, test.ok, level, ok)
		}
	}
	if Level(42).String() != "OFF" {
		t.Fatalf("expected levels past off to print as OFF, got %s", Level(42))
	}
}
