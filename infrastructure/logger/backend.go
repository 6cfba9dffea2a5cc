package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync/atomic"

	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

const (
	normalLogSize = 512
	logsBuffer    = 256
)

// Callsite selects whether log lines carry the file and line they were
// written from.
type Callsite uint32

// Callsite modes.
const (
	CallsiteNone Callsite = iota
	CallsiteShort
	CallsiteLong
)

// CallsiteFromString parses "none", "short" or "long"
func CallsiteFromString(s string) (Callsite, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CallsiteNone, nil
	case "short":
		return CallsiteShort, nil
	case "long":
		return CallsiteLong, nil
	}
	return CallsiteNone, errors.Errorf("unknown callsite mode %q, expected one of {none, short, long}", s)
}

// Rotation is the rotation policy of a log file
type Rotation struct {
	ThresholdKB int64
	MaxRolls    int
}

// DefaultRotation keeps six rolled files of 50 MB each
var DefaultRotation = Rotation{ThresholdKB: 50 * 1000, MaxRolls: 6}

type levelWriter struct {
	io.WriteCloser
	minLevel Level
}

// Backend fans log entries out to its writers from a single goroutine, so
// subsystems never interleave partial lines. Writers are added before Run.
type Backend struct {
	callsite  atomic.Uint32
	running   atomic.Bool
	writers   []levelWriter
	writeChan chan logEntry
	done      chan struct{}
}

// NewBackend creates a new logger backend.
func NewBackend() *Backend {
	return &Backend{
		writeChan: make(chan logEntry, logsBuffer),
		done:      make(chan struct{}),
	}
}

// SetCallsite changes whether subsequent log lines carry their callsite.
func (b *Backend) SetCallsite(callsite Callsite) {
	b.callsite.Store(uint32(callsite))
}

func (b *Backend) loadCallsite() Callsite {
	return Callsite(b.callsite.Load())
}

// AddLogWriter adds a writer that receives every entry of minLevel or
// above. Used for stdout and for capturing logs in tests.
func (b *Backend) AddLogWriter(writer io.WriteCloser, minLevel Level) error {
	if b.IsRunning() {
		return errors.New("the logger is already running")
	}
	b.writers = append(b.writers, levelWriter{WriteCloser: writer, minLevel: minLevel})
	return nil
}

// AddLogFile adds a rotated log file that receives every entry of minLevel
// or above. The file and its directory are created as needed.
func (b *Backend) AddLogFile(logFile string, minLevel Level, rotation Rotation) error {
	if b.IsRunning() {
		return errors.New("the logger is already running")
	}
	if logDir := filepath.Dir(logFile); logDir != "." {
		err := os.MkdirAll(logDir, 0700)
		if err != nil {
			return errors.Wrapf(err, "failed to create log directory %s", logDir)
		}
	}
	r, err := rotator.New(logFile, rotation.ThresholdKB, false, rotation.MaxRolls)
	if err != nil {
		return errors.Wrapf(err, "failed to create file rotator for %s", logFile)
	}
	return b.AddLogWriter(r, minLevel)
}

// Run starts delivering entries. It may only be called once.
func (b *Backend) Run() error {
	if !b.running.CompareAndSwap(false, true) {
		return errors.New("the logger is already running")
	}
	go func() {
		defer close(b.done)
		defer func() {
			if err := recover(); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Fatal error in the log backend: %+v\n%s\n", err, debug.Stack())
			}
		}()
		for entry := range b.writeChan {
			for _, writer := range b.writers {
				if entry.level >= writer.minLevel {
					_, _ = writer.Write(entry.log)
				}
			}
		}
	}()
	return nil
}

// IsRunning returns whether Run has been called.
func (b *Backend) IsRunning() bool {
	return b.running.Load()
}

// Close flushes the queued entries and closes every writer.
func (b *Backend) Close() {
	if b.IsRunning() {
		close(b.writeChan)
		<-b.done
	}
	for _, writer := range b.writers {
		_ = writer.Close()
	}
}

// Logger returns a new logger for a particular subsystem that writes to the
// Backend b. A tag describes the subsystem and is included in all log
// messages. The logger uses the info verbosity level by default.
//
// Messages are dropped while the backend is not running, which keeps
// package tests silent unless they call Run.
func (b *Backend) Logger(subsystemTag string) *Logger {
	return &Logger{level: LevelInfo, tag: subsystemTag, b: b, writeChan: b.writeChan}
}
