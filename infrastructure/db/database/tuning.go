package database

import (
	"time"

	"github.com/pkg/errors"
)

// Tuning holds the storage settings an operator may change. Both drivers
// read the same settings and ignore what they have no use for.
type Tuning struct {
	// CacheSizeMiB is the size of the block cache.
	CacheSizeMiB int

	// WriteBufferMiB is the size of the in-memory write buffer (the
	// memtable in pebble).
	WriteBufferMiB int

	// BloomBitsPerKey sets the bloom filter density of every table. Zero
	// disables bloom filters.
	BloomBitsPerKey int

	// Compression enables snappy compression of table blocks.
	Compression bool

	// SlowEventThreshold makes the driver log flushes and compactions that
	// run for at least this long. Zero turns event logging off.
	SlowEventThreshold time.Duration
}

// DefaultTuning returns the settings treegraphd uses when none are given
func DefaultTuning() Tuning {
	return Tuning{
		CacheSizeMiB:    256,
		WriteBufferMiB:  64,
		BloomBitsPerKey: 16,
		Compression:     true,
	}
}

// Validate returns an error if any of the settings is out of range
func (t Tuning) Validate() error {
	if t.CacheSizeMiB <= 0 {
		return errors.Errorf("cache size must be positive, got %d MiB", t.CacheSizeMiB)
	}
	if t.WriteBufferMiB <= 0 || t.WriteBufferMiB >= 4096 {
		return errors.Errorf("write buffer must be between 1 and 4095 MiB, got %d", t.WriteBufferMiB)
	}
	if t.BloomBitsPerKey < 0 || t.BloomBitsPerKey > 32 {
		return errors.Errorf("bloom bits per key must be between 0 and 32, got %d", t.BloomBitsPerKey)
	}
	if t.SlowEventThreshold < 0 {
		return errors.Errorf("slow event threshold must not be negative, got %s", t.SlowEventThreshold)
	}
	return nil
}
