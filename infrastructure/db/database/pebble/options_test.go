package pebble

import (
	"testing"
	"time"

	"github.com/Hoosat-Oy/treegraphd/infrastructure/db/database"
	"github.com/cockroachdb/pebble/v2"
	"github.com/cockroachdb/pebble/v2/bloom"
	"github.com/cockroachdb/pebble/v2/sstable"
)

func TestOptionsFollowTuning(t *testing.T) {
	tuning := database.DefaultTuning()
	tuning.WriteBufferMiB = 128
	opts := options(tuning)
	defer opts.Cache.Unref()

	if opts.MemTableSize != 128<<20 {
		t.Fatalf("expected a 128 MiB memtable, got %d", opts.MemTableSize)
	}
	if opts.Cache.MaxSize() != int64(tuning.CacheSizeMiB)<<20 {
		t.Fatalf("expected a %d MiB cache, got %d", tuning.CacheSizeMiB, opts.Cache.MaxSize())
	}
	if opts.TargetFileSizes[0] != 32<<20 || opts.TargetFileSizes[2] != 128<<20 {
		t.Fatalf("unexpected target file sizes %v", opts.TargetFileSizes)
	}
	for level, levelOptions := range opts.Levels {
		if levelOptions.FilterPolicy != bloom.FilterPolicy(tuning.BloomBitsPerKey) {
			t.Fatalf("level %d: unexpected filter policy %v", level, levelOptions.FilterPolicy)
		}
	}
	if opts.Levels[0].Compression() != sstable.SnappyCompression {
		t.Fatalf("expected snappy on the top level")
	}
	if opts.Levels[len(opts.Levels)-1].Compression() != sstable.ZstdCompression {
		t.Fatalf("expected zstd on the bottom level")
	}
	if opts.EventListener != nil && opts.EventListener.FlushEnd != nil {
		t.Fatalf("event logging is on although no threshold was set")
	}
}

func TestOptionsWithoutFiltersOrCompression(t *testing.T) {
	tuning := database.DefaultTuning()
	tuning.BloomBitsPerKey = 0
	tuning.Compression = false
	tuning.SlowEventThreshold = time.Second
	opts := options(tuning)
	defer opts.Cache.Unref()

	for level, levelOptions := range opts.Levels {
		if levelOptions.FilterPolicy != pebble.NoFilterPolicy {
			t.Fatalf("level %d: expected no filter, got %v", level, levelOptions.FilterPolicy)
		}
		if levelOptions.Compression() != sstable.NoCompression {
			t.Fatalf("level %d: expected no compression", level)
		}
	}
	if _, ok := opts.Logger.(eventLogger); !ok {
		t.Fatalf("expected pebble to log through the subsystem logger, got %T", opts.Logger)
	}
	if opts.EventListener == nil || opts.EventListener.FlushEnd == nil {
		t.Fatalf("expected slow events to be logged")
	}
}
