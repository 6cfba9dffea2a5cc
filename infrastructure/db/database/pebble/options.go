package pebble

import (
	"github.com/Hoosat-Oy/treegraphd/infrastructure/db/database"
	"github.com/cockroachdb/pebble/v2"
	"github.com/cockroachdb/pebble/v2/bloom"
	"github.com/cockroachdb/pebble/v2/sstable"
)

const (
	memTablesBeforeStall = 4
	minTargetFileSize    = int64(16) << 20
	maxTargetFileSize    = int64(256) << 20
	tableBlockSize       = 8 << 10
	tableIndexBlockSize  = 4 << 10
)

// options translates tuning into pebble options. The workload is dominated
// by point lookups of block and epoch hashes, so every level carries the
// same bloom filter.
func options(tuning database.Tuning) *pebble.Options {
	memTableBytes := int64(tuning.WriteBufferMiB) << 20

	// Target files of a quarter memtable keep flushes split into several
	// L0 files without producing tiny tables.
	targetFileSize := min(max(memTableBytes/4, minTargetFileSize), maxTargetFileSize)

	opts := &pebble.Options{
		FormatMajorVersion:          pebble.FormatNewest,
		Cache:                       pebble.NewCache(int64(tuning.CacheSizeMiB) << 20),
		MemTableSize:                uint64(memTableBytes),
		MemTableStopWritesThreshold: memTablesBeforeStall,
		FlushSplitBytes:             targetFileSize,
		L0CompactionThreshold:       4,
		L0StopWritesThreshold:       24,
		BytesPerSync:                1 << 20,
		WALBytesPerSync:             512 << 10,
	}

	filterPolicy := pebble.NoFilterPolicy
	if tuning.BloomBitsPerKey > 0 {
		filterPolicy = bloom.FilterPolicy(tuning.BloomBitsPerKey)
	}
	for level := range opts.Levels {
		opts.TargetFileSizes[level] = targetFileSize << level
		opts.Levels[level] = pebble.LevelOptions{
			BlockSize:      tableBlockSize,
			IndexBlockSize: tableIndexBlockSize,
			FilterPolicy:   filterPolicy,
			Compression:    levelCompression(tuning.Compression, level == len(opts.Levels)-1),
		}
	}

	if tuning.SlowEventThreshold > 0 {
		opts.Logger = eventLogger{}
		opts.EventListener = slowEventListener(tuning.SlowEventThreshold)
	}

	opts.EnsureDefaults()
	return opts
}

// levelCompression compresses the bottom level with zstd, since it holds
// the bulk of the data and is rarely rewritten
func levelCompression(enabled bool, bottom bool) func() *sstable.CompressionProfile {
	switch {
	case !enabled:
		return func() *sstable.CompressionProfile { return sstable.NoCompression }
	case bottom:
		return func() *sstable.CompressionProfile { return sstable.ZstdCompression }
	default:
		return func() *sstable.CompressionProfile { return sstable.SnappyCompression }
	}
}
