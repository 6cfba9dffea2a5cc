package ldb

import (
	"github.com/Hoosat-Oy/treegraphd/infrastructure/db/database"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// options translates tuning into goleveldb options. Seek-triggered
// compactions are disabled because epoch execution reads the same keys
// many times while the graph is written elsewhere.
func options(tuning database.Tuning) *opt.Options {
	ldbOptions := &opt.Options{
		BlockCacheCapacity:     tuning.CacheSizeMiB * opt.MiB,
		WriteBuffer:            tuning.WriteBufferMiB * opt.MiB,
		Compression:            opt.NoCompression,
		DisableSeeksCompaction: true,
	}
	if tuning.Compression {
		ldbOptions.Compression = opt.SnappyCompression
	}
	if tuning.BloomBitsPerKey > 0 {
		ldbOptions.Filter = filter.NewBloomFilter(tuning.BloomBitsPerKey)
	}
	return ldbOptions
}
