package outliercache

import (
	"sync"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/lrucache"
)

type outlierEntry struct {
	set            OutlierSet
	sequenceNumber uint64
}

// OutlierCache memoizes the outlier set of pivot candidates, keyed by the
// candidate's block hash.
//
// An entry is stamped with the arena's ready sequence at the time it was
// computed, and is served only while no block joined the candidate's
// subtree since, and while it is not older than the sliding window. Sets
// of MaxOutlierSize members or more are never cached.
//
// Lookups share a read lock. The LRU keeps its own recency order consistent,
// so only removals and insertions take the write lock.
type OutlierCache struct {
	lock           sync.RWMutex
	cache          *lrucache.LRUCache[*outlierEntry]
	maxOutlierSize int
	window         uint64
}

// New returns a new OutlierCache
func New(capacity int, maxOutlierSize int, window uint64) *OutlierCache {
	return &OutlierCache{
		cache:          lrucache.New[*outlierEntry](capacity, false),
		maxOutlierSize: maxOutlierSize,
		window:         window,
	}
}

// Get returns the cached outlier set of candidate. subtreeSequence is the
// ready sequence of the latest block that joined the candidate's subtree,
// and currentSequence is the arena's current ready sequence.
func (oc *OutlierCache) Get(candidate *externalapi.DomainHash, subtreeSequence, currentSequence uint64) (OutlierSet, bool) {
	oc.lock.RLock()
	entry, ok := oc.cache.Get(candidate)
	oc.lock.RUnlock()
	if !ok {
		return OutlierSet{}, false
	}
	if oc.isStale(entry, subtreeSequence, currentSequence) {
		oc.removeStale(candidate, subtreeSequence, currentSequence)
		return OutlierSet{}, false
	}
	return entry.set, true
}

func (oc *OutlierCache) isStale(entry *outlierEntry, subtreeSequence, currentSequence uint64) bool {
	return entry.sequenceNumber < subtreeSequence || currentSequence-entry.sequenceNumber > oc.window
}

// removeStale drops the entry of candidate unless a fresh one replaced it
// after the read lock was released
func (oc *OutlierCache) removeStale(candidate *externalapi.DomainHash, subtreeSequence, currentSequence uint64) {
	oc.lock.Lock()
	defer oc.lock.Unlock()

	entry, ok := oc.cache.Get(candidate)
	if ok && oc.isStale(entry, subtreeSequence, currentSequence) {
		oc.cache.Remove(candidate)
	}
}

// Set caches the outlier set of candidate as computed at sequenceNumber. It
// returns false if the set is too large to be cached.
func (oc *OutlierCache) Set(candidate *externalapi.DomainHash, set OutlierSet, sequenceNumber uint64) bool {
	if set.Len() >= oc.maxOutlierSize {
		return false
	}

	oc.lock.Lock()
	defer oc.lock.Unlock()

	oc.cache.Add(candidate, &outlierEntry{set: set, sequenceNumber: sequenceNumber})
	return true
}

// IntersectUpdate drops every entry whose candidate is not in retained
func (oc *OutlierCache) IntersectUpdate(retained map[externalapi.DomainHash]struct{}) int {
	oc.lock.Lock()
	defer oc.lock.Unlock()

	return oc.cache.RemoveIf(func(candidate *externalapi.DomainHash, _ *outlierEntry) bool {
		_, ok := retained[*candidate]
		return !ok
	})
}

// EvictStale drops every entry that fell out of the sliding window
func (oc *OutlierCache) EvictStale(currentSequence uint64) int {
	oc.lock.Lock()
	defer oc.lock.Unlock()

	return oc.cache.RemoveIf(func(_ *externalapi.DomainHash, entry *outlierEntry) bool {
		return currentSequence-entry.sequenceNumber > oc.window
	})
}

// Len returns the number of cached entries
func (oc *OutlierCache) Len() int {
	oc.lock.RLock()
	defer oc.lock.RUnlock()

	return oc.cache.Len()
}

// Clear drops every entry
func (oc *OutlierCache) Clear() {
	oc.lock.Lock()
	defer oc.lock.Unlock()

	oc.cache.Clear()
}
