package difficultycache

import (
	"math/big"
	"sync"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

// DifficultyCache maps period boundary block hashes to the target
// difficulty of the following period. Once full, the oldest entry is
// evicted first.
type DifficultyCache struct {
	lock     sync.RWMutex
	entries  map[externalapi.DomainHash]*big.Int
	order    []externalapi.DomainHash
	capacity int
}

// New returns a new DifficultyCache
func New(capacity int) *DifficultyCache {
	return &DifficultyCache{
		entries:  make(map[externalapi.DomainHash]*big.Int, capacity),
		order:    make([]externalapi.DomainHash, 0, capacity),
		capacity: capacity,
	}
}

// Get returns a copy of the difficulty cached for boundaryHash
func (dc *DifficultyCache) Get(boundaryHash *externalapi.DomainHash) (*big.Int, bool) {
	dc.lock.RLock()
	defer dc.lock.RUnlock()

	difficulty, ok := dc.entries[*boundaryHash]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(difficulty), true
}

// Add caches difficulty for boundaryHash
func (dc *DifficultyCache) Add(boundaryHash *externalapi.DomainHash, difficulty *big.Int) {
	dc.lock.Lock()
	defer dc.lock.Unlock()

	if _, ok := dc.entries[*boundaryHash]; ok {
		dc.entries[*boundaryHash] = new(big.Int).Set(difficulty)
		return
	}
	if dc.capacity <= 0 {
		return
	}
	if len(dc.order) == dc.capacity {
		oldest := dc.order[0]
		dc.order = dc.order[1:]
		delete(dc.entries, oldest)
	}
	dc.entries[*boundaryHash] = new(big.Int).Set(difficulty)
	dc.order = append(dc.order, *boundaryHash)
}

// Len returns the number of cached entries
func (dc *DifficultyCache) Len() int {
	dc.lock.RLock()
	defer dc.lock.RUnlock()

	return len(dc.entries)
}
