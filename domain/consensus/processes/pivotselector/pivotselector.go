package pivotselector

import (
	"sync"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/outliercache"
	"github.com/pkg/errors"
)

// pivotSelector keeps the pivot chain of the arena and the partition of
// graph-ready blocks into epochs, one epoch per pivot block.
type pivotSelector struct {
	lock sync.RWMutex

	arena         model.GraphArena
	outlierCache  *outliercache.OutlierCache
	eraEpochCount uint64

	pivot    []model.ArenaIndex
	pivotPos map[model.ArenaIndex]uint64

	epochs  [][]model.ArenaIndex
	epochOf map[model.ArenaIndex]uint64

	epochSizes map[model.ArenaIndex]uint64

	checkpoints []*externalapi.DomainHash
}

// New instantiates a new PivotSelector
func New(arena model.GraphArena, outlierCache *outliercache.OutlierCache, eraEpochCount uint64) model.PivotSelector {
	return &pivotSelector{
		arena:         arena,
		outlierCache:  outlierCache,
		eraEpochCount: eraEpochCount,
		pivotPos:      make(map[model.ArenaIndex]uint64),
		epochOf:       make(map[model.ArenaIndex]uint64),
		epochSizes:    make(map[model.ArenaIndex]uint64),
	}
}

// PivotChain returns a copy of the pivot chain, genesis first
func (ps *pivotSelector) PivotChain() []model.ArenaIndex {
	ps.lock.RLock()
	defer ps.lock.RUnlock()

	pivot := make([]model.ArenaIndex, len(ps.pivot))
	copy(pivot, ps.pivot)
	return pivot
}

// PivotTip returns the last pivot block, or model.NoIndex before the
// genesis became ready
func (ps *pivotSelector) PivotTip() model.ArenaIndex {
	ps.lock.RLock()
	defer ps.lock.RUnlock()

	if len(ps.pivot) == 0 {
		return model.NoIndex
	}
	return ps.pivot[len(ps.pivot)-1]
}

func (ps *pivotSelector) PivotIndexOf(index model.ArenaIndex) (uint64, bool) {
	ps.lock.RLock()
	defer ps.lock.RUnlock()

	position, ok := ps.pivotPos[index]
	return position, ok
}

// EpochMembers returns the blocks of the given epoch in execution order,
// the pivot block last
func (ps *pivotSelector) EpochMembers(epochNumber uint64) ([]model.ArenaIndex, error) {
	ps.lock.RLock()
	defer ps.lock.RUnlock()

	if epochNumber >= uint64(len(ps.epochs)) {
		return nil, errors.Errorf("epoch %d is above the pivot tip at %d", epochNumber, len(ps.epochs)-1)
	}
	members := make([]model.ArenaIndex, len(ps.epochs[epochNumber]))
	copy(members, ps.epochs[epochNumber])
	return members, nil
}

func (ps *pivotSelector) EpochNumberOf(index model.ArenaIndex) (uint64, bool) {
	ps.lock.RLock()
	defer ps.lock.RUnlock()

	epochNumber, ok := ps.epochOf[index]
	return epochNumber, ok
}

// Checkpoints returns the genesis hashes of the last two stable eras,
// oldest first
func (ps *pivotSelector) Checkpoints() []*externalapi.DomainHash {
	ps.lock.RLock()
	defer ps.lock.RUnlock()

	return externalapi.CloneHashes(ps.checkpoints)
}
