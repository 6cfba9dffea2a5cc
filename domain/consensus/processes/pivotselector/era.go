package pivotselector

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

// stableEraGenesisPositions returns the pivot positions of the last two
// stable era genesis blocks, oldest first. An era becomes stable once the
// pivot reaches the start of the era after it.
func (ps *pivotSelector) stableEraGenesisPositions() []uint64 {
	if ps.eraEpochCount == 0 || len(ps.pivot) == 0 {
		return nil
	}
	tipHeight := uint64(len(ps.pivot) - 1)
	if tipHeight < ps.eraEpochCount {
		return []uint64{0}
	}
	stableEra := tipHeight/ps.eraEpochCount - 1
	if stableEra == 0 {
		return []uint64{0}
	}
	return []uint64{(stableEra - 1) * ps.eraEpochCount, stableEra * ps.eraEpochCount}
}

// refreshCheckpoints recomputes the checkpoints and, when the latest one
// moved, drops outlier cache entries for blocks outside its subtree
func (ps *pivotSelector) refreshCheckpoints(previous []*externalapi.DomainHash, update *model.PivotUpdate) {
	positions := ps.stableEraGenesisPositions()
	checkpoints := make([]*externalapi.DomainHash, len(positions))
	for i, position := range positions {
		checkpoints[i] = ps.arena.Hash(ps.pivot[position])
	}
	if externalapi.HashesEqual(previous, checkpoints) {
		return
	}
	ps.checkpoints = checkpoints
	update.CheckpointsChanged = true

	if len(positions) == 0 || positions[len(positions)-1] == 0 {
		return
	}
	eraGenesis := ps.pivot[positions[len(positions)-1]]
	retained := make(map[externalapi.DomainHash]struct{})
	stack := []model.ArenaIndex{eraGenesis}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		retained[*ps.arena.Hash(current)] = struct{}{}
		for _, child := range ps.arena.Children(current) {
			if ps.arena.Status(child) == externalapi.StatusGraphReady {
				stack = append(stack, child)
			}
		}
	}
	pruned := ps.outlierCache.IntersectUpdate(retained)
	evicted := ps.outlierCache.EvictStale(ps.arena.ReadySequence())
	log.Debugf("Era genesis moved to %s: pruned %d outlier cache entries outside its subtree and %d stale ones",
		ps.arena.Hash(eraGenesis), pruned, evicted)
}
