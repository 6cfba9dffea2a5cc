package pivotselector

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/outliercache"
	"github.com/pkg/errors"
)

// IsEligible returns whether index may carry weight: it must be
// graph-ready and its timestamp must not precede its parent's.
func (ps *pivotSelector) IsEligible(index model.ArenaIndex) bool {
	if ps.arena.Status(index) != externalapi.StatusGraphReady {
		return false
	}
	parent := ps.arena.Parent(index)
	if parent == model.NoIndex {
		return true
	}
	return ps.arena.Header(index).TimeInMilliseconds >= ps.arena.Header(parent).TimeInMilliseconds
}

// Weight returns the number of graph-ready blocks in the subtree of index
// that are not outliers for it. Ineligible blocks weigh nothing.
func (ps *pivotSelector) Weight(index model.ArenaIndex) uint64 {
	if !ps.IsEligible(index) {
		return 0
	}
	outliers := ps.outliers(index, ps.arena.ReadySequence())
	return ps.arena.SubtreeSize(index) - uint64(outliers.Len())
}

// outliers returns the outlier set of index. Below an ineligible child
// everything graph-ready is an outlier, below an eligible one only the
// child's own outliers are.
func (ps *pivotSelector) outliers(index model.ArenaIndex, currentSequence uint64) outliercache.OutlierSet {
	hash := ps.arena.Hash(index)
	if cached, ok := ps.outlierCache.Get(hash, ps.arena.SubtreeSequence(index), currentSequence); ok {
		return cached
	}

	members := make(map[model.ArenaIndex]struct{})
	for _, child := range ps.arena.Children(index) {
		if ps.arena.Status(child) != externalapi.StatusGraphReady {
			continue
		}
		if !ps.IsEligible(child) {
			ps.collectReadySubtree(child, members)
			continue
		}
		ps.outliers(child, currentSequence).ForEach(func(outlier model.ArenaIndex) {
			members[outlier] = struct{}{}
		})
	}

	set := outliercache.NewOutlierSet(members)
	if !ps.outlierCache.Set(hash, set, currentSequence) {
		log.Tracef("Outlier set of %s has %d members and is not cached", hash, set.Len())
	}
	return set
}

func (ps *pivotSelector) collectReadySubtree(root model.ArenaIndex, members map[model.ArenaIndex]struct{}) {
	stack := []model.ArenaIndex{root}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		members[current] = struct{}{}
		for _, child := range ps.arena.Children(current) {
			if ps.arena.Status(child) == externalapi.StatusGraphReady {
				stack = append(stack, child)
			}
		}
	}
}

// heavier returns whether candidate beats incumbent: a larger weight wins
// and equal weights go to the lower hash.
func (ps *pivotSelector) heavier(candidate model.ArenaIndex, candidateWeight uint64,
	incumbent model.ArenaIndex, incumbentWeight uint64) bool {

	if candidateWeight != incumbentWeight {
		return candidateWeight > incumbentWeight
	}
	candidateHash, incumbentHash := ps.arena.Hash(candidate), ps.arena.Hash(incumbent)
	if candidateHash.Equal(incumbentHash) && candidate != incumbent {
		panic(errors.Errorf("arena indices %d and %d share the hash %s", candidate, incumbent, candidateHash))
	}
	return candidateHash.Less(incumbentHash)
}

// heaviestChild returns the eligible child of index with the largest
// weight, or model.NoIndex if there is none.
func (ps *pivotSelector) heaviestChild(index model.ArenaIndex) model.ArenaIndex {
	best := model.NoIndex
	var bestWeight uint64
	for _, child := range ps.arena.Children(index) {
		weight := ps.Weight(child)
		if weight == 0 {
			continue
		}
		if best == model.NoIndex || ps.heavier(child, weight, best, bestWeight) {
			best, bestWeight = child, weight
		}
	}
	return best
}
