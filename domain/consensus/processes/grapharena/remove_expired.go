package grapharena

import (
	"time"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/hashes"
)

// RemoveExpired removes every node that is not graph-ready, was last
// updated more than olderThan ago and is not protected, together with
// everything that depends on it. Placeholders that no remaining node
// depends on are removed as well. The removed hashes are returned sorted.
func (ga *graphArena) RemoveExpired(olderThan time.Duration, isProtected func(model.ArenaIndex) bool) []*externalapi.DomainHash {
	ga.lock.Lock()
	defer ga.lock.Unlock()

	cutoff := ga.now().Add(-olderThan)

	toRemove := make(indexSet)
	var queue []model.ArenaIndex
	for index, n := range ga.nodes {
		if n == nil || n.status == externalapi.StatusGraphReady || n.lastUpdate.After(cutoff) {
			continue
		}
		if isProtected != nil && isProtected(model.ArenaIndex(index)) {
			continue
		}
		queue = append(queue, model.ArenaIndex(index))
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, ok := toRemove[current]; ok {
			continue
		}
		if ga.nodes[current].status == externalapi.StatusGraphReady {
			continue
		}
		toRemove.add(current)
		queue = append(queue, ga.nodes[current].dependents()...)
	}

	var removed []*externalapi.DomainHash
	for len(toRemove) > 0 {
		orphanedPlaceholders := make(indexSet)
		for index := range toRemove {
			n := ga.nodes[index]
			for _, dependency := range n.dependencies() {
				if _, ok := toRemove[dependency]; ok {
					continue
				}
				dependencyNode := ga.nodes[dependency]
				if dependency == n.parent {
					dependencyNode.children.remove(index)
				} else {
					dependencyNode.referrers.remove(index)
				}
				if dependencyNode.status == externalapi.StatusRequested &&
					len(dependencyNode.children) == 0 && len(dependencyNode.referrers) == 0 {
					orphanedPlaceholders.add(dependency)
				}
			}
		}
		for index := range toRemove {
			removed = append(removed, ga.nodes[index].hash)
			ga.free(index)
		}
		toRemove = orphanedPlaceholders
	}

	if len(removed) > 0 {
		log.Debugf("Removed %d expired blocks from the arena", len(removed))
	}
	hashes.SortHashes(removed)
	return removed
}

func (ga *graphArena) free(index model.ArenaIndex) {
	n := ga.nodes[index]
	delete(ga.hashToIndex, *n.hash)
	if ga.genesis == index {
		ga.genesis = model.NoIndex
	}
	ga.nodes[index] = nil
	ga.freeIndices = append(ga.freeIndices, index)
}
