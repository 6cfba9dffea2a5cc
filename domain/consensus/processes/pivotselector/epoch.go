package pivotselector

import (
	"container/heap"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// collectEpoch assigns to the epoch of the pivot block at position every
// block reachable from it that no earlier epoch consumed, and returns them
// in topological order. Among blocks whose dependencies are all ordered,
// the lowest hash goes first.
func (ps *pivotSelector) collectEpoch(pivotBlock model.ArenaIndex, position uint64) []model.ArenaIndex {
	members := ps.reachableUnassigned(pivotBlock, func(index model.ArenaIndex) bool {
		_, ok := ps.epochOf[index]
		return ok
	})

	hashes := make(map[model.ArenaIndex]*externalapi.DomainHash, len(members))
	inDegree := make(map[model.ArenaIndex]int, len(members))
	dependents := make(map[model.ArenaIndex][]model.ArenaIndex, len(members))
	for member := range members {
		if ps.arena.Status(member) != externalapi.StatusGraphReady {
			panic(errors.Errorf("epoch of %s reaches %s which is not graph-ready",
				ps.arena.Hash(pivotBlock), ps.arena.Hash(member)))
		}
		hashes[member] = ps.arena.Hash(member)
		for _, dependency := range ps.dependencies(member) {
			if _, ok := members[dependency]; ok {
				inDegree[member]++
				dependents[dependency] = append(dependents[dependency], member)
			}
		}
	}

	queue := &hashOrderedQueue{hashes: hashes}
	for member := range members {
		if inDegree[member] == 0 {
			heap.Push(queue, member)
		}
	}
	ordered := make([]model.ArenaIndex, 0, len(members))
	for queue.Len() > 0 {
		current := heap.Pop(queue).(model.ArenaIndex)
		ordered = append(ordered, current)
		for _, dependent := range dependents[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				heap.Push(queue, dependent)
			}
		}
	}
	if len(ordered) != len(members) || ordered[len(ordered)-1] != pivotBlock {
		panic(errors.Errorf("epoch of %s is not a DAG ending at its pivot block", ps.arena.Hash(pivotBlock)))
	}

	for _, member := range ordered {
		ps.epochOf[member] = position
	}
	return ordered
}

func (ps *pivotSelector) dependencies(index model.ArenaIndex) []model.ArenaIndex {
	dependencies := ps.arena.Referees(index)
	if parent := ps.arena.Parent(index); parent != model.NoIndex {
		dependencies = append(dependencies, parent)
	}
	return dependencies
}

// reachableUnassigned returns start and every block reachable from it over
// parent and referee edges without passing through a block for which
// isConsumed returns true
func (ps *pivotSelector) reachableUnassigned(start model.ArenaIndex,
	isConsumed func(model.ArenaIndex) bool) map[model.ArenaIndex]struct{} {

	visited := map[model.ArenaIndex]struct{}{start: {}}
	queue := []model.ArenaIndex{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dependency := range ps.dependencies(current) {
			if _, ok := visited[dependency]; ok || isConsumed(dependency) {
				continue
			}
			visited[dependency] = struct{}{}
			queue = append(queue, dependency)
		}
	}
	return visited
}

// EpochSize returns the number of blocks the chain block index merges
// relative to its own parent chain. For pivot blocks this is the size of
// their epoch.
func (ps *pivotSelector) EpochSize(index model.ArenaIndex) (uint64, error) {
	ps.lock.Lock()
	defer ps.lock.Unlock()

	if position, ok := ps.pivotPos[index]; ok {
		return uint64(len(ps.epochs[position])), nil
	}
	if size, ok := ps.epochSizes[index]; ok {
		return size, nil
	}
	if ps.arena.Status(index) != externalapi.StatusGraphReady {
		return 0, errors.Errorf("block %s is not graph-ready", ps.arena.Hash(index))
	}
	if len(ps.pivot) == 0 {
		return 0, errors.Errorf("no pivot chain to measure %s against", ps.arena.Hash(index))
	}

	forkPoint, _ := ps.deepestPivotAncestor(index)
	forkPosition := ps.pivotPos[forkPoint]
	isConsumed := func(candidate model.ArenaIndex) bool {
		epochNumber, ok := ps.epochOf[candidate]
		return ok && epochNumber <= forkPosition
	}

	size := uint64(len(ps.reachableUnassigned(index, isConsumed)))
	if parent := ps.arena.Parent(index); parent != forkPoint {
		size -= uint64(len(ps.reachableUnassigned(parent, isConsumed)))
	}
	ps.epochSizes[index] = size
	return size, nil
}

type hashOrderedQueue struct {
	indices []model.ArenaIndex
	hashes  map[model.ArenaIndex]*externalapi.DomainHash
}

func (q *hashOrderedQueue) Len() int { return len(q.indices) }
func (q *hashOrderedQueue) Less(i, j int) bool {
	return q.hashes[q.indices[i]].Less(q.hashes[q.indices[j]])
}
func (q *hashOrderedQueue) Swap(i, j int) { q.indices[i], q.indices[j] = q.indices[j], q.indices[i] }
func (q *hashOrderedQueue) Push(x any)    { q.indices = append(q.indices, x.(model.ArenaIndex)) }
func (q *hashOrderedQueue) Pop() any {
	last := q.indices[len(q.indices)-1]
	q.indices = q.indices[:len(q.indices)-1]
	return last
}
