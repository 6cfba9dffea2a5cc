package grapharena

import (
	"sort"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// MarkReady marks a Received node whose dependencies are all graph-ready
// as graph-ready itself. It returns the dependents that were waiting only
// on this node, sorted by hash. Those are not marked: the caller validates
// each of them in context first.
func (ga *graphArena) MarkReady(index model.ArenaIndex) ([]model.ArenaIndex, error) {
	ga.lock.Lock()
	defer ga.lock.Unlock()

	n := ga.node(index)
	if n.status != externalapi.StatusReceived {
		return nil, errors.Errorf("cannot mark block %s with status %s as ready", n.hash, n.status)
	}
	if n.pendingCount != 0 {
		return nil, errors.Errorf("cannot mark block %s as ready while %d of its dependencies are not",
			n.hash, n.pendingCount)
	}

	ga.readySequence++
	ga.readyCount++
	n.status = externalapi.StatusGraphReady
	n.lastUpdate = ga.now()
	n.subtreeSize = 1
	n.subtreeSequence = ga.readySequence

	if n.parent != model.NoIndex {
		n.height = ga.nodes[n.parent].height + 1
	} else {
		n.height = 0
	}
	for ancestor := n.parent; ancestor != model.NoIndex; ancestor = ga.nodes[ancestor].parent {
		ancestorNode := ga.nodes[ancestor]
		ancestorNode.subtreeSize++
		ancestorNode.subtreeSequence = ga.readySequence
	}

	for _, dependency := range n.dependencies() {
		ga.terminals.remove(dependency)
	}
	ga.terminals.add(index)

	var newlyResolved []model.ArenaIndex
	for _, dependent := range n.dependents() {
		dependentNode := ga.nodes[dependent]
		if dependentNode.status != externalapi.StatusReceived {
			continue
		}
		dependentNode.pendingCount--
		if dependentNode.pendingCount == 0 {
			newlyResolved = append(newlyResolved, dependent)
		}
	}
	sort.Slice(newlyResolved, func(i, j int) bool {
		return ga.nodes[newlyResolved[i]].hash.Less(ga.nodes[newlyResolved[j]].hash)
	})

	log.Tracef("Block %s is graph-ready at height %d (ready sequence %d)", n.hash, n.height, ga.readySequence)
	return newlyResolved, nil
}

// MarkInvalid marks index and every dependent that is not graph-ready as
// PartialInvalid. It returns the indices whose status changed.
func (ga *graphArena) MarkInvalid(index model.ArenaIndex) []model.ArenaIndex {
	ga.lock.Lock()
	defer ga.lock.Unlock()

	return ga.markInvalid(index)
}

func (ga *graphArena) markInvalid(index model.ArenaIndex) []model.ArenaIndex {
	n := ga.node(index)
	if n.status == externalapi.StatusGraphReady {
		panic(errors.Errorf("block %s is graph-ready and cannot become invalid", n.hash))
	}

	var invalidated []model.ArenaIndex
	queue := []model.ArenaIndex{index}
	now := ga.now()
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		currentNode := ga.nodes[current]
		if currentNode.status == externalapi.StatusPartialInvalid ||
			currentNode.status == externalapi.StatusGraphReady ||
			currentNode.status == externalapi.StatusRequested {
			continue
		}
		currentNode.status = externalapi.StatusPartialInvalid
		currentNode.lastUpdate = now
		invalidated = append(invalidated, current)
		queue = append(queue, currentNode.dependents()...)
	}
	return invalidated
}
