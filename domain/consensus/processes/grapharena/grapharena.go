package grapharena

import (
	"sort"
	"sync"
	"time"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

type graphArena struct {
	lock sync.RWMutex

	nodes       []*node
	freeIndices []model.ArenaIndex
	hashToIndex map[externalapi.DomainHash]model.ArenaIndex

	genesis       model.ArenaIndex
	terminals     indexSet
	readySequence uint64
	readyCount    int

	now func() time.Time
}

// New instantiates a new GraphArena
func New() model.GraphArena {
	return &graphArena{
		hashToIndex: make(map[externalapi.DomainHash]model.ArenaIndex),
		genesis:     model.NoIndex,
		terminals:   make(indexSet),
		now:         time.Now,
	}
}

func (ga *graphArena) node(index model.ArenaIndex) *node {
	if int(index) >= len(ga.nodes) || ga.nodes[index] == nil {
		panic(errors.Errorf("arena index %d does not refer to a live node", index))
	}
	return ga.nodes[index]
}

func (ga *graphArena) allocate(n *node) model.ArenaIndex {
	var index model.ArenaIndex
	if len(ga.freeIndices) > 0 {
		index = ga.freeIndices[len(ga.freeIndices)-1]
		ga.freeIndices = ga.freeIndices[:len(ga.freeIndices)-1]
		ga.nodes[index] = n
	} else {
		index = model.ArenaIndex(len(ga.nodes))
		ga.nodes = append(ga.nodes, n)
	}
	ga.hashToIndex[*n.hash] = index
	return index
}

func (ga *graphArena) Index(blockHash *externalapi.DomainHash) (model.ArenaIndex, bool) {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	index, ok := ga.hashToIndex[*blockHash]
	return index, ok
}

func (ga *graphArena) Hash(index model.ArenaIndex) *externalapi.DomainHash {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	return ga.node(index).hash
}

func (ga *graphArena) Header(index model.ArenaIndex) *externalapi.DomainBlockHeader {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	return ga.node(index).header
}

func (ga *graphArena) Status(index model.ArenaIndex) externalapi.GraphStatus {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	return ga.node(index).status
}

func (ga *graphArena) PendingCount(index model.ArenaIndex) int {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	return ga.node(index).pendingCount
}

func (ga *graphArena) Parent(index model.ArenaIndex) model.ArenaIndex {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	return ga.node(index).parent
}

// Children returns the children of index in ascending index order
func (ga *graphArena) Children(index model.ArenaIndex) []model.ArenaIndex {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	n := ga.node(index)
	children := make([]model.ArenaIndex, 0, len(n.children))
	for child := range n.children {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool { return children[i] < children[j] })
	return children
}

func (ga *graphArena) Referees(index model.ArenaIndex) []model.ArenaIndex {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	referees := ga.node(index).referees
	clone := make([]model.ArenaIndex, len(referees))
	copy(clone, referees)
	return clone
}

func (ga *graphArena) Height(index model.ArenaIndex) uint64 {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	return ga.node(index).height
}

// Ancestor returns the parent-chain ancestor of index at the given height
func (ga *graphArena) Ancestor(index model.ArenaIndex, height uint64) (model.ArenaIndex, error) {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	current := ga.node(index)
	if height > current.height {
		return model.NoIndex, errors.Errorf("block %s at height %d has no ancestor at height %d",
			current.hash, current.height, height)
	}
	currentIndex := index
	for current.height > height {
		if current.parent == model.NoIndex {
			return model.NoIndex, errors.Errorf("the parent chain of block %s ends before height %d",
				ga.node(index).hash, height)
		}
		currentIndex = current.parent
		current = ga.node(currentIndex)
	}
	return currentIndex, nil
}

func (ga *graphArena) SubtreeSize(index model.ArenaIndex) uint64 {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	return ga.node(index).subtreeSize
}

func (ga *graphArena) SubtreeSequence(index model.ArenaIndex) uint64 {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	return ga.node(index).subtreeSequence
}

func (ga *graphArena) SequenceNumber(index model.ArenaIndex) uint64 {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	return ga.node(index).sequenceNumber
}

func (ga *graphArena) ReadySequence() uint64 {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	return ga.readySequence
}

func (ga *graphArena) Len() int {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	return len(ga.hashToIndex)
}

// NotReadyCount returns the number of nodes that are not graph-ready,
// placeholders included
func (ga *graphArena) NotReadyCount() int {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	return len(ga.hashToIndex) - ga.readyCount
}

// Terminals returns the graph-ready nodes that no graph-ready node depends
// on, sorted by hash
func (ga *graphArena) Terminals() []*externalapi.DomainHash {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	terminals := make([]*externalapi.DomainHash, 0, len(ga.terminals))
	for index := range ga.terminals {
		terminals = append(terminals, ga.node(index).hash)
	}
	hashes.SortHashes(terminals)
	return terminals
}

func (ga *graphArena) Genesis() model.ArenaIndex {
	ga.lock.RLock()
	defer ga.lock.RUnlock()

	return ga.genesis
}
