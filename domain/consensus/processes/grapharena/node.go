package grapharena

import (
	"time"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

type indexSet map[model.ArenaIndex]struct{}

func (s indexSet) add(index model.ArenaIndex) {
	s[index] = struct{}{}
}

func (s indexSet) remove(index model.ArenaIndex) {
	delete(s, index)
}

// node is a block inside the arena. A node that is only known as a
// dependency of another block has no header and status Requested.
type node struct {
	hash   *externalapi.DomainHash
	header *externalapi.DomainBlockHeader

	parent   model.ArenaIndex
	children indexSet

	// referees are kept in header order, referrers are the nodes that list
	// this node as a referee.
	referees  []model.ArenaIndex
	referrers indexSet

	// pendingCount is the number of dependencies that are not graph-ready yet
	pendingCount int

	status         externalapi.GraphStatus
	lastUpdate     time.Time
	sequenceNumber uint64
	height         uint64

	// subtreeSize counts the graph-ready nodes of the parent-tree subtree
	// rooted at this node, the node itself included. subtreeSequence is the
	// ready sequence of the latest node that joined that subtree.
	subtreeSize     uint64
	subtreeSequence uint64
}

func newPlaceholder(hash *externalapi.DomainHash, now time.Time) *node {
	return &node{
		hash:       hash,
		parent:     model.NoIndex,
		children:   make(indexSet),
		referrers:  make(indexSet),
		status:     externalapi.StatusRequested,
		lastUpdate: now,
	}
}

// dependents returns the nodes that wait on n, children first
func (n *node) dependents() []model.ArenaIndex {
	dependents := make([]model.ArenaIndex, 0, len(n.children)+len(n.referrers))
	for child := range n.children {
		dependents = append(dependents, child)
	}
	for referrer := range n.referrers {
		dependents = append(dependents, referrer)
	}
	return dependents
}

func (n *node) dependencies() []model.ArenaIndex {
	dependencies := make([]model.ArenaIndex, 0, len(n.referees)+1)
	if n.parent != model.NoIndex {
		dependencies = append(dependencies, n.parent)
	}
	return append(dependencies, n.referees...)
}
