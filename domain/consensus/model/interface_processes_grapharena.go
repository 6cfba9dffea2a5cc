package model

import (
	"time"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

// GraphArena is the index-addressed store of every known block: the
// parent-child tree, the referee edges and each node's intake status.
//
// The arena itself never validates anything. Callers drive readiness:
// MarkReady returns the dependents whose last missing dependency was the
// marked node, and the caller validates each of them before marking it
// ready or invalid in turn.
type GraphArena interface {
	Insert(header *externalapi.DomainBlockHeader, blockHash *externalapi.DomainHash, sequenceNumber uint64) (ArenaIndex, error)
	MarkReady(index ArenaIndex) ([]ArenaIndex, error)
	MarkInvalid(index ArenaIndex) []ArenaIndex
	RemoveExpired(olderThan time.Duration, isProtected func(ArenaIndex) bool) []*externalapi.DomainHash

	Index(blockHash *externalapi.DomainHash) (ArenaIndex, bool)
	Hash(index ArenaIndex) *externalapi.DomainHash
	Header(index ArenaIndex) *externalapi.DomainBlockHeader
	Status(index ArenaIndex) externalapi.GraphStatus
	PendingCount(index ArenaIndex) int
	Parent(index ArenaIndex) ArenaIndex
	Children(index ArenaIndex) []ArenaIndex
	Referees(index ArenaIndex) []ArenaIndex
	Height(index ArenaIndex) uint64
	Ancestor(index ArenaIndex, height uint64) (ArenaIndex, error)
	SubtreeSize(index ArenaIndex) uint64
	SubtreeSequence(index ArenaIndex) uint64
	SequenceNumber(index ArenaIndex) uint64

	// ReadySequence is incremented every time a node becomes graph-ready.
	ReadySequence() uint64
	Len() int
	NotReadyCount() int
	Terminals() []*externalapi.DomainHash
	Genesis() ArenaIndex
}
