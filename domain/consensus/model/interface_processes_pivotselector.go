package model

import "github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"

// PivotSelector maintains the pivot chain and the epoch partition.
type PivotSelector interface {
	OnBlockReady(index ArenaIndex) (*PivotUpdate, error)
	PivotChain() []ArenaIndex
	PivotTip() ArenaIndex
	PivotIndexOf(index ArenaIndex) (uint64, bool)
	EpochMembers(epochNumber uint64) ([]ArenaIndex, error)
	EpochNumberOf(index ArenaIndex) (uint64, bool)
	EpochSize(index ArenaIndex) (uint64, error)
	Weight(index ArenaIndex) uint64
	IsEligible(index ArenaIndex) bool
	Checkpoints() []*externalapi.DomainHash
}

// PivotUpdate describes a change of the pivot chain.
type PivotUpdate struct {
	// ForkHeight is the pivot height of the lowest common ancestor of the
	// old and new pivot chains.
	ForkHeight uint64
	Removed    []*externalapi.DomainHash
	Added      []*externalapi.DomainHash

	// CheckpointsChanged is set when the pivot crossed an era boundary.
	CheckpointsChanged bool
}

// IsReorg returns whether pivot blocks were removed.
func (pu *PivotUpdate) IsReorg() bool {
	return len(pu.Removed) > 0
}

// IsEmpty returns whether the pivot chain did not change
func (pu *PivotUpdate) IsEmpty() bool {
	return len(pu.Removed) == 0 && len(pu.Added) == 0
}
