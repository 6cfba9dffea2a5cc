package model

import (
	"math/big"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

// DifficultyManager computes proof-of-work difficulty targets.
type DifficultyManager interface {
	TargetDifficulty(boundaryHash *externalapi.DomainHash) (*big.Int, error)
	ExpectedDifficulty(parentHash *externalapi.DomainHash) (*big.Int, error)
}

// EpochSizeProvider supplies the number of blocks merged by a chain block.
type EpochSizeProvider interface {
	EpochSize(index ArenaIndex) (uint64, error)
}
