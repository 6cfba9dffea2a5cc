package model

import "github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"

// ConsensusStateStore represents a store for the singleton consensus
// records: the DAG terminals and the two most recent checkpoints.
type ConsensusStateStore interface {
	Store
	StageTerminals(stagingArea *StagingArea, terminals []*externalapi.DomainHash)
	Terminals(dbContext DBReader, stagingArea *StagingArea) ([]*externalapi.DomainHash, error)
	StageCheckpoints(stagingArea *StagingArea, checkpoints []*externalapi.DomainHash)
	Checkpoints(dbContext DBReader, stagingArea *StagingArea) ([]*externalapi.DomainHash, error)
	IsStaged(stagingArea *StagingArea) bool
}
