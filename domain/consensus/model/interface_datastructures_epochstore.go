package model

import "github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"

// EpochStore represents a store of the executed and skipped block lists of
// every executed epoch, keyed by epoch number.
type EpochStore interface {
	Store
	StageExecutedBlocks(stagingArea *StagingArea, epochNumber uint64, blockHashes []*externalapi.DomainHash)
	StageSkippedBlocks(stagingArea *StagingArea, epochNumber uint64, blockHashes []*externalapi.DomainHash)
	IsStaged(stagingArea *StagingArea) bool
	ExecutedBlocks(dbContext DBReader, stagingArea *StagingArea, epochNumber uint64) ([]*externalapi.DomainHash, error)
	SkippedBlocks(dbContext DBReader, stagingArea *StagingArea, epochNumber uint64) ([]*externalapi.DomainHash, error)
	Delete(stagingArea *StagingArea, epochNumber uint64)
}
