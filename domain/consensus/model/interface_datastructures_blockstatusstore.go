package model

import "github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"

// BlockStatusStore represents a store of BlockLocalStatuses
type BlockStatusStore interface {
	Store
	Stage(stagingArea *StagingArea, blockHash *externalapi.DomainHash, status *externalapi.BlockLocalStatus)
	IsStaged(stagingArea *StagingArea) bool
	Get(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*externalapi.BlockLocalStatus, error)
	Exists(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
	Delete(stagingArea *StagingArea, blockHash *externalapi.DomainHash)
	All(dbContext DBReader) ([]*HashAndLocalStatus, error)
}

// HashAndLocalStatus pairs a block hash with its local status
type HashAndLocalStatus struct {
	Hash   *externalapi.DomainHash
	Status *externalapi.BlockLocalStatus
}
