package model

import "github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"

// ReceiptStore represents a store of BlockReceipts. A block may be executed
// in more than one epoch across reorgs, so receipts are keyed by the block
// hash and the epoch hash together.
type ReceiptStore interface {
	Store
	Stage(stagingArea *StagingArea, receipts *externalapi.BlockReceipts)
	IsStaged(stagingArea *StagingArea) bool
	Get(dbContext DBReader, stagingArea *StagingArea, blockHash, epochHash *externalapi.DomainHash) (*externalapi.BlockReceipts, error)
	Delete(stagingArea *StagingArea, blockHash, epochHash *externalapi.DomainHash)
}
