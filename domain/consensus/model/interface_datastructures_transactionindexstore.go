package model

import "github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"

// TransactionIndexStore maps real and phantom transaction hashes to the
// location of their receipts.
type TransactionIndexStore interface {
	Store
	Stage(stagingArea *StagingArea, transactionID *externalapi.DomainTransactionID, location *externalapi.TransactionLocation)
	IsStaged(stagingArea *StagingArea) bool
	Get(dbContext DBReader, stagingArea *StagingArea, transactionID *externalapi.DomainTransactionID) (*externalapi.TransactionLocation, bool, error)
	Delete(stagingArea *StagingArea, transactionID *externalapi.DomainTransactionID)
}
