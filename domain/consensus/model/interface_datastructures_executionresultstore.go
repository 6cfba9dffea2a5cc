package model

import "github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"

// ExecutionResultStore represents a store of epoch execution results and
// their execution contexts, keyed by the epoch's pivot block hash.
type ExecutionResultStore interface {
	Store
	StageResult(stagingArea *StagingArea, epochHash *externalapi.DomainHash, result *externalapi.EpochExecutionResult)
	StageContext(stagingArea *StagingArea, epochHash *externalapi.DomainHash, context *externalapi.EpochExecutionContext)
	IsStaged(stagingArea *StagingArea) bool
	Result(dbContext DBReader, stagingArea *StagingArea, epochHash *externalapi.DomainHash) (*externalapi.EpochExecutionResult, error)
	Context(dbContext DBReader, stagingArea *StagingArea, epochHash *externalapi.DomainHash) (*externalapi.EpochExecutionContext, error)
	HasResult(dbContext DBReader, stagingArea *StagingArea, epochHash *externalapi.DomainHash) (bool, error)
}
