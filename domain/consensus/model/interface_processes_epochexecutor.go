package model

import "github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"

// EpochExecutor executes epochs against state. Canonical executions are
// committed to the database before ExecuteEpoch returns. Dry runs read the
// historical state of the task's parent epoch and leave no trace.
type EpochExecutor interface {
	ExecuteEpoch(task *EpochTask, mode ExecutionMode) (*externalapi.EpochExecutionResult, error)

	// RecentResult returns a recently produced canonical result, receipts
	// included.
	RecentResult(epochHash *externalapi.DomainHash) (*externalapi.EpochExecutionResult, bool)
}
