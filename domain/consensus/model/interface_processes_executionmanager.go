package model

import "github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"

// ExecutionManager keeps the executed part of the pivot chain in step with
// the pivot chain itself.
type ExecutionManager interface {
	// PlanExecution compares the executed chain with the pivot chain and
	// copies out everything the next Execute needs. It must run while the
	// graph is locked.
	PlanExecution() (*ExecutionPlan, error)

	// Execute reverts the executed epochs the plan dropped and executes its
	// tasks. The graph doesn't need to be locked.
	Execute(plan *ExecutionPlan) ([]*externalapi.EpochExecutionResult, error)

	// ExecutePending plans and executes in one step
	ExecutePending() ([]*externalapi.EpochExecutionResult, error)

	ExecutedChain() []*externalapi.DomainHash
	LoadExecutedChain() error
	RecomputeEpoch(epochHash *externalapi.DomainHash) (*externalapi.RecomputeResult, error)
}

// ExecutionPlan is a detached description of the execution work a change of
// the pivot chain calls for.
type ExecutionPlan struct {
	// ForkNumber is the number of executed epochs that stay executed. Any
	// executed epoch from ForkNumber on is reverted.
	ForkNumber uint64
	Tasks      []*EpochTask
}
