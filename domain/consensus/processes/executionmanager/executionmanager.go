package executionmanager

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

type executedEpoch struct {
	hash            *externalapi.DomainHash
	nextBlockNumber uint64
}

// executionManager tracks which prefix of the pivot chain is executed and
// drives the epoch executor along the pivot chain, reverting executed
// epochs a reorg drops.
type executionManager struct {
	databaseContext model.DBManager

	arena         model.GraphArena
	pivotSelector model.PivotSelector
	epochExecutor model.EpochExecutor

	blockStore            model.BlockStore
	stateStore            model.StateStore
	receiptStore          model.ReceiptStore
	transactionIndexStore model.TransactionIndexStore
	epochStore            model.EpochStore
	executionResultStore  model.ExecutionResultStore

	deferDepth                uint64
	maxExecutedBlocksPerEpoch int

	executed []*executedEpoch
}

// New instantiates a new ExecutionManager
func New(
	databaseContext model.DBManager,

	arena model.GraphArena,
	pivotSelector model.PivotSelector,
	epochExecutor model.EpochExecutor,

	blockStore model.BlockStore,
	stateStore model.StateStore,
	receiptStore model.ReceiptStore,
	transactionIndexStore model.TransactionIndexStore,
	epochStore model.EpochStore,
	executionResultStore model.ExecutionResultStore,

	deferDepth uint64,
	maxExecutedBlocksPerEpoch int,
) model.ExecutionManager {

	return &executionManager{
		databaseContext: databaseContext,

		arena:         arena,
		pivotSelector: pivotSelector,
		epochExecutor: epochExecutor,

		blockStore:            blockStore,
		stateStore:            stateStore,
		receiptStore:          receiptStore,
		transactionIndexStore: transactionIndexStore,
		epochStore:            epochStore,
		executionResultStore:  executionResultStore,

		deferDepth:                deferDepth,
		maxExecutedBlocksPerEpoch: maxExecutedBlocksPerEpoch,
	}
}

// ExecutedChain returns the hashes of the executed pivot epochs, in epoch
// number order
func (em *executionManager) ExecutedChain() []*externalapi.DomainHash {
	chain := make([]*externalapi.DomainHash, len(em.executed))
	for i, epoch := range em.executed {
		chain[i] = epoch.hash
	}
	return chain
}

func (em *executionManager) ExecutePending() ([]*externalapi.EpochExecutionResult, error) {
	plan, err := em.PlanExecution()
	if err != nil {
		return nil, err
	}
	return em.Execute(plan)
}

// Execute reverts what the plan drops and executes the plan's tasks in
// order. A failed epoch stops the run. The epochs executed before it stay
// executed.
func (em *executionManager) Execute(plan *model.ExecutionPlan) ([]*externalapi.EpochExecutionResult, error) {
	if plan.ForkNumber < uint64(len(em.executed)) {
		err := em.revertTo(plan.ForkNumber)
		if err != nil {
			return nil, err
		}
	}

	results := make([]*externalapi.EpochExecutionResult, 0, len(plan.Tasks))
	for _, task := range plan.Tasks {
		if task.EpochNumber != uint64(len(em.executed)) {
			log.Debugf("Dropping stale execution of epoch %d (%s), %d epochs are executed",
				task.EpochNumber, task.EpochHash, len(em.executed))
			break
		}
		result, err := em.epochExecutor.ExecuteEpoch(task, model.ModeCanonical)
		if err != nil {
			return results, err
		}
		em.executed = append(em.executed, &executedEpoch{hash: task.EpochHash, nextBlockNumber: result.NextBlockNumber()})
		results = append(results, result)
	}
	return results, nil
}

func (em *executionManager) executedHash(epochNumber uint64) *externalapi.DomainHash {
	if epochNumber == 0 {
		return nil
	}
	return em.executed[epochNumber-1].hash
}
