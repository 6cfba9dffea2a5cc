package epochexecutor

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/dagconfig"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/logger"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// epochExecutor runs the transactions of an epoch's blocks in epoch order on
// top of the state its parent epoch produced.
type epochExecutor struct {
	databaseContext model.DBManager

	stateStore            model.StateStore
	receiptStore          model.ReceiptStore
	transactionIndexStore model.TransactionIndexStore
	epochStore            model.EpochStore
	executionResultStore  model.ExecutionResultStore

	transactionExecutor model.TransactionExecutor
	rewardDistributor   model.RewardDistributor
	recycler            model.TransactionRecycler

	nativeChainID      uint32
	evmChainID         uint32
	prefetchWorkers    int
	internalContracts  []dagconfig.InternalContract
	genesisAllocations []dagconfig.GenesisAllocation

	recentResults *lru.Cache[externalapi.DomainHash, *externalapi.EpochExecutionResult]
}

// New instantiates a new EpochExecutor
func New(
	databaseContext model.DBManager,
	params *dagconfig.Params,

	stateStore model.StateStore,
	receiptStore model.ReceiptStore,
	transactionIndexStore model.TransactionIndexStore,
	epochStore model.EpochStore,
	executionResultStore model.ExecutionResultStore,

	transactionExecutor model.TransactionExecutor,
	rewardDistributor model.RewardDistributor,
	recycler model.TransactionRecycler,
	recentResultsCacheSize int,
) (model.EpochExecutor, error) {

	recentResults, err := lru.New[externalapi.DomainHash, *externalapi.EpochExecutionResult](recentResultsCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the recent results cache")
	}

	prefetchWorkers := params.PrefetchWorkers
	if prefetchWorkers < 1 {
		prefetchWorkers = 1
	}

	return &epochExecutor{
		databaseContext:       databaseContext,
		stateStore:            stateStore,
		receiptStore:          receiptStore,
		transactionIndexStore: transactionIndexStore,
		epochStore:            epochStore,
		executionResultStore:  executionResultStore,
		transactionExecutor:   transactionExecutor,
		rewardDistributor:     rewardDistributor,
		recycler:              recycler,
		nativeChainID:         params.NativeChainID,
		evmChainID:            params.EVMChainID,
		prefetchWorkers:       prefetchWorkers,
		internalContracts:     params.InternalContracts,
		genesisAllocations:    params.GenesisAllocations,
		recentResults:         recentResults,
	}, nil
}

func (ee *epochExecutor) RecentResult(epochHash *externalapi.DomainHash) (*externalapi.EpochExecutionResult, bool) {
	return ee.recentResults.Get(*epochHash)
}

// ExecuteEpoch executes task in the given mode. Canonical executions are
// committed before it returns. Any other execution runs the
// exact same logic and is dropped afterwards.
func (ee *epochExecutor) ExecuteEpoch(task *model.EpochTask, mode model.ExecutionMode) (*externalapi.EpochExecutionResult, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ExecuteEpoch")
	defer onEnd()

	if len(task.Blocks) == 0 {
		return nil, errors.Errorf("epoch %s has no blocks to execute", task.EpochHash)
	}
	pivotBlock := task.Blocks[len(task.Blocks)-1]
	if !pivotBlock.Hash.Equal(task.EpochHash) {
		return nil, errors.Errorf("epoch %s doesn't end with its pivot block, got %s",
			task.EpochHash, pivotBlock.Hash)
	}

	execution := newEpochExecution(ee, task, mode)
	err := execution.run()
	if err != nil {
		log.Errorf("Execution of epoch %d (%s) aborted in state %s: %+v",
			task.EpochNumber, task.EpochHash, execution.state, err)
		return nil, err
	}

	if execution.commits() {
		ee.recentResults.Add(*task.EpochHash, execution.result)
	}
	return execution.result, nil
}
