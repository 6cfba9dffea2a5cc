package epochexecutor

import (
	"fmt"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/accounts"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/merkle"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// epochExecution is the working set of a single ExecuteEpoch call
type epochExecution struct {
	*epochExecutor

	task  *model.EpochTask
	mode  model.ExecutionMode
	state externalapi.EpochState

	stagingArea *model.StagingArea
	base        model.StateView
	diff        *accounts.StateDiff

	blockReceipts     []*externalapi.BlockReceipts
	blockFees         []*uint256.Int
	executedGasPrices []*uint256.Int
	seen              map[externalapi.DomainTransactionID]struct{}
	locations         []*indexedLocation
	recycled          []*externalapi.DomainTransaction
	debugTrace        []string

	result *externalapi.EpochExecutionResult
}

type indexedLocation struct {
	transactionID *externalapi.DomainTransactionID
	location      *externalapi.TransactionLocation
}

func newEpochExecution(executor *epochExecutor, task *model.EpochTask, mode model.ExecutionMode) *epochExecution {
	return &epochExecution{
		epochExecutor: executor,
		task:          task,
		mode:          mode,
		state:         externalapi.EpochStatePending,
		stagingArea:   model.NewStagingArea(),
		seen:          make(map[externalapi.DomainTransactionID]struct{}),
	}
}

// commits returns whether the execution changes the canonical state
func (ex *epochExecution) commits() bool {
	return ex.mode == model.ModeCanonical
}

func (ex *epochExecution) setState(state externalapi.EpochState) {
	log.Tracef("Epoch %d (%s, %s): %s -> %s", ex.task.EpochNumber, ex.task.EpochHash, ex.mode, ex.state, state)
	ex.state = state
}

func (ex *epochExecution) trace(format string, args ...interface{}) {
	if ex.mode != model.ModeDryRun {
		return
	}
	ex.debugTrace = append(ex.debugTrace, fmt.Sprintf(format, args...))
}

func (ex *epochExecution) run() error {
	ex.setState(externalapi.EpochStatePrefetching)
	if ex.commits() {
		tip, err := ex.stateStore.Tip(ex.databaseContext, ex.stagingArea)
		if err != nil {
			return err
		}
		if !tip.Equal(ex.task.ParentEpochHash) {
			return errors.Errorf("cannot execute epoch %s on top of state %s, expected parent epoch %s",
				ex.task.EpochHash, tip, ex.task.ParentEpochHash)
		}
	}
	base, err := ex.stateStore.View(ex.databaseContext, ex.task.ParentEpochHash)
	if err != nil {
		return err
	}
	ex.base = base
	err = ex.prefetch()
	if err != nil {
		return err
	}

	ex.setState(externalapi.EpochStateExecuting)
	ex.diff = accounts.NewStateDiff(ex.base)
	err = ex.initializeEpoch()
	if err != nil {
		return err
	}
	for i, block := range ex.task.Blocks {
		err = ex.executeBlock(block, ex.task.StartBlockNumber+uint64(i))
		if err != nil {
			return err
		}
	}
	for _, skipped := range ex.task.SkippedBlocks {
		ex.recycled = append(ex.recycled, skipped.Block.Transactions...)
	}
	err = ex.distributeRewards()
	if err != nil {
		return err
	}

	ex.setState(externalapi.EpochStateCommitting)
	stateRoot, err := ex.stateRoot()
	if err != nil {
		return err
	}
	ex.buildResult(stateRoot)
	if ex.mode == model.ModeCanonical {
		ex.result.FinalState = externalapi.EpochStateCanonical
		err = ex.persist()
		if err != nil {
			return err
		}
		ex.setState(externalapi.EpochStateCanonical)
	} else {
		ex.result.FinalState = externalapi.EpochStateDiscarded
		ex.setState(externalapi.EpochStateDiscarded)
	}

	if ex.commits() && len(ex.recycled) > 0 && ex.recycler != nil {
		ex.recycler.Recycle(ex.recycled)
	}
	return nil
}

// stateRoot produces the state root the execution leads to. A committing
// execution seals its writes in the state store, any other one only
// computes the root they would produce.
func (ex *epochExecution) stateRoot() (*externalapi.DomainHash, error) {
	writes := ex.diff.Writes()
	if !ex.commits() {
		return ex.base.RootAfter(writes)
	}

	for _, write := range writes {
		if write.Value == nil {
			ex.stateStore.DeleteState(ex.stagingArea, write.Key)
			continue
		}
		ex.stateStore.WriteState(ex.stagingArea, write.Key, write.Value)
	}
	return ex.stateStore.Commit(ex.databaseContext, ex.stagingArea, ex.task.EpochHash)
}

func (ex *epochExecution) buildResult(stateRoot *externalapi.DomainHash) {
	executedBlocks := make([]*externalapi.DomainHash, len(ex.task.Blocks))
	for i, block := range ex.task.Blocks {
		executedBlocks[i] = block.Hash
	}
	skippedBlocks := make([]*externalapi.DomainHash, len(ex.task.SkippedBlocks))
	for i, block := range ex.task.SkippedBlocks {
		skippedBlocks[i] = block.Hash
	}

	ex.result = &externalapi.EpochExecutionResult{
		EpochHash:        ex.task.EpochHash,
		EpochNumber:      ex.task.EpochNumber,
		StartBlockNumber: ex.task.StartBlockNumber,
		ExecutedBlocks:   executedBlocks,
		SkippedBlocks:    skippedBlocks,
		StateRoot:        stateRoot,
		ReceiptsRoot:     merkle.CalculateEpochReceiptsRoot(ex.blockReceipts),
		LogsBloomHash:    merkle.LogsBloomHash(merkle.CalculateLogsBloom(ex.blockReceipts)),
		IsLocalMain:      ex.commits(),
		BlockReceipts:    ex.blockReceipts,
		DebugTrace:       ex.debugTrace,
	}
}
