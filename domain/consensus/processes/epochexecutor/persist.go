package epochexecutor

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/util/staging"
)

// persist stages everything a canonical execution leaves behind and
// commits it in a single database transaction
func (ex *epochExecution) persist() error {
	for _, receipts := range ex.blockReceipts {
		ex.receiptStore.Stage(ex.stagingArea, receipts)
	}
	ex.executionResultStore.StageResult(ex.stagingArea, ex.task.EpochHash, ex.result)
	ex.executionResultStore.StageContext(ex.stagingArea, ex.task.EpochHash, &externalapi.EpochExecutionContext{
		EpochNumber:     ex.task.EpochNumber,
		ParentEpochHash: ex.task.ParentEpochHash,
		MainBlockHash:   ex.task.EpochHash,
	})
	for _, indexed := range ex.locations {
		ex.transactionIndexStore.Stage(ex.stagingArea, indexed.transactionID, indexed.location)
	}
	ex.epochStore.StageExecutedBlocks(ex.stagingArea, ex.task.EpochNumber, ex.result.ExecutedBlocks)
	ex.epochStore.StageSkippedBlocks(ex.stagingArea, ex.task.EpochNumber, ex.result.SkippedBlocks)

	err := staging.CommitAllChanges(ex.databaseContext, ex.stagingArea)
	if err != nil {
		return err
	}
	log.Debugf("Committed epoch %d (%s): %d blocks executed, %d skipped, %d transactions indexed, state root %s",
		ex.task.EpochNumber, ex.task.EpochHash, len(ex.result.ExecutedBlocks), len(ex.result.SkippedBlocks),
		len(ex.locations), ex.result.StateRoot)
	return nil
}
