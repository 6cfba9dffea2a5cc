package executionmanager

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// RecomputeEpoch replays an executed epoch on top of the historical state
// of its parent epoch and compares the outcome with the persisted
// commitments. Nothing is written.
func (em *executionManager) RecomputeEpoch(epochHash *externalapi.DomainHash) (*externalapi.RecomputeResult, error) {
	stagingArea := model.NewStagingArea()
	consensusResult, err := em.executionResultStore.Result(em.databaseContext, stagingArea, epochHash)
	if err != nil {
		return nil, err
	}
	// A reverted epoch has no committed state to compare against
	if !consensusResult.IsLocalMain {
		return nil, errors.Errorf("epoch %s was reverted and can't be recomputed", epochHash)
	}
	context, err := em.executionResultStore.Context(em.databaseContext, stagingArea, epochHash)
	if err != nil {
		return nil, err
	}
	pivotHeader, err := em.blockStore.BlockHeader(em.databaseContext, stagingArea, epochHash)
	if err != nil {
		return nil, err
	}
	blocks, err := em.epochBlocks(stagingArea, consensusResult.ExecutedBlocks)
	if err != nil {
		return nil, err
	}
	skippedBlocks, err := em.epochBlocks(stagingArea, consensusResult.SkippedBlocks)
	if err != nil {
		return nil, err
	}

	task := &model.EpochTask{
		EpochHash:        epochHash,
		EpochNumber:      context.EpochNumber,
		ParentEpochHash:  context.ParentEpochHash,
		StartBlockNumber: consensusResult.StartBlockNumber,
		PivotHeader:      pivotHeader,
		Blocks:           blocks,
		SkippedBlocks:    skippedBlocks,
	}
	recomputed, err := em.epochExecutor.ExecuteEpoch(task, model.ModeDryRun)
	if err != nil {
		return nil, err
	}

	result := &externalapi.RecomputeResult{
		EpochHash:               epochHash,
		RecomputedStateRoot:     recomputed.StateRoot,
		ConsensusStateRoot:      consensusResult.StateRoot,
		RecomputedReceiptsRoot:  recomputed.ReceiptsRoot,
		ConsensusReceiptsRoot:   consensusResult.ReceiptsRoot,
		RecomputedLogsBloomHash: recomputed.LogsBloomHash,
		ConsensusLogsBloomHash:  consensusResult.LogsBloomHash,
		DebugTrace:              recomputed.DebugTrace,
	}
	if !result.Matches() {
		log.Warnf("Recomputing epoch %s diverged from its committed execution", epochHash)
	}
	return result, nil
}

func (em *executionManager) epochBlocks(stagingArea *model.StagingArea,
	blockHashes []*externalapi.DomainHash) ([]*model.EpochBlock, error) {

	blocks := make([]*model.EpochBlock, len(blockHashes))
	for i, blockHash := range blockHashes {
		block, err := em.blockStore.Block(em.databaseContext, stagingArea, blockHash)
		if err != nil {
			return nil, err
		}
		blocks[i] = &model.EpochBlock{Hash: blockHash, Block: block}
	}
	return blocks, nil
}
