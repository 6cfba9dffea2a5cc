package blockprocessor

import (
	"sort"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/ruleerrors"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/logger"
	"github.com/Hoosat-Oy/treegraphd/util/staging"
)

// LoadBlocks rebuilds the arena and the pivot chain from the persisted
// blocks. Blocks are re-inserted in the order they were first inserted, so
// readiness and pivot changes replay in their original order.
func (bp *blockProcessor) LoadBlocks() (int, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "LoadBlocks")
	defer onEnd()

	bp.lock.Lock()
	defer bp.lock.Unlock()

	statuses, err := bp.blockStatusStore.All(bp.databaseContext)
	if err != nil {
		return 0, err
	}
	if len(statuses) == 0 {
		return 0, nil
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Status.SequenceNumber < statuses[j].Status.SequenceNumber
	})

	stagingArea := model.NewStagingArea()
	for _, hashAndStatus := range statuses {
		err := bp.loadBlock(stagingArea, hashAndStatus.Hash, hashAndStatus.Status)
		if err != nil {
			return 0, err
		}
	}
	bp.nextSequenceNumber = statuses[len(statuses)-1].Status.SequenceNumber + 1

	bp.stageGraphRecords(stagingArea)
	err = staging.CommitAllChanges(bp.databaseContext, stagingArea)
	if err != nil {
		return 0, err
	}

	log.Infof("Loaded %d blocks, %d of them are not graph-ready", len(statuses), bp.arena.NotReadyCount())
	return len(statuses), nil
}

func (bp *blockProcessor) loadBlock(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	status *externalapi.BlockLocalStatus) error {

	header, err := bp.blockStore.BlockHeader(bp.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}
	index, err := bp.arena.Insert(header, blockHash, status.SequenceNumber)
	if err != nil && !isInsertedAnyway(err) {
		return err
	}
	if bp.arena.Status(index) != externalapi.StatusReceived {
		return nil
	}

	if status.Status == externalapi.StatusPartialInvalid {
		bp.arena.MarkInvalid(index)
		return nil
	}
	if bp.arena.PendingCount(index) > 0 {
		return nil
	}

	result := &model.BlockProcessingResult{Index: index}
	err = bp.resolve(stagingArea, index, result)
	if err != nil && !ruleerrors.IsRuleError(err) {
		return err
	}
	return nil
}
