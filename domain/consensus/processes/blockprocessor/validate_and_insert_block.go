package blockprocessor

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/blockprocessor/blocklogger"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/ruleerrors"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/consensushashing"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/logger"
	"github.com/Hoosat-Oy/treegraphd/util/staging"
	"github.com/pkg/errors"
)

// ValidateAndInsertBlock validates the given block in isolation, inserts it
// into the arena and propagates readiness to the blocks that were waiting on
// it. Every status change is persisted before it returns.
//
// A block with missing dependencies is still inserted. The returned result
// is then non-nil and the error lists the missing hashes. So is a block that
// breaks a rule in isolation. It stays in the arena as PartialInvalid along
// with every block that arrived earlier and depends on it.
func (bp *blockProcessor) ValidateAndInsertBlock(block *externalapi.DomainBlock) (*model.BlockProcessingResult, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateAndInsertBlock")
	defer onEnd()

	bp.lock.Lock()
	defer bp.lock.Unlock()

	stagingArea := model.NewStagingArea()
	result, insertionErr := bp.validateAndInsertBlock(stagingArea, block)
	if result == nil {
		return nil, insertionErr
	}

	bp.stageGraphRecords(stagingArea)
	err := staging.CommitAllChanges(bp.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	blocklogger.LogBlock(block)
	log.Debug(logger.NewLogClosure(func() string {
		return "Block " + bp.arena.Hash(result.Index).String() + " inserted with status " +
			bp.arena.Status(result.Index).String()
	}))
	return result, insertionErr
}

func (bp *blockProcessor) validateAndInsertBlock(stagingArea *model.StagingArea,
	block *externalapi.DomainBlock) (*model.BlockProcessingResult, error) {

	blockHash := consensushashing.BlockHash(block)
	log.Debugf("Validating block %s", blockHash)

	isolationErr := bp.blockValidator.ValidateHeaderInIsolation(block)
	if isolationErr != nil && !isKeptWhenInvalid(isolationErr) {
		return nil, isolationErr
	}

	index, insertionErr := bp.arena.Insert(block.Header, blockHash, bp.nextSequenceNumber)
	if insertionErr != nil && !isInsertedAnyway(insertionErr) {
		return nil, insertionErr
	}
	bp.blockStore.Stage(stagingArea, blockHash, block)
	bp.stageStatus(stagingArea, index)
	bp.nextSequenceNumber++

	result := &model.BlockProcessingResult{Index: index}
	if isolationErr != nil {
		bp.invalidate(stagingArea, index, isolationErr)
		return result, isolationErr
	}
	if insertionErr != nil {
		return result, insertionErr
	}
	if bp.arena.PendingCount(index) > 0 {
		log.Debugf("Block %s waits on dependencies that are not graph-ready yet", blockHash)
		return result, nil
	}

	err := bp.resolve(stagingArea, index, result)
	return result, err
}

// isKeptWhenInvalid returns whether a block that failed validation in
// isolation with err still enters the arena. A parentless block can't be
// linked to anything, so it never does.
func isKeptWhenInvalid(err error) bool {
	return ruleerrors.IsRuleError(err) && !errors.Is(err, ruleerrors.ErrUnexpectedGenesis)
}

// isInsertedAnyway returns whether err is one of the Insert errors that
// still leave the block in the arena
func isInsertedAnyway(err error) bool {
	return errors.Is(err, ruleerrors.ErrMissingParents) || errors.Is(err, ruleerrors.ErrInvalidAncestor)
}

// resolve validates index in context and marks it graph-ready, then does the
// same for every dependent whose last missing dependency became ready, in
// breadth-first order. A dependent that fails validation is marked invalid
// together with what depends on it. Only a failure of index itself is
// returned.
func (bp *blockProcessor) resolve(stagingArea *model.StagingArea, index model.ArenaIndex,
	result *model.BlockProcessingResult) error {

	var validationErr error
	queue := []model.ArenaIndex{index}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		err := bp.blockValidator.ValidateHeaderInContext(current)
		if err != nil {
			if !ruleerrors.IsRuleError(err) {
				return err
			}
			bp.invalidate(stagingArea, current, err)
			if current == index {
				validationErr = err
			}
			continue
		}

		resolved, err := bp.arena.MarkReady(current)
		if err != nil {
			return err
		}
		bp.stageStatus(stagingArea, current)
		result.NewlyReady = append(result.NewlyReady, current)

		pivotUpdate, err := bp.pivotSelector.OnBlockReady(current)
		if err != nil {
			return err
		}
		if !pivotUpdate.IsEmpty() {
			result.PivotUpdates = append(result.PivotUpdates, pivotUpdate)
			if pivotUpdate.IsReorg() {
				log.Infof("Pivot reorg at height %d: %d blocks removed, %d added",
					pivotUpdate.ForkHeight, len(pivotUpdate.Removed), len(pivotUpdate.Added))
			}
		}

		queue = append(queue, resolved...)
	}
	return validationErr
}

// invalidate marks index and everything that depends on it PartialInvalid
func (bp *blockProcessor) invalidate(stagingArea *model.StagingArea, index model.ArenaIndex, reason error) {
	invalidated := bp.arena.MarkInvalid(index)
	for _, invalid := range invalidated {
		bp.stageStatus(stagingArea, invalid)
	}
	log.Warnf("Block %s is invalid: %s. %d blocks were marked invalid",
		bp.arena.Hash(index), reason, len(invalidated))
}

func (bp *blockProcessor) stageStatus(stagingArea *model.StagingArea, index model.ArenaIndex) {
	if bp.arena.Header(index) == nil {
		return
	}
	bp.blockStatusStore.Stage(stagingArea, bp.arena.Hash(index), &externalapi.BlockLocalStatus{
		Status:         bp.arena.Status(index),
		SequenceNumber: bp.arena.SequenceNumber(index),
	})
}

func (bp *blockProcessor) stageGraphRecords(stagingArea *model.StagingArea) {
	bp.consensusStateStore.StageTerminals(stagingArea, bp.arena.Terminals())
	bp.consensusStateStore.StageCheckpoints(stagingArea, bp.pivotSelector.Checkpoints())
}
