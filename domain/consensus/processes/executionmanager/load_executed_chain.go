package executionmanager

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/logger"
)

// LoadExecutedChain restores the executed chain from the persisted
// execution results once the pivot chain was rebuilt. If the state was
// left on an epoch that is no longer on the pivot chain, it is reverted to
// the deepest executed pivot epoch.
func (em *executionManager) LoadExecutedChain() error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "LoadExecutedChain")
	defer onEnd()

	stagingArea := model.NewStagingArea()
	var executed []*executedEpoch
	positions := make(map[externalapi.DomainHash]int)
	for _, index := range em.pivotSelector.PivotChain() {
		hash := em.arena.Hash(index)
		hasResult, err := em.executionResultStore.HasResult(em.databaseContext, stagingArea, hash)
		if err != nil {
			return err
		}
		if !hasResult {
			break
		}
		result, err := em.executionResultStore.Result(em.databaseContext, stagingArea, hash)
		if err != nil {
			return err
		}
		if !result.IsLocalMain {
			break
		}
		positions[*hash] = len(executed)
		executed = append(executed, &executedEpoch{hash: hash, nextBlockNumber: result.NextBlockNumber()})
	}

	tip, err := em.stateStore.Tip(em.databaseContext, stagingArea)
	if err != nil {
		return err
	}

	var reverted []*revertedEpoch
	current := tip
	for current != nil {
		if _, ok := positions[*current]; ok {
			break
		}
		context, err := em.executionResultStore.Context(em.databaseContext, stagingArea, current)
		if err != nil {
			return err
		}
		reverted = append(reverted, &revertedEpoch{hash: current, number: context.EpochNumber})
		current = context.ParentEpochHash
	}

	forkNumber := 0
	if current != nil {
		forkNumber = positions[*current] + 1
	}
	em.executed = executed[:forkNumber]
	if len(reverted) > 0 {
		log.Warnf("The state tip %s is not on the pivot chain", tip)
		err := em.revertEpochs(current, reverted)
		if err != nil {
			return err
		}
	}

	log.Infof("Loaded %d executed epochs", len(em.executed))
	return nil
}
