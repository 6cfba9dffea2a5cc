package executionmanager

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

// PlanExecution finds the first executed epoch that left the pivot chain
// and copies out every pivot epoch from there on that is at least
// deferDepth epochs below the pivot tip.
func (em *executionManager) PlanExecution() (*model.ExecutionPlan, error) {
	pivot := em.pivotSelector.PivotChain()
	pivotHashes := make([]*externalapi.DomainHash, len(pivot))
	for i, index := range pivot {
		pivotHashes[i] = em.arena.Hash(index)
	}

	forkNumber := uint64(0)
	for forkNumber < uint64(len(em.executed)) && forkNumber < uint64(len(pivot)) &&
		em.executed[forkNumber].hash.Equal(pivotHashes[forkNumber]) {
		forkNumber++
	}

	plan := &model.ExecutionPlan{ForkNumber: forkNumber}
	if uint64(len(pivot)) <= em.deferDepth {
		return plan, nil
	}
	limit := uint64(len(pivot)) - em.deferDepth

	startBlockNumber := uint64(0)
	if forkNumber > 0 {
		startBlockNumber = em.executed[forkNumber-1].nextBlockNumber
	}
	stagingArea := model.NewStagingArea()
	for epochNumber := forkNumber; epochNumber < limit; epochNumber++ {
		task, err := em.buildTask(stagingArea, pivot, pivotHashes, epochNumber, startBlockNumber)
		if err != nil {
			return nil, err
		}
		plan.Tasks = append(plan.Tasks, task)
		startBlockNumber += uint64(len(task.Blocks))
	}

	if forkNumber < uint64(len(em.executed)) || len(plan.Tasks) > 0 {
		log.Debugf("Planned execution: %d executed epochs kept, %d reverted, %d to execute",
			forkNumber, uint64(len(em.executed))-forkNumber, len(plan.Tasks))
	}
	return plan, nil
}

func (em *executionManager) buildTask(stagingArea *model.StagingArea, pivot []model.ArenaIndex,
	pivotHashes []*externalapi.DomainHash, epochNumber uint64, startBlockNumber uint64) (*model.EpochTask, error) {

	members, err := em.pivotSelector.EpochMembers(epochNumber)
	if err != nil {
		return nil, err
	}

	blocks := make([]*model.EpochBlock, len(members))
	for i, member := range members {
		hash := em.arena.Hash(member)
		block, err := em.blockStore.Block(em.databaseContext, stagingArea, hash)
		if err != nil {
			return nil, err
		}
		blocks[i] = &model.EpochBlock{Hash: hash, Block: block}
	}

	skippedCount := 0
	if em.maxExecutedBlocksPerEpoch > 0 && len(blocks) > em.maxExecutedBlocksPerEpoch {
		skippedCount = len(blocks) - em.maxExecutedBlocksPerEpoch
	}

	var parentEpochHash *externalapi.DomainHash
	if epochNumber > 0 {
		parentEpochHash = pivotHashes[epochNumber-1]
	}
	return &model.EpochTask{
		EpochHash:        pivotHashes[epochNumber],
		EpochNumber:      epochNumber,
		ParentEpochHash:  parentEpochHash,
		StartBlockNumber: startBlockNumber,
		PivotHeader:      em.arena.Header(pivot[epochNumber]),
		Blocks:           blocks[skippedCount:],
		SkippedBlocks:    blocks[:skippedCount],
	}, nil
}
