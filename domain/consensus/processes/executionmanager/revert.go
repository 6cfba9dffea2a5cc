package executionmanager

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/util/staging"
)

type revertedEpoch struct {
	hash   *externalapi.DomainHash
	number uint64
}

// revertTo reverts every executed epoch from forkNumber on
func (em *executionManager) revertTo(forkNumber uint64) error {
	reverted := make([]*revertedEpoch, 0, uint64(len(em.executed))-forkNumber)
	for number := uint64(len(em.executed)) - 1; number >= forkNumber; number-- {
		reverted = append(reverted, &revertedEpoch{hash: em.executed[number].hash, number: number})
		if number == 0 {
			break
		}
	}

	err := em.revertEpochs(em.executedHash(forkNumber), reverted)
	if err != nil {
		return err
	}
	em.executed = em.executed[:forkNumber]
	return nil
}

// revertEpochs rolls the state back to target and erases what the given
// epochs, newest first, left in the indexes. Their execution results are
// kept but no longer count as local-main.
func (em *executionManager) revertEpochs(target *externalapi.DomainHash, reverted []*revertedEpoch) error {
	stagingArea := model.NewStagingArea()
	_, err := em.stateStore.RevertTo(em.databaseContext, stagingArea, target)
	if err != nil {
		return err
	}
	for _, epoch := range reverted {
		err := em.unindexEpoch(stagingArea, epoch)
		if err != nil {
			return err
		}
	}
	err = staging.CommitAllChanges(em.databaseContext, stagingArea)
	if err != nil {
		return err
	}

	log.Infof("Reverted %d executed epochs, the state is back at epoch %s", len(reverted), target)
	return nil
}

func (em *executionManager) unindexEpoch(stagingArea *model.StagingArea, epoch *revertedEpoch) error {
	result, err := em.executionResultStore.Result(em.databaseContext, stagingArea, epoch.hash)
	if err != nil {
		return err
	}
	for _, blockHash := range result.ExecutedBlocks {
		receipts, err := em.receiptStore.Get(em.databaseContext, stagingArea, blockHash, epoch.hash)
		if err != nil {
			return err
		}
		for _, receipt := range receipts.Receipts {
			if receipt.Status == externalapi.ReceiptStatusSkipped {
				continue
			}
			err := em.unindex(stagingArea, receipt.TransactionID, epoch.hash)
			if err != nil {
				return err
			}
			for _, phantom := range receipt.PhantomTransactions {
				phantomHash := externalapi.NewDomainHashFromByteArray((*[externalapi.DomainHashSize]byte)(&phantom.Hash))
				err := em.unindex(stagingArea, (*externalapi.DomainTransactionID)(phantomHash), epoch.hash)
				if err != nil {
					return err
				}
			}
		}
	}

	em.epochStore.Delete(stagingArea, epoch.number)
	result.IsLocalMain = false
	em.executionResultStore.StageResult(stagingArea, epoch.hash, result)
	log.Debugf("Unindexed epoch %d (%s)", epoch.number, epoch.hash)
	return nil
}

// unindex removes the location of transactionID if it points into epochHash
func (em *executionManager) unindex(stagingArea *model.StagingArea, transactionID *externalapi.DomainTransactionID,
	epochHash *externalapi.DomainHash) error {

	location, found, err := em.transactionIndexStore.Get(em.databaseContext, stagingArea, transactionID)
	if err != nil {
		return err
	}
	if found && location.EpochHash.Equal(epochHash) {
		em.transactionIndexStore.Delete(stagingArea, transactionID)
	}
	return nil
}
