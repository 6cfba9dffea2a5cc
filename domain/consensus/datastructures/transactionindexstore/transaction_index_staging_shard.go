package transactionindexstore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

type transactionIndexStagingShard struct {
	store    *transactionIndexStore
	toAdd    map[externalapi.DomainTransactionID]*externalapi.TransactionLocation
	toDelete map[externalapi.DomainTransactionID]struct{}
}

func (tis *transactionIndexStore) stagingShard(stagingArea *model.StagingArea) *transactionIndexStagingShard {
	return stagingArea.GetOrCreateShard(tis.shardID, func() model.StagingShard {
		return &transactionIndexStagingShard{
			store:    tis,
			toAdd:    make(map[externalapi.DomainTransactionID]*externalapi.TransactionLocation),
			toDelete: make(map[externalapi.DomainTransactionID]struct{}),
		}
	}).(*transactionIndexStagingShard)
}

func (shard *transactionIndexStagingShard) Commit(dbTx model.DBTransaction) error {
	for transactionID := range shard.toDelete {
		err := dbTx.Delete(shard.store.transactionIDAsKey(&transactionID))
		if err != nil {
			return err
		}
		shard.store.cache.Remove((*externalapi.DomainHash)(&transactionID))
	}

	for transactionID, location := range shard.toAdd {
		err := dbTx.Put(shard.store.transactionIDAsKey(&transactionID), serialization.SerializeTransactionLocation(location))
		if err != nil {
			return err
		}
		shard.store.cache.Add((*externalapi.DomainHash)(&transactionID), location)
	}

	return nil
}

func (shard *transactionIndexStagingShard) isStaged() bool {
	return len(shard.toAdd) != 0 || len(shard.toDelete) != 0
}
