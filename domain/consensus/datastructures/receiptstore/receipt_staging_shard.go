package receiptstore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

type receiptStagingShard struct {
	store    *receiptStore
	toAdd    map[receiptKey]*externalapi.BlockReceipts
	toDelete map[receiptKey]struct{}
}

func (rs *receiptStore) stagingShard(stagingArea *model.StagingArea) *receiptStagingShard {
	return stagingArea.GetOrCreateShard(rs.shardID, func() model.StagingShard {
		return &receiptStagingShard{
			store:    rs,
			toAdd:    make(map[receiptKey]*externalapi.BlockReceipts),
			toDelete: make(map[receiptKey]struct{}),
		}
	}).(*receiptStagingShard)
}

func (shard *receiptStagingShard) Commit(dbTx model.DBTransaction) error {
	for key := range shard.toDelete {
		err := dbTx.Delete(shard.store.dbKey(key))
		if err != nil {
			return err
		}
		shard.store.cache.Remove(key)
	}

	for key, receipts := range shard.toAdd {
		err := dbTx.Put(shard.store.dbKey(key), serialization.SerializeBlockReceipts(receipts))
		if err != nil {
			return err
		}
		shard.store.cache.Add(key, receipts)
	}

	return nil
}

func (shard *receiptStagingShard) isStaged() bool {
	return len(shard.toAdd) != 0 || len(shard.toDelete) != 0
}
