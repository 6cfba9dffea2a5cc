package epochstore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

type epochStagingShard struct {
	store         *epochStore
	executedToAdd map[uint64][]*externalapi.DomainHash
	skippedToAdd  map[uint64][]*externalapi.DomainHash
	toDelete      map[uint64]struct{}
}

func (es *epochStore) stagingShard(stagingArea *model.StagingArea) *epochStagingShard {
	return stagingArea.GetOrCreateShard(es.shardID, func() model.StagingShard {
		return &epochStagingShard{
			store:         es,
			executedToAdd: make(map[uint64][]*externalapi.DomainHash),
			skippedToAdd:  make(map[uint64][]*externalapi.DomainHash),
			toDelete:      make(map[uint64]struct{}),
		}
	}).(*epochStagingShard)
}

func (shard *epochStagingShard) Commit(dbTx model.DBTransaction) error {
	for epochNumber := range shard.toDelete {
		err := dbTx.Delete(shard.store.epochKey(epochNumber, executedBlocksSuffix))
		if err != nil {
			return err
		}
		err = dbTx.Delete(shard.store.epochKey(epochNumber, skippedBlocksSuffix))
		if err != nil {
			return err
		}
		shard.store.executedCache.Remove(epochNumber)
		shard.store.skippedCache.Remove(epochNumber)
	}

	for epochNumber, hashes := range shard.executedToAdd {
		err := dbTx.Put(shard.store.epochKey(epochNumber, executedBlocksSuffix), serialization.SerializeHashes(hashes))
		if err != nil {
			return err
		}
		shard.store.executedCache.Add(epochNumber, hashes)
	}

	for epochNumber, hashes := range shard.skippedToAdd {
		err := dbTx.Put(shard.store.epochKey(epochNumber, skippedBlocksSuffix), serialization.SerializeHashes(hashes))
		if err != nil {
			return err
		}
		shard.store.skippedCache.Add(epochNumber, hashes)
	}

	return nil
}

func (shard *epochStagingShard) isStaged() bool {
	return len(shard.executedToAdd) != 0 || len(shard.skippedToAdd) != 0 || len(shard.toDelete) != 0
}
