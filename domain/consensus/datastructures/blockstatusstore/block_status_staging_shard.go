package blockstatusstore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

type blockStatusStagingShard struct {
	store    *blockStatusStore
	toAdd    map[externalapi.DomainHash]*externalapi.BlockLocalStatus
	toDelete map[externalapi.DomainHash]struct{}
}

func (bss *blockStatusStore) stagingShard(stagingArea *model.StagingArea) *blockStatusStagingShard {
	return stagingArea.GetOrCreateShard(bss.shardID, func() model.StagingShard {
		return &blockStatusStagingShard{
			store:    bss,
			toAdd:    make(map[externalapi.DomainHash]*externalapi.BlockLocalStatus),
			toDelete: make(map[externalapi.DomainHash]struct{}),
		}
	}).(*blockStatusStagingShard)
}

func (shard *blockStatusStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, status := range shard.toAdd {
		err := dbTx.Put(shard.store.hashAsKey(&hash), serialization.SerializeBlockLocalStatus(status))
		if err != nil {
			return err
		}
		shard.store.cache.Add(&hash, status)
	}

	for hash := range shard.toDelete {
		err := dbTx.Delete(shard.store.hashAsKey(&hash))
		if err != nil {
			return err
		}
		shard.store.cache.Remove(&hash)
	}

	return nil
}

func (shard *blockStatusStagingShard) isStaged() bool {
	return len(shard.toAdd) != 0 || len(shard.toDelete) != 0
}
