package blockstore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

type blockStagingShard struct {
	store    *blockStore
	toAdd    map[externalapi.DomainHash]*externalapi.DomainBlock
	toDelete map[externalapi.DomainHash]struct{}
}

func (bs *blockStore) stagingShard(stagingArea *model.StagingArea) *blockStagingShard {
	return stagingArea.GetOrCreateShard(bs.shardID, func() model.StagingShard {
		return &blockStagingShard{
			store:    bs,
			toAdd:    make(map[externalapi.DomainHash]*externalapi.DomainBlock),
			toDelete: make(map[externalapi.DomainHash]struct{}),
		}
	}).(*blockStagingShard)
}

func (bss *blockStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, block := range bss.toAdd {
		err := dbTx.Put(bss.store.headerKey(&hash), serialization.SerializeBlockHeader(block.Header))
		if err != nil {
			return err
		}
		err = dbTx.Put(bss.store.bodyKey(&hash), serialization.SerializeBlockBody(block.Transactions))
		if err != nil {
			return err
		}
		bss.store.cacheBlock(&hash, block)
	}

	for hash := range bss.toDelete {
		err := dbTx.Delete(bss.store.headerKey(&hash))
		if err != nil {
			return err
		}
		err = dbTx.Delete(bss.store.bodyKey(&hash))
		if err != nil {
			return err
		}
		bss.store.uncacheBlock(&hash)
	}

	return bss.commitCount(dbTx)
}

func (bss *blockStagingShard) commitCount(dbTx model.DBTransaction) error {
	count := bss.store.count(bss)
	err := dbTx.Put(bss.store.countKey, serialization.SerializeCount(count))
	if err != nil {
		return err
	}
	bss.store.countCached = count
	return nil
}

func (bss *blockStagingShard) isStaged() bool {
	return len(bss.toAdd) != 0 || len(bss.toDelete) != 0
}
