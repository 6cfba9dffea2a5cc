package blockstatusstore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/lrucache"
	"github.com/Hoosat-Oy/treegraphd/util/staging"
)

var bucketName = []byte("block-statuses")

// blockStatusStore represents a store of BlockLocalStatuses
type blockStatusStore struct {
	shardID model.StagingShardID
	cache   *lrucache.LRUCache[*externalapi.BlockLocalStatus]
	bucket  model.DBBucket
}

// New instantiates a new BlockStatusStore
func New(prefixBucket model.DBBucket, cacheSize int, preallocate bool) model.BlockStatusStore {
	return &blockStatusStore{
		shardID: staging.GenerateShardingID(),
		cache:   lrucache.New[*externalapi.BlockLocalStatus](cacheSize, preallocate),
		bucket:  prefixBucket.Bucket(bucketName),
	}
}

// Stage stages the provided status for the given blockHash
func (bss *blockStatusStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, status *externalapi.BlockLocalStatus) {
	stagingShard := bss.stagingShard(stagingArea)
	delete(stagingShard.toDelete, *blockHash)
	stagingShard.toAdd[*blockHash] = status.Clone()
}

func (bss *blockStatusStore) IsStaged(stagingArea *model.StagingArea) bool {
	return bss.stagingShard(stagingArea).isStaged()
}

// Get gets the status associated with the given blockHash
func (bss *blockStatusStore) Get(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (*externalapi.BlockLocalStatus, error) {
	stagingShard := bss.stagingShard(stagingArea)

	if status, ok := stagingShard.toAdd[*blockHash]; ok {
		return status.Clone(), nil
	}

	if status, ok := bss.cache.Get(blockHash); ok {
		return status.Clone(), nil
	}

	statusBytes, err := dbContext.Get(bss.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	status, err := serialization.DeserializeBlockLocalStatus(statusBytes)
	if err != nil {
		return nil, err
	}
	bss.cache.Add(blockHash, status)
	return status.Clone(), nil
}

// Exists returns true if the blockHash exists in the store.
func (bss *blockStatusStore) Exists(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	stagingShard := bss.stagingShard(stagingArea)

	if _, ok := stagingShard.toAdd[*blockHash]; ok {
		return true, nil
	}
	if _, ok := stagingShard.toDelete[*blockHash]; ok {
		return false, nil
	}

	if bss.cache.Has(blockHash) {
		return true, nil
	}

	return dbContext.Has(bss.hashAsKey(blockHash))
}

// Delete deletes the status associated with the given blockHash
func (bss *blockStatusStore) Delete(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) {
	stagingShard := bss.stagingShard(stagingArea)

	if _, ok := stagingShard.toAdd[*blockHash]; ok {
		delete(stagingShard.toAdd, *blockHash)
	}
	stagingShard.toDelete[*blockHash] = struct{}{}
}

// All returns every committed status. It is used to rebuild the graph on
// startup, so it bypasses the cache and any staging area.
func (bss *blockStatusStore) All(dbContext model.DBReader) ([]*model.HashAndLocalStatus, error) {
	cursor, err := dbContext.Cursor(bss.bucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var all []*model.HashAndLocalStatus
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return nil, err
		}
		hash, err := externalapi.NewDomainHashFromByteSlice(key.Suffix())
		if err != nil {
			return nil, err
		}
		statusBytes, err := cursor.Value()
		if err != nil {
			return nil, err
		}
		status, err := serialization.DeserializeBlockLocalStatus(statusBytes)
		if err != nil {
			return nil, err
		}
		all = append(all, &model.HashAndLocalStatus{Hash: hash, Status: status})
	}
	return all, nil
}

func (bss *blockStatusStore) ClearCache() {
	bss.cache.Clear()
}

func (bss *blockStatusStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bss.bucket.Key(hash.ByteSlice())
}
