package epochstore

import (
	"encoding/binary"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/util/staging"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

var bucketName = []byte("epochs")

const (
	executedBlocksSuffix byte = 0x01
	skippedBlocksSuffix  byte = 0x02
)

// epochStore keeps, per executed epoch number, the list of blocks that were
// executed and the list of blocks that were skipped.
type epochStore struct {
	shardID       model.StagingShardID
	executedCache *lru.Cache[uint64, []*externalapi.DomainHash]
	skippedCache  *lru.Cache[uint64, []*externalapi.DomainHash]
	bucket        model.DBBucket
}

// New instantiates a new EpochStore
func New(prefixBucket model.DBBucket, cacheSize int) (model.EpochStore, error) {
	executedCache, err := lru.New[uint64, []*externalapi.DomainHash](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the executed blocks cache")
	}
	skippedCache, err := lru.New[uint64, []*externalapi.DomainHash](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the skipped blocks cache")
	}
	return &epochStore{
		shardID:       staging.GenerateShardingID(),
		executedCache: executedCache,
		skippedCache:  skippedCache,
		bucket:        prefixBucket.Bucket(bucketName),
	}, nil
}

func (es *epochStore) StageExecutedBlocks(stagingArea *model.StagingArea, epochNumber uint64, blockHashes []*externalapi.DomainHash) {
	stagingShard := es.stagingShard(stagingArea)
	stagingShard.executedToAdd[epochNumber] = externalapi.CloneHashes(blockHashes)
}

func (es *epochStore) StageSkippedBlocks(stagingArea *model.StagingArea, epochNumber uint64, blockHashes []*externalapi.DomainHash) {
	stagingShard := es.stagingShard(stagingArea)
	stagingShard.skippedToAdd[epochNumber] = externalapi.CloneHashes(blockHashes)
}

func (es *epochStore) IsStaged(stagingArea *model.StagingArea) bool {
	return es.stagingShard(stagingArea).isStaged()
}

// ExecutedBlocks returns the blocks executed in the given epoch, in execution order
func (es *epochStore) ExecutedBlocks(dbContext model.DBReader, stagingArea *model.StagingArea, epochNumber uint64) ([]*externalapi.DomainHash, error) {
	stagingShard := es.stagingShard(stagingArea)
	if hashes, ok := stagingShard.executedToAdd[epochNumber]; ok {
		return externalapi.CloneHashes(hashes), nil
	}
	return es.get(dbContext, stagingShard, es.executedCache, epochNumber, executedBlocksSuffix)
}

// SkippedBlocks returns the blocks of the given epoch that were dropped by
// the execution bound
func (es *epochStore) SkippedBlocks(dbContext model.DBReader, stagingArea *model.StagingArea, epochNumber uint64) ([]*externalapi.DomainHash, error) {
	stagingShard := es.stagingShard(stagingArea)
	if hashes, ok := stagingShard.skippedToAdd[epochNumber]; ok {
		return externalapi.CloneHashes(hashes), nil
	}
	return es.get(dbContext, stagingShard, es.skippedCache, epochNumber, skippedBlocksSuffix)
}

func (es *epochStore) get(dbContext model.DBReader, stagingShard *epochStagingShard,
	cache *lru.Cache[uint64, []*externalapi.DomainHash], epochNumber uint64, suffix byte) ([]*externalapi.DomainHash, error) {

	if _, ok := stagingShard.toDelete[epochNumber]; ok {
		return nil, errors.Wrapf(database.ErrNotFound, "epoch %d is staged for deletion", epochNumber)
	}

	if hashes, ok := cache.Get(epochNumber); ok {
		return externalapi.CloneHashes(hashes), nil
	}

	hashesBytes, err := dbContext.Get(es.epochKey(epochNumber, suffix))
	if err != nil {
		return nil, err
	}
	hashes, err := serialization.DeserializeHashes(hashesBytes)
	if err != nil {
		return nil, err
	}
	cache.Add(epochNumber, hashes)
	return externalapi.CloneHashes(hashes), nil
}

// Delete removes both block lists of the given epoch. It is used when a
// reorg reverts the epoch.
func (es *epochStore) Delete(stagingArea *model.StagingArea, epochNumber uint64) {
	stagingShard := es.stagingShard(stagingArea)
	delete(stagingShard.executedToAdd, epochNumber)
	delete(stagingShard.skippedToAdd, epochNumber)
	stagingShard.toDelete[epochNumber] = struct{}{}
}

func (es *epochStore) ClearCache() {
	es.executedCache.Purge()
	es.skippedCache.Purge()
}

// epochKey orders keys by epoch number, so the key is the big-endian epoch
// number followed by the list discriminator.
func (es *epochStore) epochKey(epochNumber uint64, suffix byte) model.DBKey {
	var keyBytes [9]byte
	binary.BigEndian.PutUint64(keyBytes[:8], epochNumber)
	keyBytes[8] = suffix
	return es.bucket.Key(keyBytes[:])
}
