package receiptstore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/util/staging"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

var bucketName = []byte("receipts")

type receiptKey struct {
	blockHash externalapi.DomainHash
	epochHash externalapi.DomainHash
}

func newReceiptKey(blockHash, epochHash *externalapi.DomainHash) receiptKey {
	return receiptKey{blockHash: *blockHash, epochHash: *epochHash}
}

// receiptStore keeps the receipts of a block per epoch it was executed in
type receiptStore struct {
	shardID model.StagingShardID
	cache   *lru.Cache[receiptKey, *externalapi.BlockReceipts]
	bucket  model.DBBucket
}

// New instantiates a new ReceiptStore
func New(prefixBucket model.DBBucket, cacheSize int) (model.ReceiptStore, error) {
	cache, err := lru.New[receiptKey, *externalapi.BlockReceipts](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the receipts cache")
	}
	return &receiptStore{
		shardID: staging.GenerateShardingID(),
		cache:   cache,
		bucket:  prefixBucket.Bucket(bucketName),
	}, nil
}

// Stage stages the receipts under their block and epoch hashes
func (rs *receiptStore) Stage(stagingArea *model.StagingArea, receipts *externalapi.BlockReceipts) {
	stagingShard := rs.stagingShard(stagingArea)
	key := newReceiptKey(receipts.BlockHash, receipts.EpochHash)
	delete(stagingShard.toDelete, key)
	stagingShard.toAdd[key] = receipts.Clone()
}

func (rs *receiptStore) IsStaged(stagingArea *model.StagingArea) bool {
	return rs.stagingShard(stagingArea).isStaged()
}

func (rs *receiptStore) Get(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash, epochHash *externalapi.DomainHash) (*externalapi.BlockReceipts, error) {

	stagingShard := rs.stagingShard(stagingArea)
	key := newReceiptKey(blockHash, epochHash)

	if receipts, ok := stagingShard.toAdd[key]; ok {
		return receipts.Clone(), nil
	}

	if receipts, ok := rs.cache.Get(key); ok {
		return receipts.Clone(), nil
	}

	receiptsBytes, err := dbContext.Get(rs.dbKey(key))
	if err != nil {
		return nil, err
	}
	receipts, err := serialization.DeserializeBlockReceipts(receiptsBytes)
	if err != nil {
		return nil, err
	}
	rs.cache.Add(key, receipts)
	return receipts.Clone(), nil
}

func (rs *receiptStore) Delete(stagingArea *model.StagingArea, blockHash, epochHash *externalapi.DomainHash) {
	stagingShard := rs.stagingShard(stagingArea)
	key := newReceiptKey(blockHash, epochHash)
	delete(stagingShard.toAdd, key)
	stagingShard.toDelete[key] = struct{}{}
}

func (rs *receiptStore) ClearCache() {
	rs.cache.Purge()
}

func (rs *receiptStore) dbKey(key receiptKey) model.DBKey {
	keyBytes := make([]byte, 0, 2*externalapi.DomainHashSize)
	keyBytes = append(keyBytes, key.blockHash.ByteSlice()...)
	keyBytes = append(keyBytes, key.epochHash.ByteSlice()...)
	return rs.bucket.Key(keyBytes)
}
