package blockstore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/lrucache"
	"github.com/Hoosat-Oy/treegraphd/util/staging"
)

var (
	headersBucketName = []byte("block-headers")
	bodiesBucketName  = []byte("block-bodies")
	countKeyName      = []byte("blocks-count")
)

// blockStore represents a store of blocks. Headers and bodies are kept in
// separate buckets so that header-only reads don't pay for the body.
type blockStore struct {
	shardID       model.StagingShardID
	cache         *lrucache.LRUCache[*externalapi.DomainBlock]
	headersBucket model.DBBucket
	bodiesBucket  model.DBBucket
	countKey      model.DBKey
	countCached   uint64
}

// New instantiates a new BlockStore
func New(dbContext model.DBReader, prefixBucket model.DBBucket, cacheSize int, preallocate bool) (model.BlockStore, error) {
	blockStore := &blockStore{
		shardID:       staging.GenerateShardingID(),
		cache:         lrucache.New[*externalapi.DomainBlock](cacheSize, preallocate),
		headersBucket: prefixBucket.Bucket(headersBucketName),
		bodiesBucket:  prefixBucket.Bucket(bodiesBucketName),
		countKey:      prefixBucket.Key(countKeyName),
	}

	err := blockStore.initializeCount(dbContext)
	if err != nil {
		return nil, err
	}

	return blockStore, nil
}

func (bs *blockStore) initializeCount(dbContext model.DBReader) error {
	count := uint64(0)
	hasCountBytes, err := dbContext.Has(bs.countKey)
	if err != nil {
		return err
	}
	if hasCountBytes {
		countBytes, err := dbContext.Get(bs.countKey)
		if err != nil {
			return err
		}
		count, err = serialization.DeserializeCount(countBytes)
		if err != nil {
			return err
		}
	}
	bs.countCached = count
	return nil
}

// Stage stages the given block for the given blockHash
func (bs *blockStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, block *externalapi.DomainBlock) {
	stagingShard := bs.stagingShard(stagingArea)
	stagingShard.toAdd[*blockHash] = block.Clone()
}

func (bs *blockStore) IsStaged(stagingArea *model.StagingArea) bool {
	return bs.stagingShard(stagingArea).isStaged()
}

// Block gets the block associated with the given blockHash
func (bs *blockStore) Block(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	stagingShard := bs.stagingShard(stagingArea)

	if block, ok := stagingShard.toAdd[*blockHash]; ok {
		return block.Clone(), nil
	}

	if block, ok := bs.cachedBlock(blockHash); ok {
		return block.Clone(), nil
	}

	header, err := bs.readHeader(dbContext, blockHash)
	if err != nil {
		return nil, err
	}
	bodyBytes, err := dbContext.Get(bs.bodyKey(blockHash))
	if err != nil {
		return nil, err
	}
	transactions, err := serialization.DeserializeBlockBody(bodyBytes)
	if err != nil {
		return nil, err
	}

	block := &externalapi.DomainBlock{Header: header, Transactions: transactions}
	bs.cacheBlock(blockHash, block)
	return block.Clone(), nil
}

// BlockHeader gets the header of the block associated with the given blockHash
func (bs *blockStore) BlockHeader(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	stagingShard := bs.stagingShard(stagingArea)

	if block, ok := stagingShard.toAdd[*blockHash]; ok {
		return block.Header.Clone(), nil
	}

	if block, ok := bs.cachedBlock(blockHash); ok {
		return block.Header.Clone(), nil
	}

	return bs.readHeader(dbContext, blockHash)
}

func (bs *blockStore) readHeader(dbContext model.DBReader, blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {
	headerBytes, err := dbContext.Get(bs.headerKey(blockHash))
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeBlockHeader(headerBytes)
}

// HasBlock returns whether a block with a given hash exists in the store.
func (bs *blockStore) HasBlock(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	stagingShard := bs.stagingShard(stagingArea)

	if _, ok := stagingShard.toAdd[*blockHash]; ok {
		return true, nil
	}
	if _, ok := stagingShard.toDelete[*blockHash]; ok {
		return false, nil
	}

	if _, ok := bs.cachedBlock(blockHash); ok {
		return true, nil
	}

	return dbContext.Has(bs.headerKey(blockHash))
}

// Delete deletes the block associated with the given blockHash
func (bs *blockStore) Delete(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) {
	stagingShard := bs.stagingShard(stagingArea)

	if _, ok := stagingShard.toAdd[*blockHash]; ok {
		delete(stagingShard.toAdd, *blockHash)
		return
	}
	stagingShard.toDelete[*blockHash] = struct{}{}
}

func (bs *blockStore) Count(stagingArea *model.StagingArea) uint64 {
	stagingShard := bs.stagingShard(stagingArea)
	return bs.count(stagingShard)
}

func (bs *blockStore) count(stagingShard *blockStagingShard) uint64 {
	return bs.countCached + uint64(len(stagingShard.toAdd)) - uint64(len(stagingShard.toDelete))
}

func (bs *blockStore) ClearCache() {
	bs.cache.Clear()
}

func (bs *blockStore) cachedBlock(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, bool) {
	return bs.cache.Get(blockHash)
}

func (bs *blockStore) cacheBlock(blockHash *externalapi.DomainHash, block *externalapi.DomainBlock) {
	bs.cache.Add(blockHash, block)
}

func (bs *blockStore) uncacheBlock(blockHash *externalapi.DomainHash) {
	bs.cache.Remove(blockHash)
}

func (bs *blockStore) headerKey(hash *externalapi.DomainHash) model.DBKey {
	return bs.headersBucket.Key(hash.ByteSlice())
}

func (bs *blockStore) bodyKey(hash *externalapi.DomainHash) model.DBKey {
	return bs.bodiesBucket.Key(hash.ByteSlice())
}
