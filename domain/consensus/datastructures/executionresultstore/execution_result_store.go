package executionresultstore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/lrucache"
	"github.com/Hoosat-Oy/treegraphd/util/staging"
)

var bucketName = []byte("execution-results")

const (
	resultSuffix  byte = 0x01
	contextSuffix byte = 0x02
)

// executionResultStore keeps the commitments of every executed epoch and
// the context it was executed under. Results of epochs reverted by a reorg
// stay in the store with IsLocalMain cleared.
type executionResultStore struct {
	shardID       model.StagingShardID
	resultsCache  *lrucache.LRUCache[*externalapi.EpochExecutionResult]
	contextsCache *lrucache.LRUCache[*externalapi.EpochExecutionContext]
	bucket        model.DBBucket
}

// New instantiates a new ExecutionResultStore
func New(prefixBucket model.DBBucket, cacheSize int, preallocate bool) model.ExecutionResultStore {
	return &executionResultStore{
		shardID:       staging.GenerateShardingID(),
		resultsCache:  lrucache.New[*externalapi.EpochExecutionResult](cacheSize, preallocate),
		contextsCache: lrucache.New[*externalapi.EpochExecutionContext](cacheSize, preallocate),
		bucket:        prefixBucket.Bucket(bucketName),
	}
}

func (ers *executionResultStore) StageResult(stagingArea *model.StagingArea, epochHash *externalapi.DomainHash, result *externalapi.EpochExecutionResult) {
	stagingShard := ers.stagingShard(stagingArea)
	stagingShard.resultsToAdd[*epochHash] = result.Clone()
}

func (ers *executionResultStore) StageContext(stagingArea *model.StagingArea, epochHash *externalapi.DomainHash, context *externalapi.EpochExecutionContext) {
	stagingShard := ers.stagingShard(stagingArea)
	contextClone := *context
	stagingShard.contextsToAdd[*epochHash] = &contextClone
}

func (ers *executionResultStore) IsStaged(stagingArea *model.StagingArea) bool {
	return ers.stagingShard(stagingArea).isStaged()
}

// Result returns the persisted part of the execution result of epochHash.
// Per-block receipts are kept in the ReceiptStore.
func (ers *executionResultStore) Result(dbContext model.DBReader, stagingArea *model.StagingArea, epochHash *externalapi.DomainHash) (*externalapi.EpochExecutionResult, error) {
	stagingShard := ers.stagingShard(stagingArea)

	if result, ok := stagingShard.resultsToAdd[*epochHash]; ok {
		return result.Clone(), nil
	}

	if result, ok := ers.resultsCache.Get(epochHash); ok {
		return result.Clone(), nil
	}

	resultBytes, err := dbContext.Get(ers.resultKey(epochHash))
	if err != nil {
		return nil, err
	}
	result, err := serialization.DeserializeEpochExecutionResult(resultBytes)
	if err != nil {
		return nil, err
	}
	ers.resultsCache.Add(epochHash, result)
	return result.Clone(), nil
}

func (ers *executionResultStore) Context(dbContext model.DBReader, stagingArea *model.StagingArea, epochHash *externalapi.DomainHash) (*externalapi.EpochExecutionContext, error) {
	stagingShard := ers.stagingShard(stagingArea)

	if context, ok := stagingShard.contextsToAdd[*epochHash]; ok {
		contextClone := *context
		return &contextClone, nil
	}

	if context, ok := ers.contextsCache.Get(epochHash); ok {
		contextClone := *context
		return &contextClone, nil
	}

	contextBytes, err := dbContext.Get(ers.contextKey(epochHash))
	if err != nil {
		return nil, err
	}
	context, err := serialization.DeserializeEpochExecutionContext(contextBytes)
	if err != nil {
		return nil, err
	}
	ers.contextsCache.Add(epochHash, context)
	contextClone := *context
	return &contextClone, nil
}

func (ers *executionResultStore) HasResult(dbContext model.DBReader, stagingArea *model.StagingArea, epochHash *externalapi.DomainHash) (bool, error) {
	stagingShard := ers.stagingShard(stagingArea)

	if _, ok := stagingShard.resultsToAdd[*epochHash]; ok {
		return true, nil
	}

	if ers.resultsCache.Has(epochHash) {
		return true, nil
	}

	return dbContext.Has(ers.resultKey(epochHash))
}

func (ers *executionResultStore) ClearCache() {
	ers.resultsCache.Clear()
	ers.contextsCache.Clear()
}

func (ers *executionResultStore) resultKey(hash *externalapi.DomainHash) model.DBKey {
	return ers.bucket.Key(append(hash.ByteSlice(), resultSuffix))
}

func (ers *executionResultStore) contextKey(hash *externalapi.DomainHash) model.DBKey {
	return ers.bucket.Key(append(hash.ByteSlice(), contextSuffix))
}
