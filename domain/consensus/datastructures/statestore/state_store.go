package statestore

import (
	"sync"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/multiset"
	"github.com/Hoosat-Oy/treegraphd/util/staging"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

var (
	stateBucketName = []byte("state")
	undoBucketName  = []byte("state-undo")
	metaBucketName  = []byte("state-meta")

	tipKeyName      = []byte("tip")
	multisetKeyName = []byte("multiset")
)

var errUnsealedWrites = errors.New("state writes were staged but never sealed by Commit")

// stateStore is the key-value state backend. The state root is the hash of
// a muhash multiset over all key-value pairs, so it is updated
// incrementally on every commit and doesn't depend on write order.
type stateStore struct {
	shardID     model.StagingShardID
	cache       *lru.Cache[string, *stateValue]
	stateBucket model.DBBucket
	undoBucket  model.DBBucket
	tipKey      model.DBKey
	multisetKey model.DBKey

	// metaLock guards the cached meta records, which readers fill lazily
	metaLock      sync.Mutex
	metaCached    bool
	tipCache      *externalapi.DomainHash
	multisetCache model.Multiset
}

// New instantiates a new StateStore
func New(prefixBucket model.DBBucket, cacheSize int) (model.StateStore, error) {
	cache, err := lru.New[string, *stateValue](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the state cache")
	}
	metaBucket := prefixBucket.Bucket(metaBucketName)
	return &stateStore{
		shardID:     staging.GenerateShardingID(),
		cache:       cache,
		stateBucket: prefixBucket.Bucket(stateBucketName),
		undoBucket:  prefixBucket.Bucket(undoBucketName),
		tipKey:      metaBucket.Key(tipKeyName),
		multisetKey: metaBucket.Key(multisetKeyName),
	}, nil
}

// ReadState returns the value of key as seen by the staging area
func (ss *stateStore) ReadState(dbContext model.DBReader, stagingArea *model.StagingArea, key []byte) ([]byte, bool, error) {
	stagingShard := ss.stagingShard(stagingArea)
	if value, ok := stagingShard.pending[string(key)]; ok {
		return cloneValue(value), value.exists(), nil
	}
	return ss.readApplied(dbContext, stagingShard, key)
}

// readApplied reads key while ignoring unsealed writes
func (ss *stateStore) readApplied(dbContext model.DBReader, stagingShard *stateStagingShard, key []byte) ([]byte, bool, error) {
	if value, ok := stagingShard.applied[string(key)]; ok {
		return cloneValue(value), value.exists(), nil
	}
	return ss.readCommitted(dbContext, key)
}

func (ss *stateStore) readCommitted(dbContext model.DBReader, key []byte) ([]byte, bool, error) {
	if value, ok := ss.cache.Get(string(key)); ok {
		return cloneValue(value), value.exists(), nil
	}

	valueBytes, err := dbContext.Get(ss.stateBucket.Key(key))
	if database.IsNotFoundError(err) {
		ss.cache.Add(string(key), &stateValue{})
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if valueBytes == nil {
		valueBytes = []byte{}
	}
	ss.cache.Add(string(key), &stateValue{value: valueBytes})
	return cloneBytes(valueBytes), true, nil
}

func (ss *stateStore) WriteState(stagingArea *model.StagingArea, key, value []byte) {
	if value == nil {
		value = []byte{}
	}
	stagingShard := ss.stagingShard(stagingArea)
	stagingShard.pending[string(key)] = &stateValue{value: cloneBytes(value)}
}

func (ss *stateStore) DeleteState(stagingArea *model.StagingArea, key []byte) {
	stagingShard := ss.stagingShard(stagingArea)
	stagingShard.pending[string(key)] = &stateValue{}
}

func (ss *stateStore) IsStaged(stagingArea *model.StagingArea) bool {
	return ss.stagingShard(stagingArea).isStaged()
}

// Tip returns the epoch whose commit produced the state
func (ss *stateStore) Tip(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	tip, _, err := ss.stagedMeta(dbContext, ss.stagingShard(stagingArea))
	return tip, err
}

// StateRoot returns the root of the state as seen by the staging area,
// not including unsealed writes
func (ss *stateStore) StateRoot(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	_, ms, err := ss.stagedMeta(dbContext, ss.stagingShard(stagingArea))
	if err != nil {
		return nil, err
	}
	return ms.Hash(), nil
}

func (ss *stateStore) ClearCache() {
	ss.cache.Purge()

	ss.metaLock.Lock()
	defer ss.metaLock.Unlock()
	ss.metaCached = false
	ss.tipCache = nil
	ss.multisetCache = nil
}

func (ss *stateStore) stagedMeta(dbContext model.DBReader, stagingShard *stateStagingShard) (*externalapi.DomainHash, model.Multiset, error) {
	if stagingShard.tipStaged {
		return stagingShard.tip, stagingShard.multiset.Clone(), nil
	}
	return ss.committedMeta(dbContext)
}

// committedMeta returns the committed tip and multiset
func (ss *stateStore) committedMeta(dbContext model.DBReader) (*externalapi.DomainHash, model.Multiset, error) {
	ss.metaLock.Lock()
	defer ss.metaLock.Unlock()

	if ss.metaCached {
		return ss.tipCache, ss.multisetCache.Clone(), nil
	}

	var tip *externalapi.DomainHash
	tipBytes, err := dbContext.Get(ss.tipKey)
	if err != nil && !database.IsNotFoundError(err) {
		return nil, nil, err
	}
	if err == nil {
		tip, err = externalapi.NewDomainHashFromByteSlice(tipBytes)
		if err != nil {
			return nil, nil, err
		}
	}

	ms := multiset.New()
	multisetBytes, err := dbContext.Get(ss.multisetKey)
	if err != nil && !database.IsNotFoundError(err) {
		return nil, nil, err
	}
	if err == nil {
		ms, err = multiset.FromBytes(multisetBytes)
		if err != nil {
			return nil, nil, err
		}
	}

	ss.metaCached = true
	ss.tipCache = tip
	ss.multisetCache = ms
	return tip, ms.Clone(), nil
}

func (ss *stateStore) commitMeta(dbTx model.DBTransaction, tip *externalapi.DomainHash, ms model.Multiset) error {
	var err error
	if tip == nil {
		err = dbTx.Delete(ss.tipKey)
	} else {
		err = dbTx.Put(ss.tipKey, tip.ByteSlice())
	}
	if err != nil {
		return err
	}
	err = dbTx.Put(ss.multisetKey, ms.Serialize())
	if err != nil {
		return err
	}

	ss.metaLock.Lock()
	defer ss.metaLock.Unlock()
	ss.metaCached = true
	ss.tipCache = tip
	ss.multisetCache = ms.Clone()
	return nil
}

func (ss *stateStore) undoKey(epochHash *externalapi.DomainHash) model.DBKey {
	return ss.undoBucket.Key(epochHash.ByteSlice())
}

func cloneValue(value *stateValue) []byte {
	if !value.exists() {
		return nil
	}
	return cloneBytes(value.value)
}

func cloneBytes(bytes []byte) []byte {
	clone := make([]byte, len(bytes))
	copy(clone, bytes)
	return clone
}
