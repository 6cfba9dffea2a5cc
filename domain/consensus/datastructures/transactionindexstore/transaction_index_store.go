package transactionindexstore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/lrucache"
	"github.com/Hoosat-Oy/treegraphd/util/staging"
)

var bucketName = []byte("transaction-index")

// transactionIndexStore maps a transaction hash to the location of its
// receipt in the current pivot history. Entries of reverted epochs are
// deleted, so an entry always points into a canonical epoch.
type transactionIndexStore struct {
	shardID model.StagingShardID
	cache   *lrucache.LRUCache[*externalapi.TransactionLocation]
	bucket  model.DBBucket
}

// New instantiates a new TransactionIndexStore
func New(prefixBucket model.DBBucket, cacheSize int, preallocate bool) model.TransactionIndexStore {
	return &transactionIndexStore{
		shardID: staging.GenerateShardingID(),
		cache:   lrucache.New[*externalapi.TransactionLocation](cacheSize, preallocate),
		bucket:  prefixBucket.Bucket(bucketName),
	}
}

func (tis *transactionIndexStore) Stage(stagingArea *model.StagingArea, transactionID *externalapi.DomainTransactionID, location *externalapi.TransactionLocation) {
	stagingShard := tis.stagingShard(stagingArea)
	delete(stagingShard.toDelete, *transactionID)
	locationClone := *location
	stagingShard.toAdd[*transactionID] = &locationClone
}

func (tis *transactionIndexStore) IsStaged(stagingArea *model.StagingArea) bool {
	return tis.stagingShard(stagingArea).isStaged()
}

// Get returns the location of the given transaction, and false if the
// transaction isn't indexed
func (tis *transactionIndexStore) Get(dbContext model.DBReader, stagingArea *model.StagingArea,
	transactionID *externalapi.DomainTransactionID) (*externalapi.TransactionLocation, bool, error) {

	stagingShard := tis.stagingShard(stagingArea)

	if location, ok := stagingShard.toAdd[*transactionID]; ok {
		locationClone := *location
		return &locationClone, true, nil
	}
	if _, ok := stagingShard.toDelete[*transactionID]; ok {
		return nil, false, nil
	}

	if location, ok := tis.cache.Get((*externalapi.DomainHash)(transactionID)); ok {
		locationClone := *location
		return &locationClone, true, nil
	}

	locationBytes, err := dbContext.Get(tis.transactionIDAsKey(transactionID))
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	location, err := serialization.DeserializeTransactionLocation(locationBytes)
	if err != nil {
		return nil, false, err
	}
	tis.cache.Add((*externalapi.DomainHash)(transactionID), location)
	locationClone := *location
	return &locationClone, true, nil
}

func (tis *transactionIndexStore) Delete(stagingArea *model.StagingArea, transactionID *externalapi.DomainTransactionID) {
	stagingShard := tis.stagingShard(stagingArea)
	delete(stagingShard.toAdd, *transactionID)
	stagingShard.toDelete[*transactionID] = struct{}{}
}

func (tis *transactionIndexStore) ClearCache() {
	tis.cache.Clear()
}

func (tis *transactionIndexStore) transactionIDAsKey(transactionID *externalapi.DomainTransactionID) model.DBKey {
	return tis.bucket.Key((*externalapi.DomainHash)(transactionID).ByteSlice())
}
