package consensusstatestore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/util/staging"
)

var (
	terminalsKeyName   = []byte("terminals")
	checkpointsKeyName = []byte("checkpoints")
)

// consensusStateStore represents a store for the singleton consensus records
type consensusStateStore struct {
	shardID        model.StagingShardID
	terminalsKey   model.DBKey
	checkpointsKey model.DBKey

	terminalsCache   []*externalapi.DomainHash
	checkpointsCache []*externalapi.DomainHash
}

// New instantiates a new ConsensusStateStore
func New(prefixBucket model.DBBucket) model.ConsensusStateStore {
	return &consensusStateStore{
		shardID:        staging.GenerateShardingID(),
		terminalsKey:   prefixBucket.Key(terminalsKeyName),
		checkpointsKey: prefixBucket.Key(checkpointsKeyName),
	}
}

func (css *consensusStateStore) IsStaged(stagingArea *model.StagingArea) bool {
	return css.stagingShard(stagingArea).isStaged()
}

func (css *consensusStateStore) ClearCache() {
	css.terminalsCache = nil
	css.checkpointsCache = nil
}
