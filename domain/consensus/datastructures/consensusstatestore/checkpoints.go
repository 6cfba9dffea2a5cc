package consensusstatestore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

// StageCheckpoints stages the genesis blocks of the two most recent eras,
// older first
func (css *consensusStateStore) StageCheckpoints(stagingArea *model.StagingArea, checkpoints []*externalapi.DomainHash) {
	stagingShard := css.stagingShard(stagingArea)
	stagingShard.checkpoints = externalapi.CloneHashes(checkpoints)
}

func (css *consensusStateStore) Checkpoints(dbContext model.DBReader, stagingArea *model.StagingArea) ([]*externalapi.DomainHash, error) {
	stagingShard := css.stagingShard(stagingArea)
	if stagingShard.checkpoints != nil {
		return externalapi.CloneHashes(stagingShard.checkpoints), nil
	}

	if css.checkpointsCache != nil {
		return externalapi.CloneHashes(css.checkpointsCache), nil
	}

	checkpointsBytes, err := dbContext.Get(css.checkpointsKey)
	if err != nil {
		return nil, err
	}
	checkpoints, err := serialization.DeserializeHashes(checkpointsBytes)
	if err != nil {
		return nil, err
	}
	css.checkpointsCache = checkpoints
	return externalapi.CloneHashes(checkpoints), nil
}

func (shard *consensusStateStagingShard) commitCheckpoints(dbTx model.DBTransaction) error {
	if shard.checkpoints == nil {
		return nil
	}
	err := dbTx.Put(shard.store.checkpointsKey, serialization.SerializeHashes(shard.checkpoints))
	if err != nil {
		return err
	}
	shard.store.checkpointsCache = shard.checkpoints
	return nil
}
