package consensusstatestore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

type consensusStateStagingShard struct {
	store       *consensusStateStore
	terminals   []*externalapi.DomainHash
	checkpoints []*externalapi.DomainHash
}

func (css *consensusStateStore) stagingShard(stagingArea *model.StagingArea) *consensusStateStagingShard {
	return stagingArea.GetOrCreateShard(css.shardID, func() model.StagingShard {
		return &consensusStateStagingShard{store: css}
	}).(*consensusStateStagingShard)
}

func (shard *consensusStateStagingShard) Commit(dbTx model.DBTransaction) error {
	err := shard.commitTerminals(dbTx)
	if err != nil {
		return err
	}
	return shard.commitCheckpoints(dbTx)
}

func (shard *consensusStateStagingShard) isStaged() bool {
	return shard.terminals != nil || shard.checkpoints != nil
}
