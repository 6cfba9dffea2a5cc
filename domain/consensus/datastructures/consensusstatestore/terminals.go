package consensusstatestore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

// StageTerminals stages the graph-ready blocks that have no graph-ready
// children or referrers
func (css *consensusStateStore) StageTerminals(stagingArea *model.StagingArea, terminals []*externalapi.DomainHash) {
	stagingShard := css.stagingShard(stagingArea)
	stagingShard.terminals = externalapi.CloneHashes(terminals)
}

func (css *consensusStateStore) Terminals(dbContext model.DBReader, stagingArea *model.StagingArea) ([]*externalapi.DomainHash, error) {
	stagingShard := css.stagingShard(stagingArea)
	if stagingShard.terminals != nil {
		return externalapi.CloneHashes(stagingShard.terminals), nil
	}

	if css.terminalsCache != nil {
		return externalapi.CloneHashes(css.terminalsCache), nil
	}

	terminalsBytes, err := dbContext.Get(css.terminalsKey)
	if err != nil {
		return nil, err
	}
	terminals, err := serialization.DeserializeHashes(terminalsBytes)
	if err != nil {
		return nil, err
	}
	css.terminalsCache = terminals
	return externalapi.CloneHashes(terminals), nil
}

func (shard *consensusStateStagingShard) commitTerminals(dbTx model.DBTransaction) error {
	if shard.terminals == nil {
		return nil
	}
	err := dbTx.Put(shard.store.terminalsKey, serialization.SerializeHashes(shard.terminals))
	if err != nil {
		return err
	}
	shard.store.terminalsCache = shard.terminals
	return nil
}
