package executionresultstore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

type executionResultStagingShard struct {
	store         *executionResultStore
	resultsToAdd  map[externalapi.DomainHash]*externalapi.EpochExecutionResult
	contextsToAdd map[externalapi.DomainHash]*externalapi.EpochExecutionContext
}

func (ers *executionResultStore) stagingShard(stagingArea *model.StagingArea) *executionResultStagingShard {
	return stagingArea.GetOrCreateShard(ers.shardID, func() model.StagingShard {
		return &executionResultStagingShard{
			store:         ers,
			resultsToAdd:  make(map[externalapi.DomainHash]*externalapi.EpochExecutionResult),
			contextsToAdd: make(map[externalapi.DomainHash]*externalapi.EpochExecutionContext),
		}
	}).(*executionResultStagingShard)
}

func (shard *executionResultStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, result := range shard.resultsToAdd {
		err := dbTx.Put(shard.store.resultKey(&hash), serialization.SerializeEpochExecutionResult(result))
		if err != nil {
			return err
		}
		shard.store.resultsCache.Add(&hash, result)
	}

	for hash, context := range shard.contextsToAdd {
		err := dbTx.Put(shard.store.contextKey(&hash), serialization.SerializeEpochExecutionContext(context))
		if err != nil {
			return err
		}
		shard.store.contextsCache.Add(&hash, context)
	}

	return nil
}

func (shard *executionResultStagingShard) isStaged() bool {
	return len(shard.resultsToAdd) != 0 || len(shard.contextsToAdd) != 0
}
