package statestore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

// stateValue is a staged key value. A nil value marks a deleted key.
type stateValue struct {
	value []byte
}

func (sv *stateValue) exists() bool {
	return sv.value != nil
}

type stateStagingShard struct {
	store *stateStore

	// pending holds the writes of the epoch currently being executed.
	// They become part of applied when the epoch is sealed by Commit.
	pending map[string]*stateValue

	// applied holds the writes of sealed epochs and of reverted epochs.
	// The staged tip and multiset already account for them.
	applied map[string]*stateValue

	tipStaged bool
	tip       *externalapi.DomainHash
	multiset  model.Multiset

	undoToAdd    map[externalapi.DomainHash]*serialization.DbStateUndoRecord
	undoToDelete map[externalapi.DomainHash]struct{}
}

func (ss *stateStore) stagingShard(stagingArea *model.StagingArea) *stateStagingShard {
	return stagingArea.GetOrCreateShard(ss.shardID, func() model.StagingShard {
		return &stateStagingShard{
			store:        ss,
			pending:      make(map[string]*stateValue),
			applied:      make(map[string]*stateValue),
			undoToAdd:    make(map[externalapi.DomainHash]*serialization.DbStateUndoRecord),
			undoToDelete: make(map[externalapi.DomainHash]struct{}),
		}
	}).(*stateStagingShard)
}

func (shard *stateStagingShard) Commit(dbTx model.DBTransaction) error {
	if len(shard.pending) != 0 {
		return errUnsealedWrites
	}

	for key, value := range shard.applied {
		dbKey := shard.store.stateBucket.Key([]byte(key))
		var err error
		if value.exists() {
			err = dbTx.Put(dbKey, value.value)
		} else {
			err = dbTx.Delete(dbKey)
		}
		if err != nil {
			return err
		}
		shard.store.cache.Add(key, value)
	}

	for epochHash := range shard.undoToDelete {
		err := dbTx.Delete(shard.store.undoKey(&epochHash))
		if err != nil {
			return err
		}
	}
	for epochHash, record := range shard.undoToAdd {
		err := dbTx.Put(shard.store.undoKey(&epochHash), serialization.SerializeStateUndoRecord(record))
		if err != nil {
			return err
		}
	}

	if !shard.tipStaged {
		return nil
	}
	return shard.store.commitMeta(dbTx, shard.tip, shard.multiset)
}

func (shard *stateStagingShard) isStaged() bool {
	return len(shard.pending) != 0 || len(shard.applied) != 0 || shard.tipStaged
}
