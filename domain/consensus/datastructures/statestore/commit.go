package statestore

import (
	"sort"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// Commit seals the pending writes as the state produced by epochHash. It
// stages the new tip, the updated multiset and an undo record for the
// epoch, and returns the new state root. Nothing reaches the database until
// the staging area itself is committed.
func (ss *stateStore) Commit(dbContext model.DBReader, stagingArea *model.StagingArea, epochHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	stagingShard := ss.stagingShard(stagingArea)

	previousTip, ms, err := ss.stagedMeta(dbContext, stagingShard)
	if err != nil {
		return nil, err
	}
	if previousTip != nil && previousTip.Equal(epochHash) {
		return nil, errors.Errorf("epoch %s is already the state tip", epochHash)
	}

	undoRecord := &serialization.DbStateUndoRecord{
		PreviousTip:      previousTip,
		PreviousMultiset: ms.Serialize(),
		Entries:          make([]*serialization.DbStateUndoEntry, 0, len(stagingShard.pending)),
	}

	for _, key := range sortedKeys(stagingShard.pending) {
		value := stagingShard.pending[key]
		previousValue, existed, err := ss.readApplied(dbContext, stagingShard, []byte(key))
		if err != nil {
			return nil, err
		}
		if !existed && !value.exists() {
			continue
		}
		if existed {
			ms.Remove(stateElement([]byte(key), previousValue))
		}
		if value.exists() {
			ms.Add(stateElement([]byte(key), value.value))
		}
		undoRecord.Entries = append(undoRecord.Entries, &serialization.DbStateUndoEntry{
			Key:     []byte(key),
			Existed: existed,
			Value:   previousValue,
		})
		stagingShard.applied[key] = value
	}
	stagingShard.pending = make(map[string]*stateValue)

	delete(stagingShard.undoToDelete, *epochHash)
	stagingShard.undoToAdd[*epochHash] = undoRecord
	stagingShard.tipStaged = true
	stagingShard.tip = epochHash
	stagingShard.multiset = ms

	return ms.Hash(), nil
}

func sortedKeys(values map[string]*stateValue) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
