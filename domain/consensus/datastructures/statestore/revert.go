package statestore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database/serialization"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/multiset"
	"github.com/pkg/errors"
)

// RevertTo undoes committed epochs, newest first, until epochHash is the
// state tip. It returns the reverted epochs in the order they were undone.
func (ss *stateStore) RevertTo(dbContext model.DBReader, stagingArea *model.StagingArea, epochHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	stagingShard := ss.stagingShard(stagingArea)
	if len(stagingShard.pending) != 0 {
		return nil, errors.Wrap(errUnsealedWrites, "cannot revert the state")
	}

	tip, _, err := ss.stagedMeta(dbContext, stagingShard)
	if err != nil {
		return nil, err
	}

	var reverted []*externalapi.DomainHash
	for !tip.Equal(epochHash) {
		if tip == nil {
			return nil, errors.Errorf("epoch %s is not in the committed state history", epochHash)
		}
		record, err := ss.undoRecord(dbContext, stagingShard, tip)
		if err != nil {
			return nil, err
		}

		for _, entry := range record.Entries {
			if entry.Existed {
				stagingShard.applied[string(entry.Key)] = &stateValue{value: entry.Value}
			} else {
				stagingShard.applied[string(entry.Key)] = &stateValue{}
			}
		}
		ms, err := multiset.FromBytes(record.PreviousMultiset)
		if err != nil {
			return nil, err
		}

		delete(stagingShard.undoToAdd, *tip)
		stagingShard.undoToDelete[*tip] = struct{}{}
		stagingShard.tipStaged = true
		stagingShard.tip = record.PreviousTip
		stagingShard.multiset = ms

		reverted = append(reverted, tip)
		tip = record.PreviousTip
	}

	return reverted, nil
}

func (ss *stateStore) undoRecord(dbContext model.DBReader, stagingShard *stateStagingShard,
	epochHash *externalapi.DomainHash) (*serialization.DbStateUndoRecord, error) {

	if stagingShard != nil {
		if record, ok := stagingShard.undoToAdd[*epochHash]; ok {
			return record, nil
		}
		if _, ok := stagingShard.undoToDelete[*epochHash]; ok {
			return nil, errors.Wrapf(database.ErrNotFound, "undo record of %s is staged for deletion", epochHash)
		}
	}

	recordBytes, err := dbContext.Get(ss.undoKey(epochHash))
	if err != nil {
		return nil, errors.Wrapf(err, "missing undo record of epoch %s", epochHash)
	}
	return serialization.DeserializeStateUndoRecord(recordBytes)
}
