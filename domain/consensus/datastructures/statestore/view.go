package statestore

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/multiset"
	"github.com/pkg/errors"
)

// stateView reads the committed state through an overlay of the values
// the state had right after some older epoch was committed
type stateView struct {
	store     *stateStore
	dbContext model.DBReader
	overlay   map[string]*stateValue
	multiset  model.Multiset
	empty     bool
}

// View returns the state as it was right after epochHash was committed.
// epochHash must be the committed tip or one of its committed ancestors.
func (ss *stateStore) View(dbContext model.DBReader, epochHash *externalapi.DomainHash) (model.StateView, error) {
	if epochHash == nil {
		return &stateView{store: ss, dbContext: dbContext, multiset: multiset.New(), empty: true}, nil
	}

	tip, ms, err := ss.committedMeta(dbContext)
	if err != nil {
		return nil, err
	}

	overlay := make(map[string]*stateValue)
	for !tip.Equal(epochHash) {
		if tip == nil {
			return nil, errors.Errorf("epoch %s is not in the committed state history", epochHash)
		}
		record, err := ss.undoRecord(dbContext, nil, tip)
		if err != nil {
			return nil, err
		}
		// Older records are visited later and overwrite newer ones
		for _, entry := range record.Entries {
			if entry.Existed {
				overlay[string(entry.Key)] = &stateValue{value: entry.Value}
			} else {
				overlay[string(entry.Key)] = &stateValue{}
			}
		}
		ms, err = multiset.FromBytes(record.PreviousMultiset)
		if err != nil {
			return nil, err
		}
		tip = record.PreviousTip
	}

	return &stateView{store: ss, dbContext: dbContext, overlay: overlay, multiset: ms}, nil
}

func (sv *stateView) ReadState(key []byte) ([]byte, bool, error) {
	if sv.empty {
		return nil, false, nil
	}
	if value, ok := sv.overlay[string(key)]; ok {
		return cloneValue(value), value.exists(), nil
	}
	return sv.store.readCommitted(sv.dbContext, key)
}

// RootAfter returns the root the state would have after applying writes,
// in order, on top of the view
func (sv *stateView) RootAfter(writes []*model.StateWrite) (*externalapi.DomainHash, error) {
	final := make(map[string]*stateValue, len(writes))
	for _, write := range writes {
		if write.Value == nil {
			final[string(write.Key)] = &stateValue{}
			continue
		}
		final[string(write.Key)] = &stateValue{value: write.Value}
	}

	ms := sv.multiset.Clone()
	for _, key := range sortedKeys(final) {
		value := final[key]
		previousValue, existed, err := sv.ReadState([]byte(key))
		if err != nil {
			return nil, err
		}
		if existed {
			ms.Remove(stateElement([]byte(key), previousValue))
		}
		if value.exists() {
			ms.Add(stateElement([]byte(key), value.value))
		}
	}
	return ms.Hash(), nil
}
