package accounts

import (
	"fmt"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/pkg/errors"
)

// StateDiff is a mutable overlay of state writes on top of a base reader.
// It records the writes in order so they can be replayed into a state
// store, and keeps a journal so that the writes of a single transaction can
// be rolled back.
type StateDiff struct {
	base    model.StateReader
	values  map[string][]byte
	deleted map[string]struct{}
	order   []string
	journal []journalEntry
}

type journalEntry struct {
	key        string
	hadEntry   bool
	wasDeleted bool
	value      []byte
	isNewKey   bool
}

// NewStateDiff creates an empty diff over base
func NewStateDiff(base model.StateReader) *StateDiff {
	return &StateDiff{
		base:    base,
		values:  make(map[string][]byte),
		deleted: make(map[string]struct{}),
	}
}

// ReadState returns the value of key as modified by the diff
func (sd *StateDiff) ReadState(key []byte) ([]byte, bool, error) {
	if value, ok := sd.values[string(key)]; ok {
		return cloneBytes(value), true, nil
	}
	if _, ok := sd.deleted[string(key)]; ok {
		return nil, false, nil
	}
	return sd.base.ReadState(key)
}

func (sd *StateDiff) WriteState(key, value []byte) {
	sd.record(string(key))
	delete(sd.deleted, string(key))
	sd.values[string(key)] = cloneBytes(value)
}

func (sd *StateDiff) DeleteState(key []byte) {
	sd.record(string(key))
	delete(sd.values, string(key))
	sd.deleted[string(key)] = struct{}{}
}

func (sd *StateDiff) record(key string) {
	value, hadEntry := sd.values[key]
	_, wasDeleted := sd.deleted[key]
	isNewKey := !hadEntry && !wasDeleted
	if isNewKey {
		sd.order = append(sd.order, key)
	}
	sd.journal = append(sd.journal, journalEntry{
		key:        key,
		hadEntry:   hadEntry,
		wasDeleted: wasDeleted,
		value:      value,
		isNewKey:   isNewKey,
	})
}

// Snapshot returns an identifier of the current diff contents
func (sd *StateDiff) Snapshot() int {
	return len(sd.journal)
}

// RevertToSnapshot undoes every write made after snapshot was taken
func (sd *StateDiff) RevertToSnapshot(snapshot int) error {
	if snapshot < 0 || snapshot > len(sd.journal) {
		return errors.Errorf("invalid snapshot %d, journal length is %d", snapshot, len(sd.journal))
	}
	for i := len(sd.journal) - 1; i >= snapshot; i-- {
		entry := sd.journal[i]
		delete(sd.values, entry.key)
		delete(sd.deleted, entry.key)
		switch {
		case entry.hadEntry:
			sd.values[entry.key] = entry.value
		case entry.wasDeleted:
			sd.deleted[entry.key] = struct{}{}
		}
		if entry.isNewKey {
			sd.order = sd.order[:len(sd.order)-1]
		}
	}
	sd.journal = sd.journal[:snapshot]
	return nil
}

// Writes returns the net writes of the diff, ordered by the first time each
// key was touched. A deleted key has a nil Value.
func (sd *StateDiff) Writes() []*model.StateWrite {
	writes := make([]*model.StateWrite, 0, len(sd.order))
	for _, key := range sd.order {
		write := &model.StateWrite{Key: []byte(key)}
		if value, ok := sd.values[key]; ok {
			write.Value = cloneBytes(value)
		}
		writes = append(writes, write)
	}
	return writes
}

// Len returns the number of distinct keys touched by the diff
func (sd *StateDiff) Len() int {
	return len(sd.order)
}

func (sd *StateDiff) String() string {
	return fmt.Sprintf("%d keys written, %d deleted, journal length %d", len(sd.values), len(sd.deleted), len(sd.journal))
}

func cloneBytes(bytes []byte) []byte {
	clone := make([]byte, len(bytes))
	copy(clone, bytes)
	return clone
}
