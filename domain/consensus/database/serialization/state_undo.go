package serialization

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	undoPreviousTipField      protowire.Number = 1
	undoPreviousMultisetField protowire.Number = 2
	undoEntryField            protowire.Number = 3

	undoEntryKeyField     protowire.Number = 1
	undoEntryExistedField protowire.Number = 2
	undoEntryValueField   protowire.Number = 3
)

// DbStateUndoRecord holds what is needed to undo the commit of one epoch:
// the previous value of every key it touched, the previous state tip and
// the previous state multiset
type DbStateUndoRecord struct {
	PreviousTip      *externalapi.DomainHash
	PreviousMultiset []byte
	Entries          []*DbStateUndoEntry
}

// DbStateUndoEntry is the previous value of one key. A key that did not
// exist before the commit has Existed set to false.
type DbStateUndoEntry struct {
	Key     []byte
	Existed bool
	Value   []byte
}

// SerializeStateUndoRecord encodes a state undo record
func SerializeStateUndoRecord(record *DbStateUndoRecord) []byte {
	w := &recordWriter{}
	w.hash(undoPreviousTipField, record.PreviousTip)
	w.bytes(undoPreviousMultisetField, record.PreviousMultiset)
	for _, entry := range record.Entries {
		entryWriter := &recordWriter{}
		entryWriter.bytes(undoEntryKeyField, entry.Key)
		entryWriter.bool(undoEntryExistedField, entry.Existed)
		if entry.Existed {
			entryWriter.bytes(undoEntryValueField, entry.Value)
		}
		w.bytes(undoEntryField, entryWriter.buf)
	}
	return w.buf
}

// DeserializeStateUndoRecord decodes a record serialized by SerializeStateUndoRecord
func DeserializeStateUndoRecord(data []byte) (*DbStateUndoRecord, error) {
	record := &DbStateUndoRecord{}
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, _ uint64, bytes []byte) error {
		var err error
		switch field {
		case undoPreviousTipField:
			record.PreviousTip, err = toHash(bytes)
		case undoPreviousMultisetField:
			record.PreviousMultiset = cloneBytes(bytes)
		case undoEntryField:
			var entry *DbStateUndoEntry
			entry, err = deserializeStateUndoEntry(bytes)
			record.Entries = append(record.Entries, entry)
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to deserialize state undo record")
	}
	return record, nil
}

func deserializeStateUndoEntry(data []byte) (*DbStateUndoEntry, error) {
	entry := &DbStateUndoEntry{}
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, varint uint64, bytes []byte) error {
		switch field {
		case undoEntryKeyField:
			entry.Key = cloneBytes(bytes)
		case undoEntryExistedField:
			entry.Existed = protowire.DecodeBool(varint)
		case undoEntryValueField:
			entry.Value = cloneBytes(bytes)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if entry.Existed && entry.Value == nil {
		entry.Value = []byte{}
	}
	return entry, nil
}
