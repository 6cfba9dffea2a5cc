package serialization

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const countValueField protowire.Number = 1

// SerializeCount encodes a persisted counter
func SerializeCount(count uint64) []byte {
	w := &recordWriter{}
	w.varint(countValueField, count)
	return w.buf
}

// DeserializeCount decodes a counter serialized by SerializeCount
func DeserializeCount(data []byte) (uint64, error) {
	var count uint64
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, varint uint64, _ []byte) error {
		if field == countValueField {
			count = varint
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to deserialize count")
	}
	return count, nil
}
