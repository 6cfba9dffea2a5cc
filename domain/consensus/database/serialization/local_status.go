package serialization

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	localStatusStatusField         protowire.Number = 1
	localStatusSequenceNumberField protowire.Number = 2
)

// SerializeBlockLocalStatus encodes a block's local status for the database
func SerializeBlockLocalStatus(status *externalapi.BlockLocalStatus) []byte {
	w := &recordWriter{}
	w.varint(localStatusStatusField, uint64(status.Status))
	w.varint(localStatusSequenceNumberField, status.SequenceNumber)
	return w.buf
}

// DeserializeBlockLocalStatus decodes a status serialized by SerializeBlockLocalStatus
func DeserializeBlockLocalStatus(data []byte) (*externalapi.BlockLocalStatus, error) {
	status := &externalapi.BlockLocalStatus{}
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, varint uint64, _ []byte) error {
		switch field {
		case localStatusStatusField:
			status.Status = externalapi.GraphStatus(varint)
		case localStatusSequenceNumberField:
			status.SequenceNumber = varint
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to deserialize block local status")
	}
	return status, nil
}
