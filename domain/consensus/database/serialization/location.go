package serialization

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	locationBlockHashField    protowire.Number = 1
	locationEpochHashField    protowire.Number = 2
	locationEpochNumberField  protowire.Number = 3
	locationIndexField        protowire.Number = 4
	locationIsPhantomField    protowire.Number = 5
	locationPhantomIndexField protowire.Number = 6
)

// SerializeTransactionLocation encodes a transaction index entry
func SerializeTransactionLocation(location *externalapi.TransactionLocation) []byte {
	w := &recordWriter{}
	w.hash(locationBlockHashField, location.BlockHash)
	w.hash(locationEpochHashField, location.EpochHash)
	w.varint(locationEpochNumberField, location.EpochNumber)
	w.varint(locationIndexField, uint64(location.Index))
	w.bool(locationIsPhantomField, location.IsPhantom)
	w.varint(locationPhantomIndexField, uint64(location.PhantomIndex))
	return w.buf
}

// DeserializeTransactionLocation decodes an entry serialized by SerializeTransactionLocation
func DeserializeTransactionLocation(data []byte) (*externalapi.TransactionLocation, error) {
	location := &externalapi.TransactionLocation{}
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, varint uint64, bytes []byte) error {
		var err error
		switch field {
		case locationBlockHashField:
			location.BlockHash, err = toHash(bytes)
		case locationEpochHashField:
			location.EpochHash, err = toHash(bytes)
		case locationEpochNumberField:
			location.EpochNumber = varint
		case locationIndexField:
			location.Index = uint32(varint)
		case locationIsPhantomField:
			location.IsPhantom = protowire.DecodeBool(varint)
		case locationPhantomIndexField:
			location.PhantomIndex = uint32(varint)
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to deserialize transaction location")
	}
	return location, nil
}
