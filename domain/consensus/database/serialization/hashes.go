package serialization

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const hashListHashField protowire.Number = 1

// SerializeHashes encodes an ordered list of hashes
func SerializeHashes(hashes []*externalapi.DomainHash) []byte {
	w := &recordWriter{}
	w.hashes(hashListHashField, hashes)
	return w.buf
}

// DeserializeHashes decodes a list serialized by SerializeHashes
func DeserializeHashes(data []byte) ([]*externalapi.DomainHash, error) {
	hashes := []*externalapi.DomainHash{}
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, _ uint64, bytes []byte) error {
		if field != hashListHashField {
			return nil
		}
		hash, err := toHash(bytes)
		if err != nil {
			return err
		}
		hashes = append(hashes, hash)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to deserialize hash list")
	}
	return hashes, nil
}
