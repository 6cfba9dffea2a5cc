package serialization

import (
	"math/big"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	headerVersionField          protowire.Number = 1
	headerParentField           protowire.Number = 2
	headerRefereeField          protowire.Number = 3
	headerHeightField           protowire.Number = 4
	headerTimestampField        protowire.Number = 5
	headerAuthorField           protowire.Number = 6
	headerDifficultyField       protowire.Number = 7
	headerTransactionsRootField protowire.Number = 8
	headerGasLimitField         protowire.Number = 9
	headerNonceField            protowire.Number = 10
)

// SerializeBlockHeader encodes a block header for the database
func SerializeBlockHeader(header *externalapi.DomainBlockHeader) []byte {
	w := &recordWriter{}
	w.varint(headerVersionField, uint64(header.Version))
	w.hash(headerParentField, header.ParentHash)
	w.hashes(headerRefereeField, header.RefereeHashes)
	w.varint(headerHeightField, header.Height)
	w.varint(headerTimestampField, uint64(header.TimeInMilliseconds))
	w.bytes(headerAuthorField, header.Author.Bytes())
	w.bigInt(headerDifficultyField, header.Difficulty)
	w.hash(headerTransactionsRootField, header.TransactionsRoot)
	w.varint(headerGasLimitField, header.GasLimit)
	w.varint(headerNonceField, header.Nonce)
	return w.buf
}

// DeserializeBlockHeader decodes a block header serialized by SerializeBlockHeader
func DeserializeBlockHeader(data []byte) (*externalapi.DomainBlockHeader, error) {
	header := &externalapi.DomainBlockHeader{RefereeHashes: []*externalapi.DomainHash{}}
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, varint uint64, bytes []byte) error {
		var err error
		switch field {
		case headerVersionField:
			header.Version = uint16(varint)
		case headerParentField:
			header.ParentHash, err = toHash(bytes)
		case headerRefereeField:
			referee, err := toHash(bytes)
			if err != nil {
				return err
			}
			header.RefereeHashes = append(header.RefereeHashes, referee)
		case headerHeightField:
			header.Height = varint
		case headerTimestampField:
			header.TimeInMilliseconds = int64(varint)
		case headerAuthorField:
			header.Author, err = toAddress(bytes)
		case headerDifficultyField:
			header.Difficulty = new(big.Int).SetBytes(bytes)
		case headerTransactionsRootField:
			header.TransactionsRoot, err = toHash(bytes)
		case headerGasLimitField:
			header.GasLimit = varint
		case headerNonceField:
			header.Nonce = varint
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to deserialize block header")
	}
	if header.Difficulty == nil {
		header.Difficulty = new(big.Int)
	}
	return header, nil
}
