package serialization

import (
	"math/big"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// recordWriter appends protobuf-wire encoded fields
type recordWriter struct {
	buf []byte
}

func (w *recordWriter) varint(field protowire.Number, value uint64) {
	w.buf = protowire.AppendTag(w.buf, field, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, value)
}

func (w *recordWriter) bool(field protowire.Number, value bool) {
	w.varint(field, protowire.EncodeBool(value))
}

func (w *recordWriter) bytes(field protowire.Number, value []byte) {
	w.buf = protowire.AppendTag(w.buf, field, protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, value)
}

func (w *recordWriter) hash(field protowire.Number, hash *externalapi.DomainHash) {
	if hash == nil {
		return
	}
	w.bytes(field, hash.ByteSlice())
}

func (w *recordWriter) hashes(field protowire.Number, hashes []*externalapi.DomainHash) {
	for _, hash := range hashes {
		w.bytes(field, hash.ByteSlice())
	}
}

func (w *recordWriter) uint256(field protowire.Number, value *uint256.Int) {
	if value == nil {
		return
	}
	w.bytes(field, value.Bytes())
}

func (w *recordWriter) bigInt(field protowire.Number, value *big.Int) {
	if value == nil {
		return
	}
	w.bytes(field, value.Bytes())
}

// fieldHandler receives every field of a record. Exactly one of varint
// and bytes is meaningful, according to typ.
type fieldHandler func(field protowire.Number, typ protowire.Type, varint uint64, bytes []byte) error

// readRecord walks the fields of an encoded record
func readRecord(data []byte, handle fieldHandler) error {
	for len(data) > 0 {
		field, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "malformed record tag")
		}
		data = data[n:]

		switch typ {
		case protowire.VarintType:
			value, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return errors.Wrapf(protowire.ParseError(n), "malformed varint in field %d", field)
			}
			data = data[n:]
			if err := handle(field, typ, value, nil); err != nil {
				return err
			}
		case protowire.BytesType:
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return errors.Wrapf(protowire.ParseError(n), "malformed bytes in field %d", field)
			}
			data = data[n:]
			if err := handle(field, typ, 0, value); err != nil {
				return err
			}
		default:
			n := protowire.ConsumeFieldValue(field, typ, data)
			if n < 0 {
				return errors.Wrapf(protowire.ParseError(n), "malformed field %d", field)
			}
			data = data[n:]
		}
	}
	return nil
}

func toHash(bytes []byte) (*externalapi.DomainHash, error) {
	return externalapi.NewDomainHashFromByteSlice(bytes)
}

func toAddress(bytes []byte) (common.Address, error) {
	if len(bytes) != common.AddressLength {
		return common.Address{}, errors.Errorf("invalid address length %d", len(bytes))
	}
	return common.BytesToAddress(bytes), nil
}

func toUint256(bytes []byte) (*uint256.Int, error) {
	if len(bytes) > 32 {
		return nil, errors.Errorf("uint256 overflow: %d bytes", len(bytes))
	}
	return new(uint256.Int).SetBytes(bytes), nil
}

func cloneBytes(bytes []byte) []byte {
	clone := make([]byte, len(bytes))
	copy(clone, bytes)
	return clone
}
