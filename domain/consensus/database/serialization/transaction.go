package serialization

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	transactionSpaceField    protowire.Number = 1
	transactionNonceField    protowire.Number = 2
	transactionFromField     protowire.Number = 3
	transactionToField       protowire.Number = 4
	transactionValueField    protowire.Number = 5
	transactionGasLimitField protowire.Number = 6
	transactionGasPriceField protowire.Number = 7
	transactionDataField     protowire.Number = 8

	blockBodyTransactionField protowire.Number = 1
)

func serializeTransaction(tx *externalapi.DomainTransaction) []byte {
	w := &recordWriter{}
	w.varint(transactionSpaceField, uint64(tx.Space))
	w.varint(transactionNonceField, tx.Nonce)
	w.bytes(transactionFromField, tx.From.Bytes())
	if tx.To != nil {
		w.bytes(transactionToField, tx.To.Bytes())
	}
	w.uint256(transactionValueField, tx.Value)
	w.varint(transactionGasLimitField, tx.GasLimit)
	w.uint256(transactionGasPriceField, tx.GasPrice)
	w.bytes(transactionDataField, tx.Data)
	return w.buf
}

func deserializeTransaction(data []byte) (*externalapi.DomainTransaction, error) {
	tx := &externalapi.DomainTransaction{Data: []byte{}}
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, varint uint64, bytes []byte) error {
		var err error
		switch field {
		case transactionSpaceField:
			tx.Space = externalapi.TransactionSpace(varint)
		case transactionNonceField:
			tx.Nonce = varint
		case transactionFromField:
			tx.From, err = toAddress(bytes)
		case transactionToField:
			to, err := toAddress(bytes)
			if err != nil {
				return err
			}
			tx.To = &to
		case transactionValueField:
			tx.Value, err = toUint256(bytes)
		case transactionGasLimitField:
			tx.GasLimit = varint
		case transactionGasPriceField:
			tx.GasPrice, err = toUint256(bytes)
		case transactionDataField:
			tx.Data = cloneBytes(bytes)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if tx.Value == nil {
		tx.Value = new(uint256.Int)
	}
	if tx.GasPrice == nil {
		tx.GasPrice = new(uint256.Int)
	}
	return tx, nil
}

// SerializeBlockBody encodes the transactions of a block for the database
func SerializeBlockBody(transactions []*externalapi.DomainTransaction) []byte {
	w := &recordWriter{}
	for _, tx := range transactions {
		w.bytes(blockBodyTransactionField, serializeTransaction(tx))
	}
	return w.buf
}

// DeserializeBlockBody decodes block transactions serialized by SerializeBlockBody
func DeserializeBlockBody(data []byte) ([]*externalapi.DomainTransaction, error) {
	transactions := []*externalapi.DomainTransaction{}
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, _ uint64, bytes []byte) error {
		if field != blockBodyTransactionField {
			return nil
		}
		tx, err := deserializeTransaction(bytes)
		if err != nil {
			return err
		}
		transactions = append(transactions, tx)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to deserialize block body")
	}
	return transactions, nil
}
