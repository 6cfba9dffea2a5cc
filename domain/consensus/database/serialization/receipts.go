package serialization

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	blockReceiptsBlockHashField       protowire.Number = 1
	blockReceiptsEpochHashField       protowire.Number = 2
	blockReceiptsBlockNumberField     protowire.Number = 3
	blockReceiptsReceiptField         protowire.Number = 4
	blockReceiptsSecondaryRewardField protowire.Number = 5
	blockReceiptsErrorField           protowire.Number = 6

	receiptTransactionIDField      protowire.Number = 1
	receiptStatusField             protowire.Number = 2
	receiptGasUsedField            protowire.Number = 3
	receiptAccumulatedGasUsedField protowire.Number = 4
	receiptGasFeeField             protowire.Number = 5
	receiptLogField                protowire.Number = 6
	receiptLogsBloomField          protowire.Number = 7
	receiptPhantomField            protowire.Number = 8

	logSpaceField   protowire.Number = 1
	logAddressField protowire.Number = 2
	logTopicField   protowire.Number = 3
	logDataField    protowire.Number = 4

	phantomFromField  protowire.Number = 1
	phantomToField    protowire.Number = 2
	phantomValueField protowire.Number = 3
	phantomDataField  protowire.Number = 4
	phantomNonceField protowire.Number = 5
	phantomHashField  protowire.Number = 6
)

// SerializeBlockReceipts encodes the receipts of a block as executed in an epoch
func SerializeBlockReceipts(blockReceipts *externalapi.BlockReceipts) []byte {
	w := &recordWriter{}
	w.hash(blockReceiptsBlockHashField, blockReceipts.BlockHash)
	w.hash(blockReceiptsEpochHashField, blockReceipts.EpochHash)
	w.varint(blockReceiptsBlockNumberField, blockReceipts.BlockNumber)
	for _, receipt := range blockReceipts.Receipts {
		w.bytes(blockReceiptsReceiptField, serializeReceipt(receipt))
	}
	w.uint256(blockReceiptsSecondaryRewardField, blockReceipts.SecondaryReward)
	for _, transactionError := range blockReceipts.TransactionErrors {
		w.bytes(blockReceiptsErrorField, []byte(transactionError))
	}
	return w.buf
}

// DeserializeBlockReceipts decodes receipts serialized by SerializeBlockReceipts
func DeserializeBlockReceipts(data []byte) (*externalapi.BlockReceipts, error) {
	blockReceipts := &externalapi.BlockReceipts{
		Receipts:          []*externalapi.Receipt{},
		TransactionErrors: []string{},
	}
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, varint uint64, bytes []byte) error {
		var err error
		switch field {
		case blockReceiptsBlockHashField:
			blockReceipts.BlockHash, err = toHash(bytes)
		case blockReceiptsEpochHashField:
			blockReceipts.EpochHash, err = toHash(bytes)
		case blockReceiptsBlockNumberField:
			blockReceipts.BlockNumber = varint
		case blockReceiptsReceiptField:
			var receipt *externalapi.Receipt
			receipt, err = deserializeReceipt(bytes)
			blockReceipts.Receipts = append(blockReceipts.Receipts, receipt)
		case blockReceiptsSecondaryRewardField:
			blockReceipts.SecondaryReward, err = toUint256(bytes)
		case blockReceiptsErrorField:
			blockReceipts.TransactionErrors = append(blockReceipts.TransactionErrors, string(bytes))
		}
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to deserialize block receipts")
	}
	if blockReceipts.SecondaryReward == nil {
		blockReceipts.SecondaryReward = new(uint256.Int)
	}
	return blockReceipts, nil
}

func serializeReceipt(receipt *externalapi.Receipt) []byte {
	w := &recordWriter{}
	w.hash(receiptTransactionIDField, (*externalapi.DomainHash)(receipt.TransactionID))
	w.varint(receiptStatusField, uint64(receipt.Status))
	w.varint(receiptGasUsedField, receipt.GasUsed)
	w.varint(receiptAccumulatedGasUsedField, receipt.AccumulatedGasUsed)
	w.uint256(receiptGasFeeField, receipt.GasFee)
	for _, log := range receipt.Logs {
		w.bytes(receiptLogField, serializeLog(log))
	}
	w.bytes(receiptLogsBloomField, receipt.LogsBloom.Bytes())
	for _, phantom := range receipt.PhantomTransactions {
		w.bytes(receiptPhantomField, serializePhantomTransaction(phantom))
	}
	return w.buf
}

func deserializeReceipt(data []byte) (*externalapi.Receipt, error) {
	receipt := &externalapi.Receipt{
		Logs:                []*externalapi.Log{},
		PhantomTransactions: []*externalapi.PhantomTransaction{},
	}
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, varint uint64, bytes []byte) error {
		var err error
		switch field {
		case receiptTransactionIDField:
			var hash *externalapi.DomainHash
			hash, err = toHash(bytes)
			receipt.TransactionID = (*externalapi.DomainTransactionID)(hash)
		case receiptStatusField:
			receipt.Status = externalapi.ReceiptStatus(varint)
		case receiptGasUsedField:
			receipt.GasUsed = varint
		case receiptAccumulatedGasUsedField:
			receipt.AccumulatedGasUsed = varint
		case receiptGasFeeField:
			receipt.GasFee, err = toUint256(bytes)
		case receiptLogField:
			var log *externalapi.Log
			log, err = deserializeLog(bytes)
			receipt.Logs = append(receipt.Logs, log)
		case receiptLogsBloomField:
			if len(bytes) != types.BloomByteLength {
				return errors.Errorf("invalid bloom length %d", len(bytes))
			}
			receipt.LogsBloom = types.BytesToBloom(bytes)
		case receiptPhantomField:
			var phantom *externalapi.PhantomTransaction
			phantom, err = deserializePhantomTransaction(bytes)
			receipt.PhantomTransactions = append(receipt.PhantomTransactions, phantom)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if receipt.GasFee == nil {
		receipt.GasFee = new(uint256.Int)
	}
	return receipt, nil
}

func serializeLog(log *externalapi.Log) []byte {
	w := &recordWriter{}
	w.varint(logSpaceField, uint64(log.Space))
	w.bytes(logAddressField, log.Address.Bytes())
	for _, topic := range log.Topics {
		w.bytes(logTopicField, topic.Bytes())
	}
	w.bytes(logDataField, log.Data)
	return w.buf
}

func deserializeLog(data []byte) (*externalapi.Log, error) {
	log := &externalapi.Log{Topics: []common.Hash{}, Data: []byte{}}
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, varint uint64, bytes []byte) error {
		var err error
		switch field {
		case logSpaceField:
			log.Space = externalapi.TransactionSpace(varint)
		case logAddressField:
			log.Address, err = toAddress(bytes)
		case logTopicField:
			if len(bytes) != common.HashLength {
				return errors.Errorf("invalid topic length %d", len(bytes))
			}
			log.Topics = append(log.Topics, common.BytesToHash(bytes))
		case logDataField:
			log.Data = cloneBytes(bytes)
		}
		return err
	})
	return log, err
}

func serializePhantomTransaction(phantom *externalapi.PhantomTransaction) []byte {
	w := &recordWriter{}
	w.bytes(phantomFromField, phantom.From.Bytes())
	w.bytes(phantomToField, phantom.To.Bytes())
	w.uint256(phantomValueField, phantom.Value)
	w.bytes(phantomDataField, phantom.Data)
	w.varint(phantomNonceField, phantom.Nonce)
	w.bytes(phantomHashField, phantom.Hash.Bytes())
	return w.buf
}

func deserializePhantomTransaction(data []byte) (*externalapi.PhantomTransaction, error) {
	phantom := &externalapi.PhantomTransaction{Data: []byte{}}
	err := readRecord(data, func(field protowire.Number, _ protowire.Type, varint uint64, bytes []byte) error {
		var err error
		switch field {
		case phantomFromField:
			phantom.From, err = toAddress(bytes)
		case phantomToField:
			phantom.To, err = toAddress(bytes)
		case phantomValueField:
			phantom.Value, err = toUint256(bytes)
		case phantomDataField:
			phantom.Data = cloneBytes(bytes)
		case phantomNonceField:
			phantom.Nonce = varint
		case phantomHashField:
			if len(bytes) != common.HashLength {
				return errors.Errorf("invalid phantom hash length %d", len(bytes))
			}
			phantom.Hash = common.BytesToHash(bytes)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if phantom.Value == nil {
		phantom.Value = new(uint256.Int)
	}
	return phantom, nil
}
