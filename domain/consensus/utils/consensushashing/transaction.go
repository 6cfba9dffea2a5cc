package consensushashing

import (
	"math/big"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/hashes"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// TransactionID generates the Hash for the transaction and caches it
// in the transaction's ID field.
func TransactionID(tx *externalapi.DomainTransaction) *externalapi.DomainTransactionID {
	if tx.ID != nil {
		return tx.ID
	}

	writer := &elementWriter{HashWriter: hashes.NewTransactionIDWriter()}
	writer.writeUint8(uint8(tx.Space))
	writer.writeUint64(tx.Nonce)
	writer.InfallibleWrite(tx.From.Bytes())
	if tx.To == nil {
		writer.writeUint8(0)
	} else {
		writer.writeUint8(1)
		writer.InfallibleWrite(tx.To.Bytes())
	}
	writeUint256(writer, tx.Value)
	writer.writeUint64(tx.GasLimit)
	writeUint256(writer, tx.GasPrice)
	writer.writeVarBytes(tx.Data)

	id := externalapi.DomainTransactionID(*writer.Finalize())
	tx.ID = &id
	return tx.ID
}

// TransactionIDs converts the provided slice of DomainTransactions
// to a corresponding slice of TransactionIDs
func TransactionIDs(txs []*externalapi.DomainTransaction) []*externalapi.DomainTransactionID {
	txIDs := make([]*externalapi.DomainTransactionID, len(txs))
	for i, tx := range txs {
		txIDs[i] = TransactionID(tx)
	}
	return txIDs
}

func writeUint256(w *elementWriter, value *uint256.Int) {
	if value == nil {
		value = new(uint256.Int)
	}
	bytes := value.Bytes32()
	w.InfallibleWrite(bytes[:])
}

type phantomTransactionRLP struct {
	Origin common.Hash
	From   common.Address
	To     common.Address
	Value  *big.Int
	Data   []byte
	Nonce  uint64
	Index  uint64
}

// PhantomTransactionHash returns the Keccak256 hash the EVM space knows a
// phantom transaction by. The hash binds the phantom transaction to the
// native transaction it originates from and to its position among the
// phantom transactions of that native transaction.
func PhantomTransactionHash(originID *externalapi.DomainTransactionID, index int,
	phantom *externalapi.PhantomTransaction) common.Hash {

	value := phantom.Value
	if value == nil {
		value = new(uint256.Int)
	}
	encoded, err := rlp.EncodeToBytes(&phantomTransactionRLP{
		Origin: common.Hash(*(*externalapi.DomainHash)(originID).ByteArray()),
		From:   phantom.From,
		To:     phantom.To,
		Value:  value.ToBig(),
		Data:   phantom.Data,
		Nonce:  phantom.Nonce,
		Index:  uint64(index),
	})
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. phantom transactions are always RLP-encodable"))
	}
	return crypto.Keccak256Hash(encoded)
}
