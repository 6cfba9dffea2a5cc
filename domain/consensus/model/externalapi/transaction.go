package externalapi

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// TransactionSpace is the execution domain a transaction declares.
type TransactionSpace byte

const (
	// SpaceNative is the node's native account space.
	SpaceNative TransactionSpace = iota

	// SpaceEthereum is the EVM-compatible account space.
	SpaceEthereum
)

func (space TransactionSpace) String() string {
	switch space {
	case SpaceNative:
		return "native"
	case SpaceEthereum:
		return "ethereum"
	default:
		return fmt.Sprintf("unknown(%d)", byte(space))
	}
}

// DomainTransactionID represents the ID of a transaction
type DomainTransactionID DomainHash

// String stringifies a transaction ID.
func (id DomainTransactionID) String() string {
	return DomainHash(id).String()
}

// Equal returns whether id equals to other
func (id *DomainTransactionID) Equal(other *DomainTransactionID) bool {
	return (*DomainHash)(id).Equal((*DomainHash)(other))
}

// DomainTransaction represents a transaction included in a block. A nil To
// denotes contract creation.
type DomainTransaction struct {
	Space    TransactionSpace
	Nonce    uint64
	From     common.Address
	To       *common.Address
	Value    *uint256.Int
	GasLimit uint64
	GasPrice *uint256.Int
	Data     []byte

	// ID is a field that is used to cache the transaction ID.
	// Always use consensushashing.TransactionID instead of accessing this field directly
	ID *DomainTransactionID
}

// Clone returns a clone of DomainTransaction
func (tx *DomainTransaction) Clone() *DomainTransaction {
	var to *common.Address
	if tx.To != nil {
		toClone := *tx.To
		to = &toClone
	}
	dataClone := make([]byte, len(tx.Data))
	copy(dataClone, tx.Data)

	var idClone *DomainTransactionID
	if tx.ID != nil {
		id := *tx.ID
		idClone = &id
	}

	return &DomainTransaction{
		Space:    tx.Space,
		Nonce:    tx.Nonce,
		From:     tx.From,
		To:       to,
		Value:    cloneUint256(tx.Value),
		GasLimit: tx.GasLimit,
		GasPrice: cloneUint256(tx.GasPrice),
		Data:     dataClone,
		ID:       idClone,
	}
}

// Equal returns whether tx equals to other. The cached ID is ignored.
func (tx *DomainTransaction) Equal(other *DomainTransaction) bool {
	if tx == nil || other == nil {
		return tx == other
	}
	if tx.Space != other.Space || tx.Nonce != other.Nonce || tx.From != other.From ||
		tx.GasLimit != other.GasLimit || string(tx.Data) != string(other.Data) {
		return false
	}
	if (tx.To == nil) != (other.To == nil) || (tx.To != nil && *tx.To != *other.To) {
		return false
	}
	return uint256Equal(tx.Value, other.Value) && uint256Equal(tx.GasPrice, other.GasPrice)
}

// PhantomTransaction is a synthetic transaction materialized in the EVM space
// as a side effect of a cross-space call made by a native transaction.
type PhantomTransaction struct {
	From  common.Address
	To    common.Address
	Value *uint256.Int
	Data  []byte
	Nonce uint64

	// Hash is the Keccak256 hash the EVM space knows the transaction by.
	Hash common.Hash
}

// Clone returns a clone of PhantomTransaction
func (ptx *PhantomTransaction) Clone() *PhantomTransaction {
	dataClone := make([]byte, len(ptx.Data))
	copy(dataClone, ptx.Data)
	return &PhantomTransaction{
		From:  ptx.From,
		To:    ptx.To,
		Value: cloneUint256(ptx.Value),
		Data:  dataClone,
		Nonce: ptx.Nonce,
		Hash:  ptx.Hash,
	}
}

func cloneUint256(value *uint256.Int) *uint256.Int {
	if value == nil {
		return nil
	}
	return new(uint256.Int).Set(value)
}

func uint256Equal(a, b *uint256.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Eq(b)
}
