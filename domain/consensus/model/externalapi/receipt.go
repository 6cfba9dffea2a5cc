package externalapi

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// ReceiptStatus is the outcome of a single transaction.
type ReceiptStatus byte

const (
	// ReceiptStatusSuccess indicates the transaction executed and its effects
	// were applied.
	ReceiptStatusSuccess ReceiptStatus = iota

	// ReceiptStatusFailed indicates the transaction executed but failed
	// (out of gas, reverted). Its fee is still charged.
	ReceiptStatusFailed

	// ReceiptStatusSkipped indicates the transaction was not executed at
	// all, either because it was already executed earlier in the history
	// or because a transient condition (nonce gap, balance) prevented it.
	ReceiptStatusSkipped
)

var receiptStatusStrings = map[ReceiptStatus]string{
	ReceiptStatusSuccess: "Success",
	ReceiptStatusFailed:  "Failed",
	ReceiptStatusSkipped: "Skipped",
}

func (rs ReceiptStatus) String() string {
	return receiptStatusStrings[rs]
}

// Log is an event emitted by a transaction.
type Log struct {
	Space   TransactionSpace
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Clone returns a clone of Log
func (l *Log) Clone() *Log {
	topicsClone := make([]common.Hash, len(l.Topics))
	copy(topicsClone, l.Topics)
	dataClone := make([]byte, len(l.Data))
	copy(dataClone, l.Data)
	return &Log{Space: l.Space, Address: l.Address, Topics: topicsClone, Data: dataClone}
}

// Receipt is the result of executing a single transaction inside a block.
type Receipt struct {
	TransactionID      *DomainTransactionID
	Status             ReceiptStatus
	GasUsed            uint64
	AccumulatedGasUsed uint64
	GasFee             *uint256.Int
	Logs               []*Log
	LogsBloom          types.Bloom

	// PhantomTransactions are the cross-space side effects of the
	// transaction, in emission order.
	PhantomTransactions []*PhantomTransaction
}

// Clone returns a clone of Receipt
func (r *Receipt) Clone() *Receipt {
	logsClone := make([]*Log, len(r.Logs))
	for i, l := range r.Logs {
		logsClone[i] = l.Clone()
	}
	phantomClone := make([]*PhantomTransaction, len(r.PhantomTransactions))
	for i, ptx := range r.PhantomTransactions {
		phantomClone[i] = ptx.Clone()
	}
	idClone := *r.TransactionID
	return &Receipt{
		TransactionID:       &idClone,
		Status:              r.Status,
		GasUsed:             r.GasUsed,
		AccumulatedGasUsed:  r.AccumulatedGasUsed,
		GasFee:              cloneUint256(r.GasFee),
		Logs:                logsClone,
		LogsBloom:           r.LogsBloom,
		PhantomTransactions: phantomClone,
	}
}

// BlockReceipts holds the receipts of one block as executed inside one epoch.
type BlockReceipts struct {
	BlockHash *DomainHash
	EpochHash *DomainHash

	// BlockNumber is the zero-based position of the block in the linearized
	// history (the genesis block is 0).
	BlockNumber uint64

	Receipts        []*Receipt
	SecondaryReward *uint256.Int

	// TransactionErrors holds one entry per receipt, empty for successful
	// transactions.
	TransactionErrors []string
}

// Clone returns a clone of BlockReceipts
func (br *BlockReceipts) Clone() *BlockReceipts {
	receiptsClone := make([]*Receipt, len(br.Receipts))
	for i, receipt := range br.Receipts {
		receiptsClone[i] = receipt.Clone()
	}
	errorsClone := make([]string, len(br.TransactionErrors))
	copy(errorsClone, br.TransactionErrors)
	return &BlockReceipts{
		BlockHash:         br.BlockHash,
		EpochHash:         br.EpochHash,
		BlockNumber:       br.BlockNumber,
		Receipts:          receiptsClone,
		SecondaryReward:   cloneUint256(br.SecondaryReward),
		TransactionErrors: errorsClone,
	}
}

// TransactionLocation points at the receipt of a real or phantom transaction.
type TransactionLocation struct {
	BlockHash   *DomainHash
	EpochHash   *DomainHash
	EpochNumber uint64
	Index       uint32

	// IsPhantom marks a location that was registered for a phantom
	// transaction. Index then points at the originating native
	// transaction and PhantomIndex at the position inside its receipt.
	IsPhantom    bool
	PhantomIndex uint32
}

// Equal returns whether location equals to other
func (location *TransactionLocation) Equal(other *TransactionLocation) bool {
	if location == nil || other == nil {
		return location == other
	}
	return location.BlockHash.Equal(other.BlockHash) &&
		location.EpochHash.Equal(other.EpochHash) &&
		location.EpochNumber == other.EpochNumber &&
		location.Index == other.Index &&
		location.IsPhantom == other.IsPhantom &&
		location.PhantomIndex == other.PhantomIndex
}
