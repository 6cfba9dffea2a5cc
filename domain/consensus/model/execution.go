package model

import (
	"math/big"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ExecutionMode selects whether an epoch execution persists its results.
type ExecutionMode byte

const (
	// ModeCanonical persists state, receipts and indexes and recycles
	// transactions back to the pool.
	ModeCanonical ExecutionMode = iota

	// ModeDryRun runs the exact same logic without any side effect.
	ModeDryRun
)

func (mode ExecutionMode) String() string {
	if mode == ModeDryRun {
		return "dry-run"
	}
	return "canonical"
}

// EpochTask is the self-contained description of an epoch handed to the
// executor. It is built while the graph lock is held and never refers back
// to the graph.
type EpochTask struct {
	EpochHash        *externalapi.DomainHash
	EpochNumber      uint64
	ParentEpochHash  *externalapi.DomainHash
	StartBlockNumber uint64
	PivotHeader      *externalapi.DomainBlockHeader

	// Blocks are the executed blocks in epoch order, the pivot block last.
	Blocks []*EpochBlock

	// SkippedBlocks are epoch members left out by the execution bound.
	SkippedBlocks []*EpochBlock
}

// EpochBlock is a block of an epoch together with its hash.
type EpochBlock struct {
	Hash  *externalapi.DomainHash
	Block *externalapi.DomainBlock
}

// ExecutionEnvironment is the block context a single transaction runs in.
type ExecutionEnvironment struct {
	ChainID     uint32
	Space       externalapi.TransactionSpace
	EpochHash   *externalapi.DomainHash
	EpochNumber uint64
	BlockHash   *externalapi.DomainHash
	BlockNumber uint64
	Author      common.Address
	Timestamp   int64
	Difficulty  *big.Int
	GasLimit    uint64

	AccumulatedGasUsed uint64
	TransactionIndex   int
}

// StateAccessor gives a transaction read and write access to the state of
// the epoch being executed.
type StateAccessor interface {
	StateReader
	WriteState(key, value []byte)
	DeleteState(key []byte)
}

// TransactionOutcome is what a TransactionExecutor reports for a single
// transaction.
type TransactionOutcome struct {
	Status              externalapi.ReceiptStatus
	GasUsed             uint64
	GasFee              *uint256.Int
	Logs                []*externalapi.Log
	PhantomTransactions []*externalapi.PhantomTransaction

	// Error describes why the transaction failed or was skipped.
	Error string

	// Recycle asks for the transaction to be offered to the pool again.
	Recycle bool
}

// TransactionExecutor is the opaque transaction-execution function.
//
// A returned error denotes an engine failure (storage I/O) and aborts the
// epoch. Transaction-level failures are reported through the outcome.
type TransactionExecutor interface {
	Execute(env *ExecutionEnvironment, state StateAccessor, transaction *externalapi.DomainTransaction) (*TransactionOutcome, error)
}

// TransactionRecycler receives transactions that should be offered again.
type TransactionRecycler interface {
	Recycle(transactions []*externalapi.DomainTransaction)
}

// EpochRewardInfo summarizes an executed epoch for reward distribution.
type EpochRewardInfo struct {
	EpochHash      *externalapi.DomainHash
	EpochNumber    uint64
	MainBlockHash  *externalapi.DomainHash
	MedianGasPrice *uint256.Int
	Blocks         []*BlockRewardInfo
}

// BlockRewardInfo is the per-block input of reward distribution.
type BlockRewardInfo struct {
	Hash   *externalapi.DomainHash
	Author common.Address
	Fees   *uint256.Int
}

// RewardDistributor credits block rewards for an executed epoch and returns
// the secondary reward of every block in info.Blocks, in the same order.
type RewardDistributor interface {
	DistributeRewards(state StateAccessor, info *EpochRewardInfo) ([]*uint256.Int, error)
}

// PoWVerifier checks the proof of work of a header against its declared
// difficulty.
type PoWVerifier interface {
	CheckProofOfWork(header *externalapi.DomainBlockHeader) bool
}
