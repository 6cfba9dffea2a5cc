package externalapi

import (
	"math/big"
	"time"

	"github.com/pkg/errors"
)

// ErrConsensusClosed is returned for execution runs scheduled after the
// consensus was closed
var ErrConsensusClosed = errors.New("consensus is closed")

// Consensus maintains the current core state of the node
type Consensus interface {
	SubmitBlock(block *DomainBlock) (*BlockInsertionResult, error)

	GetBlock(blockHash *DomainHash) (*DomainBlock, bool, error)
	GetBlockHeader(blockHash *DomainHash) (*DomainBlockHeader, error)
	GetBlockStatus(blockHash *DomainHash) (GraphStatus, bool)

	PivotChain() []*DomainHash
	PivotTip() *DomainHash
	EpochBlocks(epochNumber uint64) ([]*DomainHash, error)
	EpochNumberOf(blockHash *DomainHash) (uint64, bool)
	Terminals() []*DomainHash

	TargetDifficulty(pivotBlockHash *DomainHash) (*big.Int, error)
	NextBlockDifficulty(parentHash *DomainHash) (*big.Int, error)

	GetEpochExecutionResult(epochHash *DomainHash) (*EpochExecutionResult, error)
	GetBlockReceipts(blockHash *DomainHash) (*BlockReceipts, error)
	GetTransactionLocation(transactionID *DomainTransactionID) (*TransactionLocation, bool, error)
	ReadState(key []byte) ([]byte, bool, error)

	RecomputeEpoch(epochHash *DomainHash) (*RecomputeResult, error)
	RemoveExpired(olderThan time.Duration) ([]*DomainHash, error)

	// Close stops the execution worker. Runs that were scheduled and did not
	// start yet complete with ErrConsensusClosed.
	Close()
}
