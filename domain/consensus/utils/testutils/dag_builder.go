package testutils

import (
	"os"
	"testing"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/consensushashing"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/merkle"
	"github.com/Hoosat-Oy/treegraphd/domain/dagconfig"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/db/database"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/db/database/ldb"
	"github.com/ethereum/go-ethereum/common"
)

// TestAuthor is the author of every block a DAGBuilder builds
var TestAuthor = common.HexToAddress("0x2000000000000000000000000000000000000001")

// DAGBuilder builds blocks on top of a test consensus and submits them. It
// fails the test on any unexpected error.
type DAGBuilder struct {
	t         *testing.T
	params    *dagconfig.Params
	dataDir   string
	db        database.Database
	Consensus externalapi.Consensus
	Recycler  *RecordingRecycler

	nonce uint64
}

// RecordingRecycler keeps every recycled transaction
type RecordingRecycler struct {
	Recycled []*externalapi.DomainTransaction
}

// Recycle implements model.TransactionRecycler
func (rr *RecordingRecycler) Recycle(transactions []*externalapi.DomainTransaction) {
	rr.Recycled = append(rr.Recycled, transactions...)
}

var _ model.TransactionRecycler = (*RecordingRecycler)(nil)

// NewDAGBuilder opens a test consensus with params over a fresh temporary
// LevelDB database. The returned teardown closes it and removes the data.
func NewDAGBuilder(t *testing.T, params *dagconfig.Params) (builder *DAGBuilder, teardown func()) {
	t.Helper()

	dataDir, err := os.MkdirTemp("", "treegraphd-consensus-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	builder = &DAGBuilder{t: t, params: params, dataDir: dataDir}
	builder.open()

	teardown = func() {
		builder.Consensus.Close()
		_ = builder.db.Close()
		_ = os.RemoveAll(dataDir)
	}
	return builder, teardown
}

func (db *DAGBuilder) open() {
	db.t.Helper()

	var err error
	db.db, err = ldb.NewLevelDB(db.dataDir, database.DefaultTuning())
	if err != nil {
		db.t.Fatalf("NewLevelDB: %v", err)
	}
	db.Recycler = &RecordingRecycler{}
	factory := consensus.NewFactory()
	factory.SetCacheSizeFactor(0.01)
	db.Consensus, err = factory.NewConsensus(db.params, db.db, db.Recycler)
	if err != nil {
		db.t.Fatalf("NewConsensus: %+v", err)
	}
}

// Restart closes the database and builds a new consensus over the same
// data, as a node restart would
func (db *DAGBuilder) Restart() {
	db.t.Helper()

	db.Consensus.Close()
	err := db.db.Close()
	if err != nil {
		db.t.Fatalf("Close: %v", err)
	}
	db.open()
}

// GenesisHash returns the genesis hash of the builder's network
func (db *DAGBuilder) GenesisHash() *externalapi.DomainHash {
	return db.params.GenesisHash
}

// BuildBlock builds a block on top of parentHash that references referees
// and carries transactions. The block is not submitted.
func (db *DAGBuilder) BuildBlock(parentHash *externalapi.DomainHash, referees []*externalapi.DomainHash,
	transactions ...*externalapi.DomainTransaction) *externalapi.DomainBlock {

	db.t.Helper()

	parent, err := db.Consensus.GetBlockHeader(parentHash)
	if err != nil {
		db.t.Fatalf("GetBlockHeader %s: %+v", parentHash, err)
	}
	difficulty, err := db.Consensus.NextBlockDifficulty(parentHash)
	if err != nil {
		db.t.Fatalf("NextBlockDifficulty %s: %+v", parentHash, err)
	}
	if referees == nil {
		referees = []*externalapi.DomainHash{}
	}
	if transactions == nil {
		transactions = []*externalapi.DomainTransaction{}
	}

	db.nonce++
	return &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			ParentHash:         parentHash,
			RefereeHashes:      referees,
			Height:             parent.Height + 1,
			TimeInMilliseconds: parent.TimeInMilliseconds + db.params.TargetBlockIntervalMillis,
			Author:             TestAuthor,
			Difficulty:         difficulty,
			TransactionsRoot:   merkle.CalculateTransactionsRoot(transactions),
			GasLimit:           db.params.BlockGasLimit,
			Nonce:              db.nonce,
		},
		Transactions: transactions,
	}
}

// AddBlock builds a block, submits it and waits for the execution it
// scheduled, failing the test on any error
func (db *DAGBuilder) AddBlock(parentHash *externalapi.DomainHash, referees []*externalapi.DomainHash,
	transactions ...*externalapi.DomainTransaction) (*externalapi.DomainHash, *externalapi.BlockInsertionResult) {

	db.t.Helper()

	block := db.BuildBlock(parentHash, referees, transactions...)
	result, err := db.Consensus.SubmitBlock(block)
	if err != nil {
		db.t.Fatalf("SubmitBlock: %+v", err)
	}
	_, err = result.Execution.Wait()
	if err != nil {
		db.t.Fatalf("execution scheduled by %s: %+v", consensushashing.BlockHash(block), err)
	}
	return consensushashing.BlockHash(block), result
}
