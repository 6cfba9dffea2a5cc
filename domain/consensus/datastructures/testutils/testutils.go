package testutils

import (
	"math/big"
	"os"
	"testing"

	consensusdatabase "github.com/Hoosat-Oy/treegraphd/domain/consensus/database"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/db/database"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/db/database/ldb"
	"github.com/ethereum/go-ethereum/common"
)

// NewTestDB creates a temporary LevelDB-backed consensus DBManager and a prefix bucket for stores.
func NewTestDB(t *testing.T) (dbManager model.DBManager, prefixBucket model.DBBucket, teardown func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "treegraphd-datastructures-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}

	db, err := ldb.NewLevelDB(tmpDir, database.DefaultTuning())
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		t.Fatalf("NewLevelDB: %v", err)
	}

	dbManager = consensusdatabase.New(db)
	prefixBucket = consensusdatabase.MakeBucket([]byte("datastructures-test"))

	teardown = func() {
		_ = db.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return dbManager, prefixBucket, teardown
}

// Commit commits the given staging area inside a DB transaction.
func Commit(t *testing.T, dbManager model.DBManager, stagingArea *model.StagingArea) {
	t.Helper()

	dbTx, err := dbManager.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer dbTx.RollbackUnlessClosed()

	if err := stagingArea.Commit(dbTx); err != nil {
		t.Fatalf("stagingArea.Commit: %v", err)
	}
	if err := dbTx.Commit(); err != nil {
		t.Fatalf("dbTx.Commit: %v", err)
	}
}

// Hash returns a deterministic DomainHash for test i.
// It's intentionally not cryptographically random.
func Hash(i byte) *externalapi.DomainHash {
	var arr [externalapi.DomainHashSize]byte
	for j := range len(arr) {
		arr[j] = i
	}
	// Make it slightly less uniform to catch byte-order issues.
	arr[1] = i + 1
	arr[2] = i + 2
	return externalapi.NewDomainHashFromByteArray(&arr)
}

// TxID returns a deterministic DomainTransactionID for test i.
func TxID(i byte) *externalapi.DomainTransactionID {
	return (*externalapi.DomainTransactionID)(Hash(i))
}

// Header returns a non-genesis header whose parent is Hash(parent).
func Header(parent byte, height uint64, timeInMilliseconds int64) *externalapi.DomainBlockHeader {
	return &externalapi.DomainBlockHeader{
		Version:            1,
		ParentHash:         Hash(parent),
		RefereeHashes:      []*externalapi.DomainHash{},
		Height:             height,
		TimeInMilliseconds: timeInMilliseconds,
		Author:             common.HexToAddress("0x1000000000000000000000000000000000000001"),
		Difficulty:         big.NewInt(1),
		TransactionsRoot:   externalapi.NewZeroHash(),
		GasLimit:           30_000_000,
	}
}
