package receiptstore

import (
	"testing"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/datastructures/testutils"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/davecgh/go-spew/spew"
	"github.com/holiman/uint256"
)

func blockReceipts(block, epoch byte, blockNumber uint64) *externalapi.BlockReceipts {
	return &externalapi.BlockReceipts{
		BlockHash:   testutils.Hash(block),
		EpochHash:   testutils.Hash(epoch),
		BlockNumber: blockNumber,
		Receipts: []*externalapi.Receipt{{
			TransactionID:       testutils.TxID(block + 100),
			Status:              externalapi.ReceiptStatusFailed,
			GasUsed:             21000,
			AccumulatedGasUsed:  21000,
			GasFee:              uint256.NewInt(21000),
			Logs:                []*externalapi.Log{},
			PhantomTransactions: []*externalapi.PhantomTransaction{},
		}},
		SecondaryReward:   uint256.NewInt(7),
		TransactionErrors: []string{"out of gas"},
	}
}

func TestReceiptStoreKeepsOneEntryPerEpoch(t *testing.T) {
	dbManager, prefixBucket, teardown := testutils.NewTestDB(t)
	defer teardown()

	store, err := New(prefixBucket, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// The same block executed in two competing epochs
	first := blockReceipts(1, 10, 5)
	second := blockReceipts(1, 11, 8)

	stagingArea := model.NewStagingArea()
	store.Stage(stagingArea, first)
	store.Stage(stagingArea, second)
	testutils.Commit(t, dbManager, stagingArea)
	store.ClearCache()

	stagingArea = model.NewStagingArea()
	for _, expected := range []*externalapi.BlockReceipts{first, second} {
		got, err := store.Get(dbManager, stagingArea, expected.BlockHash, expected.EpochHash)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.BlockNumber != expected.BlockNumber || got.Receipts[0].Status != externalapi.ReceiptStatusFailed ||
			got.TransactionErrors[0] != "out of gas" || !got.SecondaryReward.Eq(expected.SecondaryReward) {
			t.Fatalf("unexpected receipts: %s", spew.Sdump(got))
		}
	}

	store.Delete(stagingArea, first.BlockHash, first.EpochHash)
	testutils.Commit(t, dbManager, stagingArea)

	stagingArea = model.NewStagingArea()
	_, err = store.Get(dbManager, stagingArea, first.BlockHash, first.EpochHash)
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
	if _, err := store.Get(dbManager, stagingArea, second.BlockHash, second.EpochHash); err != nil {
		t.Fatalf("deleting one epoch's receipts removed the other's: %v", err)
	}
}
