package executionresultstore

import (
	"testing"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/database"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/datastructures/testutils"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/davecgh/go-spew/spew"
)

func TestExecutionResultStore(t *testing.T) {
	dbManager, prefixBucket, teardown := testutils.NewTestDB(t)
	defer teardown()

	store := New(prefixBucket, 10, false)

	epochHash := testutils.Hash(5)
	result := &externalapi.EpochExecutionResult{
		EpochHash:        epochHash,
		EpochNumber:      3,
		StartBlockNumber: 4,
		ExecutedBlocks:   []*externalapi.DomainHash{testutils.Hash(4), epochHash},
		SkippedBlocks:    []*externalapi.DomainHash{},
		StateRoot:        testutils.Hash(20),
		ReceiptsRoot:     testutils.Hash(21),
		LogsBloomHash:    testutils.Hash(22),
		IsLocalMain:      true,
		FinalState:       externalapi.EpochStateCanonical,
		BlockReceipts:    []*externalapi.BlockReceipts{},
	}
	context := &externalapi.EpochExecutionContext{
		EpochNumber:     3,
		ParentEpochHash: testutils.Hash(3),
		MainBlockHash:   epochHash,
	}

	stagingArea := model.NewStagingArea()
	has, err := store.HasResult(dbManager, stagingArea, epochHash)
	if err != nil {
		t.Fatalf("HasResult: %v", err)
	}
	if has {
		t.Fatalf("unexpected result before staging")
	}
	store.StageResult(stagingArea, epochHash, result)
	store.StageContext(stagingArea, epochHash, context)
	testutils.Commit(t, dbManager, stagingArea)
	store.ClearCache()

	stagingArea = model.NewStagingArea()
	got, err := store.Result(dbManager, stagingArea, epochHash)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if got.NextBlockNumber() != 6 || !externalapi.HashesEqual(got.ExecutedBlocks, result.ExecutedBlocks) ||
		!got.StateRoot.Equal(result.StateRoot) || !got.IsLocalMain || got.FinalState != externalapi.EpochStateCanonical {
		t.Fatalf("unexpected result: %s", spew.Sdump(got))
	}
	if got.BlockReceipts != nil {
		t.Fatalf("block receipts must not be persisted with the result")
	}

	gotContext, err := store.Context(dbManager, stagingArea, epochHash)
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if *gotContext.ParentEpochHash != *context.ParentEpochHash || gotContext.EpochNumber != 3 {
		t.Fatalf("unexpected context: %s", spew.Sdump(gotContext))
	}

	// Reverting the epoch keeps the result but clears IsLocalMain
	got.IsLocalMain = false
	stagingArea = model.NewStagingArea()
	store.StageResult(stagingArea, epochHash, got)
	testutils.Commit(t, dbManager, stagingArea)

	stagingArea = model.NewStagingArea()
	reverted, err := store.Result(dbManager, stagingArea, epochHash)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if reverted.IsLocalMain {
		t.Fatalf("expected IsLocalMain to be cleared")
	}

	_, err = store.Context(dbManager, stagingArea, testutils.Hash(99))
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected not-found for an unknown epoch, got %v", err)
	}
}
