package consensus_test

import (
	"math/big"
	"testing"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/ruleerrors"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/accounts"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/consensushashing"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/merkle"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/testutils"
	"github.com/Hoosat-Oy/treegraphd/domain/dagconfig"
	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var recipient = common.HexToAddress("0x3000000000000000000000000000000000000001")

func simnetParams() *dagconfig.Params {
	params := dagconfig.SimnetParams
	params.ExecutionDeferDepth = 0
	return &params
}

func faucetTransfer(nonce uint64, value uint64) *externalapi.DomainTransaction {
	to := recipient
	return &externalapi.DomainTransaction{
		Space:    externalapi.SpaceNative,
		Nonce:    nonce,
		From:     dagconfig.SimnetFaucetAddress,
		To:       &to,
		Value:    uint256.NewInt(value),
		GasLimit: 21_000,
		GasPrice: uint256.NewInt(1),
	}
}

func recipientBalance(t *testing.T, builder *testutils.DAGBuilder) uint64 {
	account, err := accounts.ReadAccount(builder.Consensus, externalapi.SpaceNative, recipient)
	if err != nil {
		t.Fatalf("ReadAccount: %+v", err)
	}
	return account.Balance.Uint64()
}

func assertHashes(t *testing.T, name string, actual, expected []*externalapi.DomainHash) {
	t.Helper()
	if !externalapi.HashesEqual(actual, expected) {
		t.Fatalf("%s: expected %s, got %s", name, spew.Sdump(expected), spew.Sdump(actual))
	}
}

func TestGenesisIsExecutedOnStartup(t *testing.T) {
	builder, teardown := testutils.NewDAGBuilder(t, simnetParams())
	defer teardown()

	genesisHash := builder.GenesisHash()
	assertHashes(t, "pivot chain", builder.Consensus.PivotChain(), []*externalapi.DomainHash{genesisHash})
	assertHashes(t, "terminals", builder.Consensus.Terminals(), []*externalapi.DomainHash{genesisHash})

	result, err := builder.Consensus.GetEpochExecutionResult(genesisHash)
	if err != nil {
		t.Fatalf("GetEpochExecutionResult: %+v", err)
	}
	if result.EpochNumber != 0 || result.StartBlockNumber != 0 || !result.IsLocalMain ||
		result.FinalState != externalapi.EpochStateCanonical {
		t.Fatalf("unexpected genesis result: %s", spew.Sdump(result))
	}
	assertHashes(t, "genesis executed blocks", result.ExecutedBlocks, []*externalapi.DomainHash{genesisHash})

	faucet, err := accounts.ReadAccount(builder.Consensus, externalapi.SpaceNative, dagconfig.SimnetFaucetAddress)
	if err != nil {
		t.Fatalf("ReadAccount: %+v", err)
	}
	if faucet.Balance.Cmp(new(uint256.Int).Lsh(uint256.NewInt(1), 100)) != 0 {
		t.Fatalf("unexpected faucet balance %s", faucet.Balance)
	}
}

// TestRefereedBlockJoinsEpoch builds genesis <- A <- C and genesis <- B with
// C referencing B. The pivot is [genesis, A, C] and B executes in the epoch
// of C, before C.
func TestRefereedBlockJoinsEpoch(t *testing.T) {
	builder, teardown := testutils.NewDAGBuilder(t, simnetParams())
	defer teardown()
	c := builder.Consensus
	genesisHash := builder.GenesisHash()

	a, insertionResult := builder.AddBlock(genesisHash, nil)
	assertHashes(t, "newly ready", insertionResult.NewlyReady, []*externalapi.DomainHash{a})
	assertHashes(t, "pivot added", insertionResult.PivotChanges.Added, []*externalapi.DomainHash{a})
	executed, err := insertionResult.Execution.Wait()
	if err != nil {
		t.Fatalf("Wait: %+v", err)
	}
	if len(executed) != 1 || !executed[0].EpochHash.Equal(a) {
		t.Fatalf("expected epoch %s to execute, got %s", a, spew.Sdump(executed))
	}

	transaction := faucetTransfer(0, 1_000)
	b, _ := builder.AddBlock(genesisHash, nil, transaction)
	cHash, _ := builder.AddBlock(a, []*externalapi.DomainHash{b})

	assertHashes(t, "pivot chain", c.PivotChain(), []*externalapi.DomainHash{genesisHash, a, cHash})
	if !c.PivotTip().Equal(cHash) {
		t.Fatalf("expected pivot tip %s, got %s", cHash, c.PivotTip())
	}
	epoch, err := c.EpochBlocks(2)
	if err != nil {
		t.Fatalf("EpochBlocks: %+v", err)
	}
	assertHashes(t, "epoch of C", epoch, []*externalapi.DomainHash{b, cHash})
	epochNumber, ok := c.EpochNumberOf(b)
	if !ok || epochNumber != 2 {
		t.Fatalf("expected B in epoch 2, got %d (%t)", epochNumber, ok)
	}
	assertHashes(t, "terminals", c.Terminals(), []*externalapi.DomainHash{cHash})

	result, err := c.GetEpochExecutionResult(cHash)
	if err != nil {
		t.Fatalf("GetEpochExecutionResult: %+v", err)
	}
	if result.EpochNumber != 2 || result.StartBlockNumber != 2 || !result.IsLocalMain {
		t.Fatalf("unexpected result: %s", spew.Sdump(result))
	}
	assertHashes(t, "executed blocks", result.ExecutedBlocks, []*externalapi.DomainHash{b, cHash})

	receipts, err := c.GetBlockReceipts(b)
	if err != nil {
		t.Fatalf("GetBlockReceipts: %+v", err)
	}
	if receipts.BlockNumber != 2 || len(receipts.Receipts) != 1 ||
		receipts.Receipts[0].Status != externalapi.ReceiptStatusSuccess {
		t.Fatalf("unexpected receipts: %s", spew.Sdump(receipts))
	}
	if balance := recipientBalance(t, builder); balance != 1_000 {
		t.Fatalf("expected a balance of 1000, got %d", balance)
	}

	location, found, err := c.GetTransactionLocation(consensushashing.TransactionID(transaction))
	if err != nil {
		t.Fatalf("GetTransactionLocation: %+v", err)
	}
	if !found || !location.BlockHash.Equal(b) || !location.EpochHash.Equal(cHash) || location.EpochNumber != 2 {
		t.Fatalf("unexpected location: %s", spew.Sdump(location))
	}

	recomputed, err := c.RecomputeEpoch(cHash)
	if err != nil {
		t.Fatalf("RecomputeEpoch: %+v", err)
	}
	if !recomputed.Matches() {
		t.Fatalf("recomputing diverged: %s", spew.Sdump(recomputed))
	}
	if len(recomputed.DebugTrace) != 1 {
		t.Fatalf("expected a trace line per transaction, got %d", len(recomputed.DebugTrace))
	}
}

func TestReorgRevertsExecutedEpochs(t *testing.T) {
	builder, teardown := testutils.NewDAGBuilder(t, simnetParams())
	defer teardown()
	c := builder.Consensus
	genesisHash := builder.GenesisHash()

	transaction := faucetTransfer(0, 500)
	a1, _ := builder.AddBlock(genesisHash, nil, transaction)
	a2, _ := builder.AddBlock(a1, nil)
	if balance := recipientBalance(t, builder); balance != 500 {
		t.Fatalf("expected a balance of 500, got %d", balance)
	}

	b1, _ := builder.AddBlock(genesisHash, nil)
	b2, _ := builder.AddBlock(b1, nil)
	b3, _ := builder.AddBlock(b2, nil, transaction.Clone())

	assertHashes(t, "pivot chain", c.PivotChain(), []*externalapi.DomainHash{genesisHash, b1, b2, b3})

	for _, dropped := range []*externalapi.DomainHash{a1, a2} {
		result, err := c.GetEpochExecutionResult(dropped)
		if err != nil {
			t.Fatalf("GetEpochExecutionResult: %+v", err)
		}
		if result.IsLocalMain {
			t.Fatalf("epoch %s left the pivot chain but is still local-main", dropped)
		}
	}

	location, found, err := c.GetTransactionLocation(consensushashing.TransactionID(transaction))
	if err != nil {
		t.Fatalf("GetTransactionLocation: %+v", err)
	}
	if !found || !location.EpochHash.Equal(b3) {
		t.Fatalf("expected the transaction in epoch %s, got %s", b3, spew.Sdump(location))
	}
	if balance := recipientBalance(t, builder); balance != 500 {
		t.Fatalf("expected the transfer to apply once, got a balance of %d", balance)
	}

	result, err := c.GetEpochExecutionResult(b3)
	if err != nil {
		t.Fatalf("GetEpochExecutionResult: %+v", err)
	}
	if result.StartBlockNumber != 3 {
		t.Fatalf("expected epoch 3 to start at block 3, got %d", result.StartBlockNumber)
	}

	_, err = c.RecomputeEpoch(a1)
	if err == nil {
		t.Fatalf("expected recomputing the reverted epoch %s to fail", a1)
	}
	recomputed, err := c.RecomputeEpoch(b3)
	if err != nil {
		t.Fatalf("RecomputeEpoch: %+v", err)
	}
	if !recomputed.Matches() {
		t.Fatalf("recomputing %s diverged: %s", b3, spew.Sdump(recomputed))
	}
}

func TestRestartReloadsGraphAndExecution(t *testing.T) {
	builder, teardown := testutils.NewDAGBuilder(t, simnetParams())
	defer teardown()
	genesisHash := builder.GenesisHash()

	a, _ := builder.AddBlock(genesisHash, nil, faucetTransfer(0, 700))
	b, _ := builder.AddBlock(genesisHash, nil)
	cHash, _ := builder.AddBlock(a, []*externalapi.DomainHash{b})

	pivotBefore := builder.Consensus.PivotChain()
	resultBefore, err := builder.Consensus.GetEpochExecutionResult(cHash)
	if err != nil {
		t.Fatalf("GetEpochExecutionResult: %+v", err)
	}

	builder.Restart()
	c := builder.Consensus

	assertHashes(t, "pivot chain", c.PivotChain(), pivotBefore)
	assertHashes(t, "terminals", c.Terminals(), []*externalapi.DomainHash{cHash})
	status, ok := c.GetBlockStatus(b)
	if !ok || status != externalapi.StatusGraphReady {
		t.Fatalf("expected B to be graph-ready, got %s (%t)", status, ok)
	}
	resultAfter, err := c.GetEpochExecutionResult(cHash)
	if err != nil {
		t.Fatalf("GetEpochExecutionResult: %+v", err)
	}
	if !resultAfter.StateRoot.Equal(resultBefore.StateRoot) || !resultAfter.IsLocalMain {
		t.Fatalf("the result changed across a restart: before %s after %s",
			spew.Sdump(resultBefore), spew.Sdump(resultAfter))
	}
	if balance := recipientBalance(t, builder); balance != 700 {
		t.Fatalf("expected a balance of 700, got %d", balance)
	}

	d, insertionResult := builder.AddBlock(cHash, nil)
	executed, err := insertionResult.Execution.Wait()
	if err != nil {
		t.Fatalf("Wait: %+v", err)
	}
	if len(executed) != 1 || executed[0].StartBlockNumber != 4 {
		t.Fatalf("unexpected execution after a restart: %s", spew.Sdump(executed))
	}
	assertHashes(t, "pivot chain", c.PivotChain(), append(pivotBefore, d))
}

func TestMissingDependenciesAndExpiry(t *testing.T) {
	builder, teardown := testutils.NewDAGBuilder(t, simnetParams())
	defer teardown()
	c := builder.Consensus

	unknownParent := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0xaa})
	orphan := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			ParentHash:         unknownParent,
			RefereeHashes:      []*externalapi.DomainHash{},
			Height:             5,
			TimeInMilliseconds: dagconfig.SimnetParams.GenesisBlock.Header.TimeInMilliseconds + 5_000,
			Difficulty:         big.NewInt(1),
			TransactionsRoot:   merkle.CalculateTransactionsRoot(nil),
			GasLimit:           dagconfig.SimnetParams.BlockGasLimit,
		},
		Transactions: []*externalapi.DomainTransaction{},
	}
	orphanHash := consensushashing.BlockHash(orphan)

	result, err := c.SubmitBlock(orphan)
	if !errors.Is(err, ruleerrors.ErrMissingParents) {
		t.Fatalf("expected ErrMissingParents, got %+v", err)
	}
	missing, ok := ruleerrors.MissingDependencies(err)
	if !ok {
		t.Fatalf("the error doesn't carry the missing hashes: %+v", err)
	}
	assertHashes(t, "missing", missing, []*externalapi.DomainHash{unknownParent})
	if result == nil || len(result.NewlyReady) != 0 {
		t.Fatalf("unexpected insertion result: %s", spew.Sdump(result))
	}

	status, ok := c.GetBlockStatus(orphanHash)
	if !ok || status != externalapi.StatusReceived {
		t.Fatalf("expected the orphan to be Received, got %s (%t)", status, ok)
	}
	status, ok = c.GetBlockStatus(unknownParent)
	if !ok || status != externalapi.StatusRequested {
		t.Fatalf("expected the parent to be Requested, got %s (%t)", status, ok)
	}

	_, err = c.SubmitBlock(orphan)
	if !errors.Is(err, ruleerrors.ErrDuplicateBlock) {
		t.Fatalf("expected ErrDuplicateBlock, got %+v", err)
	}

	removed, err := c.RemoveExpired(0)
	if err != nil {
		t.Fatalf("RemoveExpired: %+v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("expected the orphan and its placeholder to be removed, got %s", spew.Sdump(removed))
	}
	if _, ok := c.GetBlockStatus(orphanHash); ok {
		t.Fatalf("the orphan is still in the graph")
	}
	_, found, err := c.GetBlock(orphanHash)
	if err != nil {
		t.Fatalf("GetBlock: %+v", err)
	}
	if found {
		t.Fatalf("the orphan is still stored")
	}
	assertHashes(t, "pivot chain", c.PivotChain(), []*externalapi.DomainHash{builder.GenesisHash()})
}

func TestInvalidBlockIsMarkedInvalid(t *testing.T) {
	builder, teardown := testutils.NewDAGBuilder(t, simnetParams())
	defer teardown()
	c := builder.Consensus

	block := builder.BuildBlock(builder.GenesisHash(), nil)
	block.Header.Height = 3
	blockHash := consensushashing.BlockHash(block)

	_, err := c.SubmitBlock(block)
	if !errors.Is(err, ruleerrors.ErrWrongParentHeight) {
		t.Fatalf("expected ErrWrongParentHeight, got %+v", err)
	}
	status, ok := c.GetBlockStatus(blockHash)
	if !ok || status != externalapi.StatusPartialInvalid {
		t.Fatalf("expected the block to be PartialInvalid, got %s (%t)", status, ok)
	}

	child := builder.BuildBlock(builder.GenesisHash(), nil)
	child.Header.ParentHash = blockHash
	child.Header.Height = 4
	_, err = c.SubmitBlock(child)
	if !errors.Is(err, ruleerrors.ErrInvalidAncestor) {
		t.Fatalf("expected ErrInvalidAncestor, got %+v", err)
	}
	assertHashes(t, "pivot chain", c.PivotChain(), []*externalapi.DomainHash{builder.GenesisHash()})
}

func TestIsolationInvalidRefereeInvalidatesWaitingBlock(t *testing.T) {
	builder, teardown := testutils.NewDAGBuilder(t, simnetParams())
	defer teardown()
	c := builder.Consensus
	genesisHash := builder.GenesisHash()

	x := builder.BuildBlock(genesisHash, nil)
	x.Header.TransactionsRoot = externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0xcc})
	xHash := consensushashing.BlockHash(x)
	y := builder.BuildBlock(genesisHash, []*externalapi.DomainHash{xHash})
	yHash := consensushashing.BlockHash(y)

	_, err := c.SubmitBlock(y)
	if !errors.Is(err, ruleerrors.ErrMissingParents) {
		t.Fatalf("expected ErrMissingParents, got %+v", err)
	}
	status, ok := c.GetBlockStatus(yHash)
	if !ok || status != externalapi.StatusReceived {
		t.Fatalf("expected Y to wait as Received, got %s (%t)", status, ok)
	}

	result, err := c.SubmitBlock(x)
	if !errors.Is(err, ruleerrors.ErrBadMerkleRoot) {
		t.Fatalf("expected ErrBadMerkleRoot, got %+v", err)
	}
	if result == nil || len(result.NewlyReady) != 0 || result.Execution != nil {
		t.Fatalf("unexpected insertion result: %s", spew.Sdump(result))
	}
	for _, blockHash := range []*externalapi.DomainHash{xHash, yHash} {
		status, ok := c.GetBlockStatus(blockHash)
		if !ok || status != externalapi.StatusPartialInvalid {
			t.Fatalf("expected %s to be PartialInvalid, got %s (%t)", blockHash, status, ok)
		}
	}
	assertHashes(t, "pivot chain", c.PivotChain(), []*externalapi.DomainHash{genesisHash})
	assertHashes(t, "terminals", c.Terminals(), []*externalapi.DomainHash{genesisHash})
}
