package mempool

import (
	"testing"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/transactionvalidator"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/consensushashing"
	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func transaction(nonce uint64) *externalapi.DomainTransaction {
	to := common.HexToAddress("0x1000000000000000000000000000000000000002")
	return &externalapi.DomainTransaction{
		Space:    externalapi.SpaceNative,
		Nonce:    nonce,
		From:     common.HexToAddress("0x1000000000000000000000000000000000000001"),
		To:       &to,
		Value:    uint256.NewInt(1),
		GasLimit: 21_000,
		GasPrice: uint256.NewInt(1),
	}
}

func newTestMempool(t *testing.T, capacity int) *Mempool {
	mp, err := New(&Config{MaximumTransactionCount: capacity}, transactionvalidator.New(1_000_000))
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	return mp
}

func TestRecycleDropsInvalidAndDuplicateTransactions(t *testing.T) {
	mp := newTestMempool(t, 10)

	invalid := transaction(1)
	invalid.GasPrice = nil
	tx0, tx2 := transaction(0), transaction(2)
	mp.Recycle([]*externalapi.DomainTransaction{tx0, invalid, tx2})
	mp.Recycle([]*externalapi.DomainTransaction{transaction(0)})

	if mp.TransactionCount() != 2 {
		t.Fatalf("expected 2 pooled transactions, got %d", mp.TransactionCount())
	}
	all := mp.AllTransactions()
	if len(all) != 2 || all[0] != tx0 || all[1] != tx2 {
		t.Fatalf("unexpected pooled transactions %s", spew.Sdump(all))
	}
	_, ok := mp.GetTransaction(consensushashing.TransactionID(invalid))
	if ok {
		t.Fatalf("an invalid transaction was pooled")
	}
}

func TestRecycleEvictsOldest(t *testing.T) {
	mp := newTestMempool(t, 2)

	transactions := []*externalapi.DomainTransaction{transaction(0), transaction(1), transaction(2)}
	mp.Recycle(transactions)

	if mp.TransactionCount() != 2 {
		t.Fatalf("expected the pool to stay at its capacity, got %d", mp.TransactionCount())
	}
	_, ok := mp.GetTransaction(consensushashing.TransactionID(transactions[0]))
	if ok {
		t.Fatalf("expected the oldest transaction to be evicted")
	}
	for _, tx := range transactions[1:] {
		_, ok := mp.GetTransaction(consensushashing.TransactionID(tx))
		if !ok {
			t.Fatalf("expected transaction %s to be pooled", consensushashing.TransactionID(tx))
		}
	}
}

func TestRemoveTransactions(t *testing.T) {
	mp := newTestMempool(t, 10)

	tx0, tx1 := transaction(0), transaction(1)
	mp.Recycle([]*externalapi.DomainTransaction{tx0, tx1})

	removed := mp.RemoveTransactions([]*externalapi.DomainTransaction{tx0, transaction(5)})
	if removed != 1 {
		t.Fatalf("expected 1 removed transaction, got %d", removed)
	}
	if mp.TransactionCount() != 1 {
		t.Fatalf("expected 1 pooled transaction, got %d", mp.TransactionCount())
	}
	_, ok := mp.GetTransaction(consensushashing.TransactionID(tx1))
	if !ok {
		t.Fatalf("expected the remaining transaction to be pooled")
	}
}
