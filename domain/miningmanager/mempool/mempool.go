package mempool

import (
	"sync"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/consensushashing"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMaximumTransactionCount = 10_000

// Config holds the limits of the mempool
type Config struct {
	MaximumTransactionCount int
}

// DefaultConfig returns the default mempool configuration
func DefaultConfig() *Config {
	return &Config{
		MaximumTransactionCount: defaultMaximumTransactionCount,
	}
}

// Mempool holds transactions that were handed back by the epoch executor
// after the epochs that included them left the pivot chain. Once full, the
// oldest transactions are evicted first.
type Mempool struct {
	mtx sync.RWMutex

	config               *Config
	transactionValidator model.TransactionValidator
	transactions         *lru.Cache[externalapi.DomainTransactionID, *externalapi.DomainTransaction]
}

var _ model.TransactionRecycler = (*Mempool)(nil)

// New constructs a new mempool
func New(config *Config, transactionValidator model.TransactionValidator) (*Mempool, error) {
	transactions, err := lru.NewWithEvict[externalapi.DomainTransactionID, *externalapi.DomainTransaction](
		config.MaximumTransactionCount,
		func(transactionID externalapi.DomainTransactionID, _ *externalapi.DomainTransaction) {
			log.Debugf("Evicted transaction %s from a full mempool", transactionID)
		})
	if err != nil {
		return nil, err
	}
	return &Mempool{
		config:               config,
		transactionValidator: transactionValidator,
		transactions:         transactions,
	}, nil
}

// Recycle implements model.TransactionRecycler. Transactions that fail
// validation in isolation are dropped.
func (mp *Mempool) Recycle(transactions []*externalapi.DomainTransaction) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	accepted := 0
	for _, transaction := range transactions {
		transactionID := consensushashing.TransactionID(transaction)
		err := mp.transactionValidator.ValidateTransactionInIsolation(transaction)
		if err != nil {
			log.Debugf("Dropped recycled transaction %s: %s", transactionID, err)
			continue
		}
		if mp.transactions.Contains(*transactionID) {
			continue
		}
		mp.transactions.Add(*transactionID, transaction)
		accepted++
	}
	if accepted > 0 {
		log.Infof("Recycled %d of %d transactions, %d in the mempool", accepted, len(transactions), mp.transactions.Len())
	}
}

// GetTransaction returns the pooled transaction with the given ID
func (mp *Mempool) GetTransaction(transactionID *externalapi.DomainTransactionID) (*externalapi.DomainTransaction, bool) {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.transactions.Peek(*transactionID)
}

// AllTransactions returns the pooled transactions, oldest first
func (mp *Mempool) AllTransactions() []*externalapi.DomainTransaction {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.transactions.Values()
}

// TransactionCount returns the number of pooled transactions
func (mp *Mempool) TransactionCount() int {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.transactions.Len()
}

// RemoveTransactions drops the given transactions from the pool, typically
// after they were included in a new block
func (mp *Mempool) RemoveTransactions(transactions []*externalapi.DomainTransaction) int {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	removed := 0
	for _, transaction := range transactions {
		if mp.transactions.Remove(*consensushashing.TransactionID(transaction)) {
			removed++
		}
	}
	return removed
}
