package transactionvalidator

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
)

// MaxTransactionDataSize is the maximum size of the data of a single
// transaction
const MaxTransactionDataSize = 200 * 1024

// transactionValidator exposes a set of validation classes, after which
// it's possible to determine whether a transaction is valid
type transactionValidator struct {
	blockGasLimit uint64
}

// New instantiates a new TransactionValidator
func New(blockGasLimit uint64) model.TransactionValidator {
	return &transactionValidator{
		blockGasLimit: blockGasLimit,
	}
}
