package blockvalidator

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/ruleerrors"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/merkle"
	"github.com/pkg/errors"
)

func (v *blockValidator) checkBlockBodyInIsolation(block *externalapi.DomainBlock) error {
	err := v.checkBlockTransactions(block)
	if err != nil {
		return err
	}

	err = v.checkBlockGasLimit(block)
	if err != nil {
		return err
	}

	return v.checkTransactionsRoot(block)
}

func (v *blockValidator) checkBlockTransactions(block *externalapi.DomainBlock) error {
	for i, tx := range block.Transactions {
		err := v.transactionValidator.ValidateTransactionInIsolation(tx)
		if err != nil {
			return errors.Wrapf(err, "transaction %d of the block is invalid", i)
		}
	}
	return nil
}

func (v *blockValidator) checkBlockGasLimit(block *externalapi.DomainBlock) error {
	if block.Header.GasLimit > v.blockGasLimit {
		return errors.Wrapf(ruleerrors.ErrBlockGasLimitExceeded, "block gas limit %d is above the maximum %d",
			block.Header.GasLimit, v.blockGasLimit)
	}

	totalGas := uint64(0)
	for _, tx := range block.Transactions {
		totalGas += tx.GasLimit
		if totalGas < tx.GasLimit || totalGas > block.Header.GasLimit {
			return errors.Wrapf(ruleerrors.ErrBlockGasLimitExceeded, "block transactions declare more gas "+
				"than the block gas limit %d", block.Header.GasLimit)
		}
	}
	return nil
}

func (v *blockValidator) checkTransactionsRoot(block *externalapi.DomainBlock) error {
	calculatedRoot := merkle.CalculateTransactionsRoot(block.Transactions)
	if !block.Header.TransactionsRoot.Equal(calculatedRoot) {
		return errors.Wrapf(ruleerrors.ErrBadMerkleRoot, "block transactions root is invalid - block "+
			"header indicates %s, but calculated value is %s", block.Header.TransactionsRoot, calculatedRoot)
	}
	return nil
}
