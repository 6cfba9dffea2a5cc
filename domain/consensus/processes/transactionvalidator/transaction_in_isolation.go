package transactionvalidator

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// ValidateTransactionInIsolation validates the parts of the transaction that can be validated context-free
func (v *transactionValidator) ValidateTransactionInIsolation(tx *externalapi.DomainTransaction) error {
	err := v.checkTransactionSpace(tx)
	if err != nil {
		return err
	}
	err = v.checkTransactionAmounts(tx)
	if err != nil {
		return err
	}
	err = v.checkTransactionDataSize(tx)
	if err != nil {
		return err
	}
	return v.checkTransactionGasLimit(tx)
}

func (v *transactionValidator) checkTransactionSpace(tx *externalapi.DomainTransaction) error {
	if tx.Space != externalapi.SpaceNative && tx.Space != externalapi.SpaceEthereum {
		return errors.Wrapf(ruleerrors.ErrUnknownTransactionSpace, "transaction space %d is unknown", tx.Space)
	}
	return nil
}

func (v *transactionValidator) checkTransactionAmounts(tx *externalapi.DomainTransaction) error {
	if tx.Value == nil {
		return errors.Wrapf(ruleerrors.ErrTransactionMissingAmounts, "transaction has no value")
	}
	if tx.GasPrice == nil {
		return errors.Wrapf(ruleerrors.ErrTransactionMissingAmounts, "transaction has no gas price")
	}
	return nil
}

func (v *transactionValidator) checkTransactionDataSize(tx *externalapi.DomainTransaction) error {
	if len(tx.Data) > MaxTransactionDataSize {
		return errors.Wrapf(ruleerrors.ErrTransactionDataTooLarge, "transaction data is %d bytes, "+
			"but the maximum allowed size is %d", len(tx.Data), MaxTransactionDataSize)
	}
	return nil
}

func (v *transactionValidator) checkTransactionGasLimit(tx *externalapi.DomainTransaction) error {
	if tx.GasLimit > v.blockGasLimit {
		return errors.Wrapf(ruleerrors.ErrTransactionGasLimitTooHigh, "transaction gas limit %d is above "+
			"the block gas limit %d", tx.GasLimit, v.blockGasLimit)
	}
	return nil
}
