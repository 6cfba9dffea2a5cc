package epochexecutor

import (
	"encoding/binary"
	"sort"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/accounts"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/consensushashing"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/merkle"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const alreadyExecutedError = "transaction already executed"

// environmentValue encodes a hash and a number the way the environment
// records in system storage hold them
func environmentValue(hash *externalapi.DomainHash, number uint64) []byte {
	value := make([]byte, 0, externalapi.DomainHashSize+8)
	value = append(value, hash.ByteSlice()...)
	return binary.BigEndian.AppendUint64(value, number)
}

// initializeEpoch writes the epoch environment and applies what the pivot
// height activates
func (ex *epochExecution) initializeEpoch() error {
	ex.diff.WriteState(accounts.EpochEnvironmentKey, environmentValue(ex.task.EpochHash, ex.task.EpochNumber))

	if ex.task.ParentEpochHash == nil {
		for _, allocation := range ex.genesisAllocations {
			err := accounts.AddBalance(ex.diff, allocation.Space, allocation.Address, allocation.Balance)
			if err != nil {
				return err
			}
		}
	}

	pivotHeight := ex.task.PivotHeader.Height
	for _, contract := range ex.internalContracts {
		if contract.ActivationHeight != pivotHeight {
			continue
		}
		log.Debugf("Activating internal contract %s (%s) in epoch %s",
			contract.Name, contract.Address, ex.task.EpochHash)
		ex.diff.WriteState(accounts.InternalContractKey(contract.Address), []byte{1})
	}
	return nil
}

func (ex *epochExecution) executeBlock(block *model.EpochBlock, blockNumber uint64) error {
	header := block.Block.Header
	ex.diff.WriteState(accounts.BlockEnvironmentKey, environmentValue(block.Hash, blockNumber))

	transactions := block.Block.Transactions
	receipts := &externalapi.BlockReceipts{
		BlockHash:         block.Hash,
		EpochHash:         ex.task.EpochHash,
		BlockNumber:       blockNumber,
		Receipts:          make([]*externalapi.Receipt, 0, len(transactions)),
		SecondaryReward:   new(uint256.Int),
		TransactionErrors: make([]string, 0, len(transactions)),
	}
	fees := new(uint256.Int)
	accumulatedGasUsed := uint64(0)

	for i, transaction := range transactions {
		transactionID := consensushashing.TransactionID(transaction)
		env := &model.ExecutionEnvironment{
			ChainID:            ex.chainID(transaction.Space),
			Space:              transaction.Space,
			EpochHash:          ex.task.EpochHash,
			EpochNumber:        ex.task.EpochNumber,
			BlockHash:          block.Hash,
			BlockNumber:        blockNumber,
			Author:             header.Author,
			Timestamp:          header.TimeInMilliseconds,
			Difficulty:         header.Difficulty,
			GasLimit:           header.GasLimit,
			AccumulatedGasUsed: accumulatedGasUsed,
			TransactionIndex:   i,
		}
		outcome, err := ex.executeTransaction(env, transaction, transactionID)
		if err != nil {
			return err
		}

		accumulatedGasUsed += outcome.GasUsed
		gasFee := outcome.GasFee
		if gasFee == nil {
			gasFee = new(uint256.Int)
		}
		receipt := &externalapi.Receipt{
			TransactionID:       transactionID,
			Status:              outcome.Status,
			GasUsed:             outcome.GasUsed,
			AccumulatedGasUsed:  accumulatedGasUsed,
			GasFee:              gasFee,
			Logs:                outcome.Logs,
			LogsBloom:           merkle.LogBloom(outcome.Logs),
			PhantomTransactions: outcome.PhantomTransactions,
		}
		receipts.Receipts = append(receipts.Receipts, receipt)
		receipts.TransactionErrors = append(receipts.TransactionErrors, outcome.Error)

		if outcome.Status != externalapi.ReceiptStatusSkipped {
			fees.Add(fees, gasFee)
			if transaction.GasPrice != nil {
				ex.executedGasPrices = append(ex.executedGasPrices, transaction.GasPrice)
			}
			ex.seen[*transactionID] = struct{}{}
			ex.index(transactionID, block.Hash, uint32(i), outcome.PhantomTransactions)
		}
		if outcome.Recycle {
			ex.recycled = append(ex.recycled, transaction)
		}
		ex.trace("block %s #%d tx %d %s: %s gas %d fee %s %s",
			block.Hash, blockNumber, i, transactionID, outcome.Status, outcome.GasUsed, gasFee, outcome.Error)
	}

	ex.blockReceipts = append(ex.blockReceipts, receipts)
	ex.blockFees = append(ex.blockFees, fees)
	return nil
}

func (ex *epochExecution) executeTransaction(env *model.ExecutionEnvironment, transaction *externalapi.DomainTransaction,
	transactionID *externalapi.DomainTransactionID) (*model.TransactionOutcome, error) {

	alreadyExecuted, err := ex.alreadyExecuted(transactionID)
	if err != nil {
		return nil, err
	}
	if alreadyExecuted {
		return &model.TransactionOutcome{
			Status: externalapi.ReceiptStatusSkipped,
			GasFee: new(uint256.Int),
			Error:  alreadyExecutedError,
		}, nil
	}

	snapshot := ex.diff.Snapshot()
	outcome, err := ex.transactionExecutor.Execute(env, ex.diff, transaction)
	if err != nil {
		return nil, errors.Wrapf(err, "failed executing transaction %s", transactionID)
	}
	if outcome.Status == externalapi.ReceiptStatusSkipped {
		err = ex.diff.RevertToSnapshot(snapshot)
		if err != nil {
			return nil, err
		}
	}
	return outcome, nil
}

// alreadyExecuted returns whether transactionID was executed earlier in
// this epoch or in an earlier epoch of the executed chain
func (ex *epochExecution) alreadyExecuted(transactionID *externalapi.DomainTransactionID) (bool, error) {
	if _, ok := ex.seen[*transactionID]; ok {
		return true, nil
	}
	location, found, err := ex.transactionIndexStore.Get(ex.databaseContext, ex.stagingArea, transactionID)
	if err != nil {
		return false, err
	}
	return found && !location.IsPhantom && location.EpochNumber < ex.task.EpochNumber, nil
}

func (ex *epochExecution) index(transactionID *externalapi.DomainTransactionID, blockHash *externalapi.DomainHash,
	index uint32, phantomTransactions []*externalapi.PhantomTransaction) {

	ex.locations = append(ex.locations, &indexedLocation{
		transactionID: transactionID,
		location: &externalapi.TransactionLocation{
			BlockHash:   blockHash,
			EpochHash:   ex.task.EpochHash,
			EpochNumber: ex.task.EpochNumber,
			Index:       index,
		},
	})
	for i, phantom := range phantomTransactions {
		phantomHash := externalapi.NewDomainHashFromByteArray((*[externalapi.DomainHashSize]byte)(&phantom.Hash))
		ex.locations = append(ex.locations, &indexedLocation{
			transactionID: (*externalapi.DomainTransactionID)(phantomHash),
			location: &externalapi.TransactionLocation{
				BlockHash:    blockHash,
				EpochHash:    ex.task.EpochHash,
				EpochNumber:  ex.task.EpochNumber,
				Index:        index,
				IsPhantom:    true,
				PhantomIndex: uint32(i),
			},
		})
	}
}

func (ex *epochExecution) chainID(space externalapi.TransactionSpace) uint32 {
	if space == externalapi.SpaceEthereum {
		return ex.evmChainID
	}
	return ex.nativeChainID
}

func (ex *epochExecution) distributeRewards() error {
	if ex.rewardDistributor == nil {
		return nil
	}

	info := &model.EpochRewardInfo{
		EpochHash:      ex.task.EpochHash,
		EpochNumber:    ex.task.EpochNumber,
		MainBlockHash:  ex.task.EpochHash,
		MedianGasPrice: medianGasPrice(ex.executedGasPrices),
		Blocks:         make([]*model.BlockRewardInfo, len(ex.task.Blocks)),
	}
	for i, block := range ex.task.Blocks {
		info.Blocks[i] = &model.BlockRewardInfo{
			Hash:   block.Hash,
			Author: block.Block.Header.Author,
			Fees:   ex.blockFees[i],
		}
	}

	secondaryRewards, err := ex.rewardDistributor.DistributeRewards(ex.diff, info)
	if err != nil {
		return err
	}
	if len(secondaryRewards) != len(ex.blockReceipts) {
		return errors.Errorf("got %d secondary rewards for %d blocks", len(secondaryRewards), len(ex.blockReceipts))
	}
	for i, secondaryReward := range secondaryRewards {
		ex.blockReceipts[i].SecondaryReward = secondaryReward
	}
	return nil
}

// medianGasPrice returns the lower median of gasPrices, or zero if there
// are none
func medianGasPrice(gasPrices []*uint256.Int) *uint256.Int {
	if len(gasPrices) == 0 {
		return new(uint256.Int)
	}
	sorted := make([]*uint256.Int, len(gasPrices))
	copy(sorted, gasPrices)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Lt(sorted[j])
	})
	return new(uint256.Int).Set(sorted[(len(sorted)-1)/2])
}
