package transactionprocessor

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/accounts"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/consensushashing"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

const (
	// TransactionGas is the intrinsic gas of every transaction
	TransactionGas = 21000

	// TransactionDataGasPerByte is the intrinsic gas of every data byte
	TransactionDataGasPerByte = 16
)

// TransferTopic is the first topic of the log every value transfer emits
var TransferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// transactionProcessor is the reference value-transfer executor. It moves
// value between accounts, charges intrinsic gas and bridges value from the
// native space into the EVM space through the cross-space call contract.
type transactionProcessor struct {
	crossSpaceCallAddress common.Address
}

// New instantiates a new TransactionExecutor
func New(crossSpaceCallAddress common.Address) model.TransactionExecutor {
	return &transactionProcessor{crossSpaceCallAddress: crossSpaceCallAddress}
}

// IntrinsicGas returns the gas a transaction with the given data consumes
// before doing anything
func IntrinsicGas(data []byte) uint64 {
	return TransactionGas + TransactionDataGasPerByte*uint64(len(data))
}

// MappedAddress returns the EVM-space address that acts for a native-space
// address in cross-space calls
func MappedAddress(nativeAddress common.Address) common.Address {
	return common.BytesToAddress(crypto.Keccak256(nativeAddress.Bytes())[12:])
}

func notExecuted(reason string, recycle bool) *model.TransactionOutcome {
	return &model.TransactionOutcome{
		Status:  externalapi.ReceiptStatusSkipped,
		GasFee:  new(uint256.Int),
		Error:   reason,
		Recycle: recycle,
	}
}

func (tp *transactionProcessor) Execute(env *model.ExecutionEnvironment, state model.StateAccessor,
	transaction *externalapi.DomainTransaction) (*model.TransactionOutcome, error) {

	if env.AccumulatedGasUsed+transaction.GasLimit > env.GasLimit {
		return notExecuted("block gas limit reached", true), nil
	}

	sender, err := accounts.ReadAccount(state, transaction.Space, transaction.From)
	if err != nil {
		return nil, err
	}
	switch {
	case transaction.Nonce > sender.Nonce:
		return notExecuted("nonce too high", true), nil
	case transaction.Nonce < sender.Nonce:
		return notExecuted("nonce too low", false), nil
	}

	gasPrice := transaction.GasPrice
	if gasPrice == nil {
		gasPrice = new(uint256.Int)
	}
	value := transaction.Value
	if value == nil {
		value = new(uint256.Int)
	}
	maxFee, overflow := new(uint256.Int).MulOverflow(new(uint256.Int).SetUint64(transaction.GasLimit), gasPrice)
	if overflow {
		return notExecuted("gas fee overflows", false), nil
	}
	cost, overflow := new(uint256.Int).AddOverflow(maxFee, value)
	if overflow {
		return notExecuted("transaction cost overflows", false), nil
	}
	if sender.Balance.Lt(cost) {
		return notExecuted("insufficient balance", true), nil
	}

	intrinsicGas := IntrinsicGas(transaction.Data)
	sender.Nonce++
	if transaction.GasLimit < intrinsicGas {
		sender.Balance.Sub(sender.Balance, maxFee)
		err := accounts.WriteAccount(state, transaction.Space, transaction.From, sender)
		if err != nil {
			return nil, err
		}
		return &model.TransactionOutcome{
			Status:  externalapi.ReceiptStatusFailed,
			GasUsed: transaction.GasLimit,
			GasFee:  maxFee,
			Error:   "out of gas",
		}, nil
	}

	fee := new(uint256.Int).Mul(new(uint256.Int).SetUint64(intrinsicGas), gasPrice)
	sender.Balance.Sub(sender.Balance, fee)

	outcome := &model.TransactionOutcome{
		Status:  externalapi.ReceiptStatusSuccess,
		GasUsed: intrinsicGas,
		GasFee:  fee,
	}

	isCrossSpaceCall, err := tp.isCrossSpaceCall(state, transaction)
	if err != nil {
		return nil, err
	}
	if isCrossSpaceCall && len(transaction.Data) < common.AddressLength {
		outcome.Status = externalapi.ReceiptStatusFailed
		outcome.Error = "cross-space call without a recipient"
		err := accounts.WriteAccount(state, transaction.Space, transaction.From, sender)
		if err != nil {
			return nil, err
		}
		return outcome, nil
	}

	sender.Balance.Sub(sender.Balance, value)
	err = accounts.WriteAccount(state, transaction.Space, transaction.From, sender)
	if err != nil {
		return nil, err
	}

	if isCrossSpaceCall {
		phantom, err := tp.crossSpaceTransfer(state, transaction, value)
		if err != nil {
			return nil, err
		}
		outcome.PhantomTransactions = []*externalapi.PhantomTransaction{phantom}
		outcome.Logs = []*externalapi.Log{transferLog(transaction.Space, transaction.From, tp.crossSpaceCallAddress, value)}
		return outcome, nil
	}

	recipient := tp.recipient(transaction)
	err = accounts.AddBalance(state, transaction.Space, recipient, value)
	if err != nil {
		return nil, err
	}
	outcome.Logs = []*externalapi.Log{transferLog(transaction.Space, transaction.From, recipient, value)}
	return outcome, nil
}

// recipient returns the receiving address of transaction. Contract
// creations credit the address derived from the sender and its nonce.
func (tp *transactionProcessor) recipient(transaction *externalapi.DomainTransaction) common.Address {
	if transaction.To == nil {
		return crypto.CreateAddress(transaction.From, transaction.Nonce)
	}
	return *transaction.To
}

func (tp *transactionProcessor) isCrossSpaceCall(state model.StateReader, transaction *externalapi.DomainTransaction) (bool, error) {
	if transaction.Space != externalapi.SpaceNative || transaction.To == nil || *transaction.To != tp.crossSpaceCallAddress {
		return false, nil
	}
	_, activated, err := state.ReadState(accounts.InternalContractKey(tp.crossSpaceCallAddress))
	return activated, err
}

// crossSpaceTransfer credits value to the EVM-space account named by the
// first 20 data bytes, and returns the phantom transaction the EVM space
// sees for it
func (tp *transactionProcessor) crossSpaceTransfer(state model.StateAccessor,
	transaction *externalapi.DomainTransaction, value *uint256.Int) (*externalapi.PhantomTransaction, error) {

	evmRecipient := common.BytesToAddress(transaction.Data[:common.AddressLength])
	mappedSender := MappedAddress(transaction.From)

	mappedAccount, err := accounts.ReadAccount(state, externalapi.SpaceEthereum, mappedSender)
	if err != nil {
		return nil, err
	}
	phantom := &externalapi.PhantomTransaction{
		From:  mappedSender,
		To:    evmRecipient,
		Value: new(uint256.Int).Set(value),
		Data:  append([]byte(nil), transaction.Data[common.AddressLength:]...),
		Nonce: mappedAccount.Nonce,
	}
	mappedAccount.Nonce++
	err = accounts.WriteAccount(state, externalapi.SpaceEthereum, mappedSender, mappedAccount)
	if err != nil {
		return nil, err
	}
	err = accounts.AddBalance(state, externalapi.SpaceEthereum, evmRecipient, value)
	if err != nil {
		return nil, err
	}
	phantom.Hash = consensushashing.PhantomTransactionHash(consensushashing.TransactionID(transaction), 0, phantom)
	log.Tracef("Cross-space transfer of %s from %s to %s", value, transaction.From, evmRecipient)
	return phantom, nil
}

func transferLog(space externalapi.TransactionSpace, from, to common.Address, value *uint256.Int) *externalapi.Log {
	data := value.Bytes32()
	return &externalapi.Log{
		Space:   space,
		Address: to,
		Topics:  []common.Hash{TransferTopic, common.BytesToHash(from.Bytes()), common.BytesToHash(to.Bytes())},
		Data:    data[:],
	}
}
