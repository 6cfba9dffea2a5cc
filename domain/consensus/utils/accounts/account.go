package accounts

import (
	"math/big"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Account is the state record of an address in one space
type Account struct {
	Balance *uint256.Int
	Nonce   uint64
}

// NewAccount returns an empty account
func NewAccount() *Account {
	return &Account{Balance: new(uint256.Int)}
}

// Clone returns a clone of Account
func (a *Account) Clone() *Account {
	return &Account{Balance: new(uint256.Int).Set(a.Balance), Nonce: a.Nonce}
}

// Equal returns whether account equals to other
func (a *Account) Equal(other *Account) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.Nonce == other.Nonce && a.Balance.Eq(other.Balance)
}

// IsEmpty returns whether the account holds nothing and never sent a
// transaction. Empty accounts are deleted from state.
func (a *Account) IsEmpty() bool {
	return a.Nonce == 0 && a.Balance.IsZero()
}

type accountRLP struct {
	Balance *big.Int
	Nonce   uint64
}

// Serialize encodes the account as RLP
func (a *Account) Serialize() ([]byte, error) {
	return rlp.EncodeToBytes(&accountRLP{Balance: a.Balance.ToBig(), Nonce: a.Nonce})
}

// DeserializeAccount decodes an account encoded by Serialize
func DeserializeAccount(data []byte) (*Account, error) {
	decoded := &accountRLP{}
	err := rlp.DecodeBytes(data, decoded)
	if err != nil {
		return nil, errors.Wrap(err, "malformed account record")
	}
	balance, overflow := uint256.FromBig(decoded.Balance)
	if overflow {
		return nil, errors.New("account balance overflows 256 bits")
	}
	return &Account{Balance: balance, Nonce: decoded.Nonce}, nil
}

// ReadAccount returns the account of address in space. A missing account is
// returned as an empty one.
func ReadAccount(state model.StateReader, space externalapi.TransactionSpace, address common.Address) (*Account, error) {
	data, found, err := state.ReadState(AccountKey(space, address))
	if err != nil {
		return nil, err
	}
	if !found {
		return NewAccount(), nil
	}
	return DeserializeAccount(data)
}

// WriteAccount stores account, deleting it instead if it's empty
func WriteAccount(state model.StateAccessor, space externalapi.TransactionSpace, address common.Address, account *Account) error {
	key := AccountKey(space, address)
	if account.IsEmpty() {
		state.DeleteState(key)
		return nil
	}
	data, err := account.Serialize()
	if err != nil {
		return err
	}
	state.WriteState(key, data)
	return nil
}

// AddBalance credits amount to the account of address in space
func AddBalance(state model.StateAccessor, space externalapi.TransactionSpace, address common.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	account, err := ReadAccount(state, space, address)
	if err != nil {
		return err
	}
	_, overflow := account.Balance.AddOverflow(account.Balance, amount)
	if overflow {
		return errors.Errorf("balance of %s overflows", address)
	}
	return WriteAccount(state, space, address, account)
}
