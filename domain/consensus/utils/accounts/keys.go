package accounts

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	accountKeyPrefix = []byte("acct/")

	// EpochEnvironmentKey holds the hash and number of the epoch being executed
	EpochEnvironmentKey = []byte("sys/env/epoch")

	// BlockEnvironmentKey holds the hash and number of the block being executed
	BlockEnvironmentKey = []byte("sys/env/block")

	internalContractKeyPrefix = []byte("sys/contract/")
)

// AccountKey is the state key of address in space
func AccountKey(space externalapi.TransactionSpace, address common.Address) []byte {
	key := make([]byte, 0, len(accountKeyPrefix)+1+common.AddressLength)
	key = append(key, accountKeyPrefix...)
	key = append(key, byte(space))
	return append(key, address.Bytes()...)
}

// InternalContractKey is the state key that records the activation of an
// internal contract
func InternalContractKey(address common.Address) []byte {
	key := make([]byte, 0, len(internalContractKeyPrefix)+common.AddressLength)
	key = append(key, internalContractKeyPrefix...)
	return append(key, address.Bytes()...)
}
