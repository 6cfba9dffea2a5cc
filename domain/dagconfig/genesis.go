// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"math/big"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/consensushashing"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func newGenesisBlock(timeInMilliseconds int64, difficulty *big.Int, nonce uint64) externalapi.DomainBlock {
	return externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Version:            0,
			ParentHash:         nil,
			RefereeHashes:      []*externalapi.DomainHash{},
			Height:             0,
			TimeInMilliseconds: timeInMilliseconds,
			Difficulty:         difficulty,
			TransactionsRoot:   externalapi.NewZeroHash(),
			GasLimit:           blockGasLimit,
			Nonce:              nonce,
		},
		Transactions: []*externalapi.DomainTransaction{},
	}
}

// genesisBlock defines the genesis block of the block DAG which serves as the
// public transaction ledger for the main network.
var genesisBlock = newGenesisBlock(0x18c2c4b1a00, mainnetInitialDifficulty, 0x1)

// genesisHash is the hash of the first block in the block DAG for the main
// network (genesis block).
var genesisHash = consensushashing.BlockHash(&genesisBlock)

var testnetGenesisBlock = newGenesisBlock(0x18c2c4b1a00, testnetInitialDifficulty, 0x2)

var testnetGenesisHash = consensushashing.BlockHash(&testnetGenesisBlock)

var devnetGenesisBlock = newGenesisBlock(0x18c2c4b1a00, devnetInitialDifficulty, 0x3)

var devnetGenesisHash = consensushashing.BlockHash(&devnetGenesisBlock)

var simnetGenesisBlock = newGenesisBlock(0x18c2c4b1a00, simnetInitialDifficulty, 0x4)

var simnetGenesisHash = consensushashing.BlockHash(&simnetGenesisBlock)

// SimnetFaucetAddress holds the whole genesis allocation of the simulation
// network, in both spaces
var SimnetFaucetAddress = common.HexToAddress("0x1000000000000000000000000000000000000001")

var simnetGenesisAllocations = []GenesisAllocation{
	{Space: externalapi.SpaceNative, Address: SimnetFaucetAddress, Balance: new(uint256.Int).Lsh(uint256.NewInt(1), 100)},
	{Space: externalapi.SpaceEthereum, Address: SimnetFaucetAddress, Balance: new(uint256.Int).Lsh(uint256.NewInt(1), 100)},
}

var devnetGenesisAllocations = []GenesisAllocation{
	{Space: externalapi.SpaceNative, Address: common.HexToAddress("0x1000000000000000000000000000000000000002"),
		Balance: new(uint256.Int).Lsh(uint256.NewInt(1), 90)},
}
