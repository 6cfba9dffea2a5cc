package externalapi

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DomainBlock represents a tree-graph block
type DomainBlock struct {
	Header       *DomainBlockHeader
	Transactions []*DomainTransaction
}

// Clone returns a clone of DomainBlock
func (block *DomainBlock) Clone() *DomainBlock {
	transactionClone := make([]*DomainTransaction, len(block.Transactions))
	for i, tx := range block.Transactions {
		transactionClone[i] = tx.Clone()
	}

	return &DomainBlock{
		Header:       block.Header.Clone(),
		Transactions: transactionClone,
	}
}

// DomainBlockHeader represents the header part of a tree-graph block.
// A genesis header has a nil ParentHash.
type DomainBlockHeader struct {
	Version            uint16
	ParentHash         *DomainHash
	RefereeHashes      []*DomainHash
	Height             uint64
	TimeInMilliseconds int64
	Author             common.Address
	Difficulty         *big.Int
	TransactionsRoot   *DomainHash
	GasLimit           uint64
	Nonce              uint64
}

// Clone returns a clone of DomainBlockHeader
func (header *DomainBlockHeader) Clone() *DomainBlockHeader {
	var parentHash *DomainHash
	if header.ParentHash != nil {
		parentHash = NewDomainHashFromByteArray(header.ParentHash.ByteArray())
	}
	var difficulty *big.Int
	if header.Difficulty != nil {
		difficulty = new(big.Int).Set(header.Difficulty)
	}
	var transactionsRoot *DomainHash
	if header.TransactionsRoot != nil {
		transactionsRoot = NewDomainHashFromByteArray(header.TransactionsRoot.ByteArray())
	}
	return &DomainBlockHeader{
		Version:            header.Version,
		ParentHash:         parentHash,
		RefereeHashes:      CloneHashes(header.RefereeHashes),
		Height:             header.Height,
		TimeInMilliseconds: header.TimeInMilliseconds,
		Author:             header.Author,
		Difficulty:         difficulty,
		TransactionsRoot:   transactionsRoot,
		GasLimit:           header.GasLimit,
		Nonce:              header.Nonce,
	}
}

// Equal returns whether header equals to other
func (header *DomainBlockHeader) Equal(other *DomainBlockHeader) bool {
	if header == nil || other == nil {
		return header == other
	}
	if header.Version != other.Version ||
		!header.ParentHash.Equal(other.ParentHash) ||
		!HashesEqual(header.RefereeHashes, other.RefereeHashes) ||
		header.Height != other.Height ||
		header.TimeInMilliseconds != other.TimeInMilliseconds ||
		header.Author != other.Author ||
		!header.TransactionsRoot.Equal(other.TransactionsRoot) ||
		header.GasLimit != other.GasLimit ||
		header.Nonce != other.Nonce {
		return false
	}
	if header.Difficulty == nil || other.Difficulty == nil {
		return header.Difficulty == other.Difficulty
	}
	return header.Difficulty.Cmp(other.Difficulty) == 0
}

// IsGenesis returns whether the header has no parent
func (header *DomainBlockHeader) IsGenesis() bool {
	return header.ParentHash == nil
}

// Dependencies returns the parent hash followed by the referee hashes.
func (header *DomainBlockHeader) Dependencies() []*DomainHash {
	dependencies := make([]*DomainHash, 0, len(header.RefereeHashes)+1)
	if header.ParentHash != nil {
		dependencies = append(dependencies, header.ParentHash)
	}
	return append(dependencies, header.RefereeHashes...)
}
