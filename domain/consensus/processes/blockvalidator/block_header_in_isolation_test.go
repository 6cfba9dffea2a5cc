package blockvalidator_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/blockvalidator"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/grapharena"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/transactionvalidator"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/ruleerrors"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/consensushashing"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/merkle"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/pow"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const (
	testMaxReferees   = 2
	testBlockGasLimit = 100_000
)

type fixedDifficultyManager struct{}

func (fixedDifficultyManager) TargetDifficulty(*externalapi.DomainHash) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (fixedDifficultyManager) ExpectedDifficulty(*externalapi.DomainHash) (*big.Int, error) {
	return big.NewInt(1), nil
}

func hashOf(i byte) *externalapi.DomainHash {
	var hash [externalapi.DomainHashSize]byte
	hash[0] = i
	hash[31] = 0xff
	return externalapi.NewDomainHashFromByteArray(&hash)
}

func genesisBlock() *externalapi.DomainBlock {
	return &externalapi.DomainBlock{Header: &externalapi.DomainBlockHeader{
		RefereeHashes:      []*externalapi.DomainHash{},
		TimeInMilliseconds: 1_000,
		Difficulty:         big.NewInt(1),
		TransactionsRoot:   merkle.CalculateTransactionsRoot(nil),
		GasLimit:           testBlockGasLimit,
	}}
}

func childBlock(parent *externalapi.DomainHash, height uint64, transactions ...*externalapi.DomainTransaction) *externalapi.DomainBlock {
	return &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			ParentHash:         parent,
			RefereeHashes:      []*externalapi.DomainHash{},
			Height:             height,
			TimeInMilliseconds: time.Now().UnixMilli(),
			Difficulty:         big.NewInt(1),
			TransactionsRoot:   merkle.CalculateTransactionsRoot(transactions),
			GasLimit:           testBlockGasLimit,
		},
		Transactions: transactions,
	}
}

func transaction(gasLimit uint64) *externalapi.DomainTransaction {
	to := common.HexToAddress("0x1000000000000000000000000000000000000002")
	return &externalapi.DomainTransaction{
		Space:    externalapi.SpaceNative,
		From:     common.HexToAddress("0x1000000000000000000000000000000000000001"),
		To:       &to,
		Value:    uint256.NewInt(1),
		GasLimit: gasLimit,
		GasPrice: uint256.NewInt(1),
	}
}

func newValidator(arena model.GraphArena, skipPoW bool) model.BlockValidator {
	genesisHash := consensushashing.BlockHash(genesisBlock())
	return blockvalidator.New(testMaxReferees, 2*time.Minute, testBlockGasLimit, genesisHash,
		arena, fixedDifficultyManager{}, transactionvalidator.New(testBlockGasLimit), pow.NewVerifier(skipPoW))
}

func TestValidateHeaderInIsolation(t *testing.T) {
	validator := newValidator(grapharena.New(), true)
	parent := hashOf(1)

	tests := []struct {
		name        string
		block       func() *externalapi.DomainBlock
		expectedErr error
	}{
		{
			name:  "genesis",
			block: genesisBlock,
		},
		{
			name:  "valid child",
			block: func() *externalapi.DomainBlock { return childBlock(parent, 1, transaction(21_000)) },
		},
		{
			name: "unexpected genesis",
			block: func() *externalapi.DomainBlock {
				block := genesisBlock()
				block.Header.Nonce = 1
				return block
			},
			expectedErr: ruleerrors.ErrUnexpectedGenesis,
		},
		{
			name: "too many referees",
			block: func() *externalapi.DomainBlock {
				block := childBlock(parent, 1)
				block.Header.RefereeHashes = []*externalapi.DomainHash{hashOf(2), hashOf(3), hashOf(4)}
				return block
			},
			expectedErr: ruleerrors.ErrTooManyReferees,
		},
		{
			name: "duplicate referee",
			block: func() *externalapi.DomainBlock {
				block := childBlock(parent, 1)
				block.Header.RefereeHashes = []*externalapi.DomainHash{hashOf(2), hashOf(2)}
				return block
			},
			expectedErr: ruleerrors.ErrDuplicateReferee,
		},
		{
			name: "parent is referee",
			block: func() *externalapi.DomainBlock {
				block := childBlock(parent, 1)
				block.Header.RefereeHashes = []*externalapi.DomainHash{hashOf(1)}
				return block
			},
			expectedErr: ruleerrors.ErrParentIsReferee,
		},
		{
			name: "timestamp too far in the future",
			block: func() *externalapi.DomainBlock {
				block := childBlock(parent, 1)
				block.Header.TimeInMilliseconds = time.Now().Add(time.Hour).UnixMilli()
				return block
			},
			expectedErr: ruleerrors.ErrTimeTooNew,
		},
		{
			name: "no difficulty",
			block: func() *externalapi.DomainBlock {
				block := childBlock(parent, 1)
				block.Header.Difficulty = nil
				return block
			},
			expectedErr: ruleerrors.ErrNilDifficulty,
		},
		{
			name: "bad transactions root",
			block: func() *externalapi.DomainBlock {
				block := childBlock(parent, 1, transaction(21_000))
				block.Transactions = append(block.Transactions, transaction(21_001))
				return block
			},
			expectedErr: ruleerrors.ErrBadMerkleRoot,
		},
		{
			name: "transactions above the block gas limit",
			block: func() *externalapi.DomainBlock {
				return childBlock(parent, 1, transaction(60_000), transaction(60_000))
			},
			expectedErr: ruleerrors.ErrBlockGasLimitExceeded,
		},
		{
			name: "invalid transaction",
			block: func() *externalapi.DomainBlock {
				tx := transaction(21_000)
				tx.GasPrice = nil
				return childBlock(parent, 1, tx)
			},
			expectedErr: ruleerrors.ErrTransactionMissingAmounts,
		},
	}

	for _, test := range tests {
		err := validator.ValidateHeaderInIsolation(test.block())
		if test.expectedErr == nil {
			if err != nil {
				t.Fatalf("%s: unexpected error: %+v", test.name, err)
			}
			continue
		}
		if !errors.Is(err, test.expectedErr) {
			t.Fatalf("%s: expected %v, got %+v", test.name, test.expectedErr, err)
		}
	}
}

func TestCheckProofOfWork(t *testing.T) {
	validator := newValidator(grapharena.New(), false)

	block := childBlock(hashOf(1), 1)
	block.Header.Difficulty = new(big.Int).Lsh(big.NewInt(1), 255)
	err := validator.ValidateHeaderInIsolation(block)
	if !errors.Is(err, ruleerrors.ErrInvalidPoW) {
		t.Fatalf("expected ErrInvalidPoW, got %+v", err)
	}

	block.Header.Difficulty = big.NewInt(1)
	if !pow.SolveBlock(block.Header, 1) {
		t.Fatalf("a difficulty of 1 accepts any header")
	}
	err = validator.ValidateHeaderInIsolation(block)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
}

func TestValidateHeaderInContext(t *testing.T) {
	arena := grapharena.New()
	validator := newValidator(arena, true)

	genesis := genesisBlock()
	genesisHash := consensushashing.BlockHash(genesis)
	genesisIndex, err := arena.Insert(genesis.Header, genesisHash, 0)
	if err != nil {
		t.Fatalf("Insert: %+v", err)
	}
	_, err = arena.MarkReady(genesisIndex)
	if err != nil {
		t.Fatalf("MarkReady: %+v", err)
	}
	err = validator.ValidateHeaderInContext(genesisIndex)
	if err != nil {
		t.Fatalf("unexpected error for the genesis: %+v", err)
	}

	wrongDifficulty := childBlock(genesisHash, 1)
	wrongDifficulty.Header.Difficulty = big.NewInt(2)

	tests := []struct {
		name        string
		block       *externalapi.DomainBlock
		expectedErr error
	}{
		{name: "valid", block: childBlock(genesisHash, 1)},
		{name: "wrong height", block: childBlock(genesisHash, 5), expectedErr: ruleerrors.ErrWrongParentHeight},
		{name: "wrong difficulty", block: wrongDifficulty, expectedErr: ruleerrors.ErrBadDifficulty},
	}
	for i, test := range tests {
		index, err := arena.Insert(test.block.Header, consensushashing.BlockHash(test.block), uint64(i+1))
		if err != nil {
			t.Fatalf("%s: Insert: %+v", test.name, err)
		}
		err = validator.ValidateHeaderInContext(index)
		if test.expectedErr == nil {
			if err != nil {
				t.Fatalf("%s: unexpected error: %+v", test.name, err)
			}
			continue
		}
		if !errors.Is(err, test.expectedErr) {
			t.Fatalf("%s: expected %v, got %+v", test.name, test.expectedErr, err)
		}
	}
}
