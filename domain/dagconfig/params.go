// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import (
	"math/big"
	"time"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const (
	targetBlockIntervalMillis       = 500
	difficultyAdjustmentEpochPeriod = 5000
	difficultyAdjustmentFactor      = 2
	difficultyCacheCapacity         = 512
	outlierCacheCapacity            = 4096
	maxOutlierSize                  = 8192
	outlierSequenceWindow           = 100_000
	eraEpochCount                   = 50_000
	maxReferees                     = 200
	timestampDeviationTolerance     = 2 * time.Minute
	maxExecutedBlocksPerEpoch       = 200
	executionDeferDepth             = 5
	prefetchWorkers                 = 8
	blockGasLimit                   = 30_000_000
	secondaryRewardRatio            = 1000
	arenaExpiry                     = 30 * time.Minute
)

var (
	// bigOne is 1 represented as a big.Int. It is defined here to avoid
	// the overhead of creating it multiple times.
	bigOne = big.NewInt(1)

	mainnetInitialDifficulty = big.NewInt(4_000_000)
	testnetInitialDifficulty = big.NewInt(100_000)
	devnetInitialDifficulty  = big.NewInt(1_000)
	simnetInitialDifficulty  = big.NewInt(1)

	// baseBlockReward is 2 native tokens with 18 decimals
	baseBlockReward = new(uint256.Int).Mul(uint256.NewInt(2), uint256.NewInt(1_000_000_000_000_000_000))
)

// CrossSpaceCallAddress is the internal contract native transactions call to
// move value into the EVM space
var CrossSpaceCallAddress = common.HexToAddress("0x0888000000000000000000000000000000000006")

// InternalContract is a system contract whose storage is initialised when
// the pivot chain reaches its activation height.
type InternalContract struct {
	Name             string
	Address          common.Address
	ActivationHeight uint64
}

// GenesisAllocation is a balance credited to an account by the genesis epoch
type GenesisAllocation struct {
	Space   externalapi.TransactionSpace
	Address common.Address
	Balance *uint256.Int
}

// Params defines a tree-graph network by its parameters.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// GenesisBlock defines the first block of the DAG.
	GenesisBlock *externalapi.DomainBlock

	// GenesisHash is the starting block hash.
	GenesisHash *externalapi.DomainHash

	// GenesisAllocations are credited while the genesis epoch executes.
	GenesisAllocations []GenesisAllocation

	// TargetBlockIntervalMillis is the desired interval between blocks.
	TargetBlockIntervalMillis int64

	// DifficultyAdjustmentEpochPeriod is the number of pivot heights
	// between two difficulty adjustments.
	DifficultyAdjustmentEpochPeriod uint64

	// InitialDifficulty is the difficulty of the first period and the
	// lower bound of every retarget.
	InitialDifficulty *big.Int

	// DifficultyAdjustmentFactor bounds a single retarget to
	// current/factor in either direction.
	DifficultyAdjustmentFactor int64

	// DifficultyScale divides the expected difficulty.
	DifficultyScale *big.Int

	// SkipDifficultyAdjustment pins the difficulty to InitialDifficulty.
	SkipDifficultyAdjustment bool

	// SkipProofOfWork disables proof-of-work checks.
	SkipProofOfWork bool

	DifficultyCacheCapacity int

	OutlierCacheCapacity  int
	MaxOutlierSize        int
	OutlierSequenceWindow uint64

	// EraEpochCount is the number of pivot heights per era.
	EraEpochCount uint64

	MaxReferees                 int
	TimestampDeviationTolerance time.Duration

	// MaxExecutedBlocksPerEpoch bounds the number of executed blocks per
	// epoch. Older blocks of an oversized epoch are skipped.
	MaxExecutedBlocksPerEpoch int

	// ExecutionDeferDepth is the number of pivot blocks an epoch must be
	// buried under before it is executed.
	ExecutionDeferDepth uint64

	PrefetchWorkers int

	NativeChainID uint32
	EVMChainID    uint32

	BlockGasLimit uint64

	BaseBlockReward *uint256.Int

	// SecondaryRewardRatio is expressed in basis points of a block's fees.
	SecondaryRewardRatio uint64

	InternalContracts []InternalContract

	// ArenaExpiry is the age after which blocks that never became
	// graph-ready are reclaimed.
	ArenaExpiry time.Duration
}

// ErrUnknownNetwork describes an error where the requested network name
// is not one of the known networks
var ErrUnknownNetwork = errors.New("unknown network")

var defaultInternalContracts = []InternalContract{
	{Name: "AdminControl", Address: common.HexToAddress("0x0888000000000000000000000000000000000000"), ActivationHeight: 0},
	{Name: "SponsorWhitelistControl", Address: common.HexToAddress("0x0888000000000000000000000000000000000001"), ActivationHeight: 0},
	{Name: "Staking", Address: common.HexToAddress("0x0888000000000000000000000000000000000002"), ActivationHeight: 0},
	{Name: "CrossSpaceCall", Address: CrossSpaceCallAddress, ActivationHeight: 10},
}

// MainnetParams defines the network parameters for the main network.
var MainnetParams = Params{
	Name:                            "treegraph-mainnet",
	GenesisBlock:                    &genesisBlock,
	GenesisHash:                     genesisHash,
	TargetBlockIntervalMillis:       targetBlockIntervalMillis,
	DifficultyAdjustmentEpochPeriod: difficultyAdjustmentEpochPeriod,
	InitialDifficulty:               mainnetInitialDifficulty,
	DifficultyAdjustmentFactor:      difficultyAdjustmentFactor,
	DifficultyScale:                 bigOne,
	DifficultyCacheCapacity:         difficultyCacheCapacity,
	OutlierCacheCapacity:            outlierCacheCapacity,
	MaxOutlierSize:                  maxOutlierSize,
	OutlierSequenceWindow:           outlierSequenceWindow,
	EraEpochCount:                   eraEpochCount,
	MaxReferees:                     maxReferees,
	TimestampDeviationTolerance:     timestampDeviationTolerance,
	MaxExecutedBlocksPerEpoch:       maxExecutedBlocksPerEpoch,
	ExecutionDeferDepth:             executionDeferDepth,
	PrefetchWorkers:                 prefetchWorkers,
	NativeChainID:                   1029,
	EVMChainID:                      1030,
	BlockGasLimit:                   blockGasLimit,
	BaseBlockReward:                 baseBlockReward,
	SecondaryRewardRatio:            secondaryRewardRatio,
	InternalContracts:               defaultInternalContracts,
	ArenaExpiry:                     arenaExpiry,
}

// TestnetParams defines the network parameters for the test network.
var TestnetParams = Params{
	Name:                            "treegraph-testnet",
	GenesisBlock:                    &testnetGenesisBlock,
	GenesisHash:                     testnetGenesisHash,
	TargetBlockIntervalMillis:       targetBlockIntervalMillis,
	DifficultyAdjustmentEpochPeriod: difficultyAdjustmentEpochPeriod,
	InitialDifficulty:               testnetInitialDifficulty,
	DifficultyAdjustmentFactor:      difficultyAdjustmentFactor,
	DifficultyScale:                 bigOne,
	DifficultyCacheCapacity:         difficultyCacheCapacity,
	OutlierCacheCapacity:            outlierCacheCapacity,
	MaxOutlierSize:                  maxOutlierSize,
	OutlierSequenceWindow:           outlierSequenceWindow,
	EraEpochCount:                   eraEpochCount,
	MaxReferees:                     maxReferees,
	TimestampDeviationTolerance:     timestampDeviationTolerance,
	MaxExecutedBlocksPerEpoch:       maxExecutedBlocksPerEpoch,
	ExecutionDeferDepth:             executionDeferDepth,
	PrefetchWorkers:                 prefetchWorkers,
	NativeChainID:                   1,
	EVMChainID:                      71,
	BlockGasLimit:                   blockGasLimit,
	BaseBlockReward:                 baseBlockReward,
	SecondaryRewardRatio:            secondaryRewardRatio,
	InternalContracts:               defaultInternalContracts,
	ArenaExpiry:                     arenaExpiry,
}

// DevnetParams defines the network parameters for the development network.
var DevnetParams = Params{
	Name:                            "treegraph-devnet",
	GenesisBlock:                    &devnetGenesisBlock,
	GenesisHash:                     devnetGenesisHash,
	GenesisAllocations:              devnetGenesisAllocations,
	TargetBlockIntervalMillis:       targetBlockIntervalMillis,
	DifficultyAdjustmentEpochPeriod: 100,
	InitialDifficulty:               devnetInitialDifficulty,
	DifficultyAdjustmentFactor:      difficultyAdjustmentFactor,
	DifficultyScale:                 bigOne,
	DifficultyCacheCapacity:         difficultyCacheCapacity,
	OutlierCacheCapacity:            outlierCacheCapacity,
	MaxOutlierSize:                  maxOutlierSize,
	OutlierSequenceWindow:           outlierSequenceWindow,
	EraEpochCount:                   1000,
	MaxReferees:                     maxReferees,
	TimestampDeviationTolerance:     timestampDeviationTolerance,
	MaxExecutedBlocksPerEpoch:       maxExecutedBlocksPerEpoch,
	ExecutionDeferDepth:             1,
	PrefetchWorkers:                 prefetchWorkers,
	NativeChainID:                   8888,
	EVMChainID:                      8889,
	BlockGasLimit:                   blockGasLimit,
	BaseBlockReward:                 baseBlockReward,
	SecondaryRewardRatio:            secondaryRewardRatio,
	InternalContracts:               defaultInternalContracts,
	ArenaExpiry:                     arenaExpiry,
}

// SimnetParams defines the network parameters for the simulation test
// network. Proof of work is not checked, the difficulty never changes and
// epochs execute as soon as they join the pivot chain.
var SimnetParams = Params{
	Name:                            "treegraph-simnet",
	GenesisBlock:                    &simnetGenesisBlock,
	GenesisHash:                     simnetGenesisHash,
	GenesisAllocations:              simnetGenesisAllocations,
	TargetBlockIntervalMillis:       targetBlockIntervalMillis,
	DifficultyAdjustmentEpochPeriod: 10,
	InitialDifficulty:               simnetInitialDifficulty,
	DifficultyAdjustmentFactor:      difficultyAdjustmentFactor,
	DifficultyScale:                 bigOne,
	SkipDifficultyAdjustment:        true,
	SkipProofOfWork:                 true,
	DifficultyCacheCapacity:         16,
	OutlierCacheCapacity:            64,
	MaxOutlierSize:                  64,
	OutlierSequenceWindow:           1000,
	EraEpochCount:                   100,
	MaxReferees:                     16,
	TimestampDeviationTolerance:     timestampDeviationTolerance,
	MaxExecutedBlocksPerEpoch:       maxExecutedBlocksPerEpoch,
	ExecutionDeferDepth:             0,
	PrefetchWorkers:                 2,
	NativeChainID:                   2029,
	EVMChainID:                      2030,
	BlockGasLimit:                   blockGasLimit,
	BaseBlockReward:                 baseBlockReward,
	SecondaryRewardRatio:            secondaryRewardRatio,
	InternalContracts:               defaultInternalContracts,
	ArenaExpiry:                     arenaExpiry,
}

// ParamsByName returns the parameters of the network with the given name
func ParamsByName(name string) (*Params, error) {
	for _, params := range []*Params{&MainnetParams, &TestnetParams, &DevnetParams, &SimnetParams} {
		if params.Name == name {
			return params, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownNetwork, "network %s", name)
}

// ChainIDForSpace returns the chain id transactions of the given space are
// signed for
func (p *Params) ChainIDForSpace(space externalapi.TransactionSpace) uint32 {
	if space == externalapi.SpaceEthereum {
		return p.EVMChainID
	}
	return p.NativeChainID
}

// Validate checks the parameters for internal consistency
func (p *Params) Validate() error {
	if p.DifficultyAdjustmentEpochPeriod == 0 {
		return errors.Errorf("%s: DifficultyAdjustmentEpochPeriod must be positive", p.Name)
	}
	if p.DifficultyAdjustmentFactor <= 0 {
		return errors.Errorf("%s: DifficultyAdjustmentFactor must be positive", p.Name)
	}
	if p.InitialDifficulty == nil || p.InitialDifficulty.Sign() <= 0 {
		return errors.Errorf("%s: InitialDifficulty must be positive", p.Name)
	}
	if p.DifficultyScale == nil || p.DifficultyScale.Sign() <= 0 {
		return errors.Errorf("%s: DifficultyScale must be positive", p.Name)
	}
	if p.MaxExecutedBlocksPerEpoch <= 0 {
		return errors.Errorf("%s: MaxExecutedBlocksPerEpoch must be positive", p.Name)
	}
	if p.EraEpochCount == 0 {
		return errors.Errorf("%s: EraEpochCount must be positive", p.Name)
	}
	if p.GenesisBlock == nil || !p.GenesisBlock.Header.IsGenesis() {
		return errors.Errorf("%s: the genesis block must have no parent", p.Name)
	}
	log.Debugf("Validated the parameters of %s", p.Name)
	return nil
}
