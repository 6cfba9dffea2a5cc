package consensus

import (
	"sync"

	consensusdatabase "github.com/Hoosat-Oy/treegraphd/domain/consensus/database"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/datastructures/blockstatusstore"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/datastructures/blockstore"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/datastructures/consensusstatestore"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/datastructures/epochstore"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/datastructures/executionresultstore"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/datastructures/receiptstore"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/datastructures/statestore"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/datastructures/transactionindexstore"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/blockprocessor"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/blockvalidator"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/difficultymanager"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/epochexecutor"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/executionmanager"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/grapharena"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/pivotselector"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/rewardmanager"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/transactionprocessor"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/transactionvalidator"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/difficultycache"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/outliercache"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/pow"
	"github.com/Hoosat-Oy/treegraphd/domain/dagconfig"
	infrastructuredatabase "github.com/Hoosat-Oy/treegraphd/infrastructure/db/database"
)

const (
	defaultBlockCacheSize   = 512
	defaultStatusCacheSize  = 10_000
	defaultStateCacheSize   = 100_000
	defaultReceiptCacheSize = 1_000
	defaultIndexCacheSize   = 10_000
	defaultResultCacheSize  = 1_000
	recentResultsCacheSize  = 128
)

// Factory instantiates new Consensuses
type Factory interface {
	NewConsensus(params *dagconfig.Params, db infrastructuredatabase.Database,
		recycler model.TransactionRecycler) (externalapi.Consensus, error)

	SetCacheSizeFactor(factor float64)
	SetPreallocateCaches(preallocate bool)
}

type factory struct {
	cacheSizeFactor   float64
	preallocateCaches bool
}

// NewFactory creates a new Consensus factory
func NewFactory() Factory {
	return &factory{cacheSizeFactor: 1}
}

// SetCacheSizeFactor scales every store cache. Tests use small factors.
func (f *factory) SetCacheSizeFactor(factor float64) {
	f.cacheSizeFactor = factor
}

func (f *factory) SetPreallocateCaches(preallocate bool) {
	f.preallocateCaches = preallocate
}

func (f *factory) cacheSize(size int) int {
	scaled := int(float64(size) * f.cacheSizeFactor)
	if scaled < 1 {
		return 1
	}
	return scaled
}

// NewConsensus wires a new consensus over db and rebuilds its in-memory
// state from whatever db already holds
func (f *factory) NewConsensus(params *dagconfig.Params, db infrastructuredatabase.Database,
	recycler model.TransactionRecycler) (externalapi.Consensus, error) {

	err := params.Validate()
	if err != nil {
		return nil, err
	}

	dbManager := consensusdatabase.New(db)
	prefixBucket := consensusdatabase.MakeBucket([]byte(params.Name))

	// Data Structures
	blockStore, err := blockstore.New(dbManager, prefixBucket, f.cacheSize(defaultBlockCacheSize), f.preallocateCaches)
	if err != nil {
		return nil, err
	}
	blockStatusStore := blockstatusstore.New(prefixBucket, f.cacheSize(defaultStatusCacheSize), f.preallocateCaches)
	consensusStateStore := consensusstatestore.New(prefixBucket)
	stateStore, err := statestore.New(prefixBucket, f.cacheSize(defaultStateCacheSize))
	if err != nil {
		return nil, err
	}
	receiptStore, err := receiptstore.New(prefixBucket, f.cacheSize(defaultReceiptCacheSize))
	if err != nil {
		return nil, err
	}
	epochStore, err := epochstore.New(prefixBucket, f.cacheSize(defaultResultCacheSize))
	if err != nil {
		return nil, err
	}
	transactionIndexStore := transactionindexstore.New(prefixBucket, f.cacheSize(defaultIndexCacheSize), f.preallocateCaches)
	executionResultStore := executionresultstore.New(prefixBucket, f.cacheSize(defaultResultCacheSize), f.preallocateCaches)

	// Processes
	arena := grapharena.New()
	pivotSelector := pivotselector.New(arena,
		outliercache.New(params.OutlierCacheCapacity, params.MaxOutlierSize, params.OutlierSequenceWindow),
		params.EraEpochCount)
	difficultyManager := difficultymanager.New(
		arena,
		pivotSelector,
		difficultycache.New(params.DifficultyCacheCapacity),
		params.DifficultyAdjustmentEpochPeriod,
		params.InitialDifficulty,
		params.DifficultyAdjustmentFactor,
		params.DifficultyScale,
		params.TargetBlockIntervalMillis,
		params.SkipDifficultyAdjustment)
	blockValidator := blockvalidator.New(
		params.MaxReferees,
		params.TimestampDeviationTolerance,
		params.BlockGasLimit,
		params.GenesisHash,
		arena,
		difficultyManager,
		transactionvalidator.New(params.BlockGasLimit),
		pow.NewVerifier(params.SkipProofOfWork))
	blockProcessor := blockprocessor.New(
		dbManager,
		blockValidator,
		arena,
		pivotSelector,
		blockStore,
		blockStatusStore,
		consensusStateStore)
	epochExecutor, err := epochexecutor.New(
		dbManager,
		params,
		stateStore,
		receiptStore,
		transactionIndexStore,
		epochStore,
		executionResultStore,
		transactionprocessor.New(dagconfig.CrossSpaceCallAddress),
		rewardmanager.New(params.BaseBlockReward, params.SecondaryRewardRatio),
		recycler,
		recentResultsCacheSize)
	if err != nil {
		return nil, err
	}
	executionManager := executionmanager.New(
		dbManager,
		arena,
		pivotSelector,
		epochExecutor,
		blockStore,
		stateStore,
		receiptStore,
		transactionIndexStore,
		epochStore,
		executionResultStore,
		params.ExecutionDeferDepth,
		params.MaxExecutedBlocksPerEpoch)

	c := &consensus{
		lock:            &sync.RWMutex{},
		executionLock:   &sync.RWMutex{},
		databaseContext: dbManager,

		arena:             arena,
		pivotSelector:     pivotSelector,
		difficultyManager: difficultyManager,
		blockProcessor:    blockProcessor,
		executionManager:  executionManager,
		epochExecutor:     epochExecutor,

		blockStore:            blockStore,
		blockStatusStore:      blockStatusStore,
		consensusStateStore:   consensusStateStore,
		stateStore:            stateStore,
		receiptStore:          receiptStore,
		transactionIndexStore: transactionIndexStore,
		executionResultStore:  executionResultStore,
	}

	err = c.init(params.GenesisBlock)
	if err != nil {
		return nil, err
	}
	c.executionWorker = newExecutionWorker(c.executePending)
	c.executionWorker.start()
	return c, nil
}
