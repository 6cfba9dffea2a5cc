package difficultymanager

import (
	"math/big"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/difficultycache"
	"github.com/pkg/errors"
)

var (
	blendWeightCurrent  = big.NewInt(4)
	blendWeightExpected = big.NewInt(1)
	blendDenominator    = big.NewInt(5)
)

// difficultyManager retargets the proof-of-work difficulty once every
// adjustment period, from the number of blocks the period merged and the
// time it took.
type difficultyManager struct {
	arena             model.GraphArena
	epochSizeProvider model.EpochSizeProvider
	cache             *difficultycache.DifficultyCache

	adjustmentPeriod          uint64
	initialDifficulty         *big.Int
	adjustmentFactor          *big.Int
	difficultyScale           *big.Int
	targetBlockIntervalMillis *big.Int
	skipAdjustment            bool
}

// New instantiates a new DifficultyManager
func New(
	arena model.GraphArena,
	epochSizeProvider model.EpochSizeProvider,
	cache *difficultycache.DifficultyCache,
	adjustmentPeriod uint64,
	initialDifficulty *big.Int,
	adjustmentFactor int64,
	difficultyScale *big.Int,
	targetBlockIntervalMillis int64,
	skipAdjustment bool) model.DifficultyManager {

	return &difficultyManager{
		arena:                     arena,
		epochSizeProvider:         epochSizeProvider,
		cache:                     cache,
		adjustmentPeriod:          adjustmentPeriod,
		initialDifficulty:         new(big.Int).Set(initialDifficulty),
		adjustmentFactor:          big.NewInt(adjustmentFactor),
		difficultyScale:           new(big.Int).Set(difficultyScale),
		targetBlockIntervalMillis: big.NewInt(targetBlockIntervalMillis),
		skipAdjustment:            skipAdjustment,
	}
}

// ExpectedDifficulty returns the difficulty a child of parentHash must
// declare: the initial difficulty during the first adjustment period, and
// the target computed at the last period boundary on its chain afterwards.
func (dm *difficultyManager) ExpectedDifficulty(parentHash *externalapi.DomainHash) (*big.Int, error) {
	parent, err := dm.readyIndex(parentHash)
	if err != nil {
		return nil, err
	}

	height := dm.arena.Height(parent) + 1
	if height < dm.adjustmentPeriod {
		return new(big.Int).Set(dm.initialDifficulty), nil
	}
	boundaryHeight := (height/dm.adjustmentPeriod)*dm.adjustmentPeriod - 1
	boundary, err := dm.arena.Ancestor(parent, boundaryHeight)
	if err != nil {
		return nil, err
	}
	return dm.targetDifficulty(boundary)
}

// TargetDifficulty returns the difficulty of the adjustment period that
// follows the boundary block boundaryHash
func (dm *difficultyManager) TargetDifficulty(boundaryHash *externalapi.DomainHash) (*big.Int, error) {
	boundary, err := dm.readyIndex(boundaryHash)
	if err != nil {
		return nil, err
	}
	return dm.targetDifficulty(boundary)
}

func (dm *difficultyManager) readyIndex(blockHash *externalapi.DomainHash) (model.ArenaIndex, error) {
	index, ok := dm.arena.Index(blockHash)
	if !ok {
		return model.NoIndex, errors.Errorf("block %s is unknown", blockHash)
	}
	if status := dm.arena.Status(index); status != externalapi.StatusGraphReady {
		return model.NoIndex, errors.Errorf("block %s has status %s", blockHash, status)
	}
	return index, nil
}

func (dm *difficultyManager) targetDifficulty(boundary model.ArenaIndex) (*big.Int, error) {
	boundaryHash := dm.arena.Hash(boundary)
	if cached, ok := dm.cache.Get(boundaryHash); ok {
		return cached, nil
	}

	next, err := dm.calculateTargetDifficulty(boundary)
	if err != nil {
		return nil, err
	}
	dm.cache.Add(boundaryHash, next)
	log.Debugf("Target difficulty after %s is %s", boundaryHash, next)
	return next, nil
}

func (dm *difficultyManager) calculateTargetDifficulty(boundary model.ArenaIndex) (*big.Int, error) {
	if dm.skipAdjustment {
		return new(big.Int).Set(dm.initialDifficulty), nil
	}

	window, err := dm.blockWindow(boundary)
	if err != nil {
		return nil, err
	}
	blockCount := window.blockCount()
	timespan := window.timespan()
	if timespan <= 0 || blockCount <= 1 {
		return new(big.Int).Set(dm.initialDifficulty), nil
	}

	current := dm.arena.Header(boundary).Difficulty
	if current == nil {
		return nil, errors.Errorf("block %s carries no difficulty", dm.arena.Hash(boundary))
	}

	// expected = current * blockCount * targetInterval / (timespan * scale)
	expected := new(big.Int).Mul(current, new(big.Int).SetUint64(blockCount))
	expected.Mul(expected, dm.targetBlockIntervalMillis)
	divisor := new(big.Int).Mul(big.NewInt(timespan), dm.difficultyScale)
	expected.Quo(expected, divisor)

	next := new(big.Int).Mul(current, blendWeightCurrent)
	next.Quo(next, blendDenominator)
	expectedPart := new(big.Int).Mul(expected, blendWeightExpected)
	next.Add(next, expectedPart.Quo(expectedPart, blendDenominator))

	lowerBound, upperBound := dm.adjustmentBounds(current)
	if next.Cmp(lowerBound) < 0 {
		next.Set(lowerBound)
	}
	if next.Cmp(upperBound) > 0 {
		next.Set(upperBound)
	}
	if next.Cmp(dm.initialDifficulty) < 0 {
		next.Set(dm.initialDifficulty)
	}
	return next, nil
}

// adjustmentBounds returns the range a single retarget may move current into
func (dm *difficultyManager) adjustmentBounds(current *big.Int) (lowerBound, upperBound *big.Int) {
	step := new(big.Int).Quo(current, dm.adjustmentFactor)
	return new(big.Int).Sub(current, step), new(big.Int).Add(current, step)
}
