package difficultymanager

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

type difficultyBlock struct {
	timeInMilliseconds int64
	epochSize          uint64
	hash               *externalapi.DomainHash
}

// blockWindow holds the chain blocks of one adjustment period, the block
// the period starts after first and the boundary block last.
type blockWindow []difficultyBlock

func (dm *difficultyManager) getDifficultyBlock(index model.ArenaIndex, withEpochSize bool) (difficultyBlock, error) {
	block := difficultyBlock{
		timeInMilliseconds: dm.arena.Header(index).TimeInMilliseconds,
		hash:               dm.arena.Hash(index),
	}
	if withEpochSize {
		epochSize, err := dm.epochSizeProvider.EpochSize(index)
		if err != nil {
			return difficultyBlock{}, err
		}
		block.epochSize = epochSize
	}
	return block, nil
}

// blockWindow walks back one adjustment period from boundary. The first
// period has no block before it, so its window starts at the genesis.
func (dm *difficultyManager) blockWindow(boundary model.ArenaIndex) (blockWindow, error) {
	boundaryHeight := dm.arena.Height(boundary)
	startHeight := uint64(0)
	if boundaryHeight >= dm.adjustmentPeriod {
		startHeight = boundaryHeight - dm.adjustmentPeriod
	}

	window := make(blockWindow, boundaryHeight-startHeight+1)
	current := boundary
	for i := len(window) - 1; i >= 0; i-- {
		if current == model.NoIndex {
			return nil, errors.Errorf("the parent chain of %s ends before height %d",
				dm.arena.Hash(boundary), startHeight)
		}
		block, err := dm.getDifficultyBlock(current, i > 0)
		if err != nil {
			return nil, err
		}
		window[i] = block
		current = dm.arena.Parent(current)
	}
	return window, nil
}

// blockCount returns the number of blocks merged by the window, not
// counting the block it starts after
func (window blockWindow) blockCount() uint64 {
	var count uint64
	for _, block := range window[1:] {
		count += block.epochSize
	}
	return count
}

func (window blockWindow) timespan() int64 {
	return window[len(window)-1].timeInMilliseconds - window[0].timeInMilliseconds
}
