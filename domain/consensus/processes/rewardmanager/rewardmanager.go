package rewardmanager

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/accounts"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// SecondaryRewardRatioDenominator is the denominator of the secondary
// reward ratio, which is expressed in basis points
const SecondaryRewardRatioDenominator = 10_000

type rewardManager struct {
	baseBlockReward      *uint256.Int
	secondaryRewardRatio *uint256.Int
}

// New instantiates a new RewardDistributor
func New(baseBlockReward *uint256.Int, secondaryRewardRatio uint64) model.RewardDistributor {
	return &rewardManager{
		baseBlockReward:      new(uint256.Int).Set(baseBlockReward),
		secondaryRewardRatio: uint256.NewInt(secondaryRewardRatio),
	}
}

// DistributeRewards credits the author of every executed block of the
// epoch with the base block reward, the fees its transactions paid and the
// secondary reward on top of those fees.
func (rm *rewardManager) DistributeRewards(state model.StateAccessor, info *model.EpochRewardInfo) ([]*uint256.Int, error) {
	secondaryRewards := make([]*uint256.Int, len(info.Blocks))
	for i, block := range info.Blocks {
		secondaryReward := SecondaryReward(block.Fees, rm.secondaryRewardRatio)

		total := new(uint256.Int).Set(rm.baseBlockReward)
		if _, overflow := total.AddOverflow(total, block.Fees); overflow {
			return nil, errors.Errorf("reward of block %s overflows", block.Hash)
		}
		if _, overflow := total.AddOverflow(total, secondaryReward); overflow {
			return nil, errors.Errorf("reward of block %s overflows", block.Hash)
		}
		err := accounts.AddBalance(state, externalapi.SpaceNative, block.Author, total)
		if err != nil {
			return nil, err
		}
		secondaryRewards[i] = secondaryReward
	}

	log.Tracef("Distributed rewards of epoch %d (%s) to %d blocks, median gas price %s",
		info.EpochNumber, info.EpochHash, len(info.Blocks), info.MedianGasPrice)
	return secondaryRewards, nil
}

// SecondaryReward returns fees * ratio / SecondaryRewardRatioDenominator
func SecondaryReward(fees *uint256.Int, ratio *uint256.Int) *uint256.Int {
	if fees == nil {
		return new(uint256.Int)
	}
	secondaryReward := new(uint256.Int).Mul(fees, ratio)
	return secondaryReward.Div(secondaryReward, uint256.NewInt(SecondaryRewardRatioDenominator))
}
