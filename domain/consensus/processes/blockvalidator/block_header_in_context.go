package blockvalidator

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/ruleerrors"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/logger"
	"github.com/pkg/errors"
)

// ValidateHeaderInContext validates a block whose dependencies are all
// graph-ready against its parent
func (v *blockValidator) ValidateHeaderInContext(index model.ArenaIndex) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateHeaderInContext")
	defer onEnd()

	parent := v.arena.Parent(index)
	if parent == model.NoIndex {
		return nil
	}
	header := v.arena.Header(index)

	expectedHeight := v.arena.Height(parent) + 1
	if header.Height != expectedHeight {
		return errors.Wrapf(ruleerrors.ErrWrongParentHeight, "block height is %d, but its parent is at "+
			"height %d", header.Height, expectedHeight-1)
	}

	expectedDifficulty, err := v.difficultyManager.ExpectedDifficulty(header.ParentHash)
	if err != nil {
		return err
	}
	if header.Difficulty.Cmp(expectedDifficulty) != 0 {
		return errors.Wrapf(ruleerrors.ErrBadDifficulty, "block difficulty of %s is not the expected value "+
			"of %s", header.Difficulty, expectedDifficulty)
	}
	return nil
}
