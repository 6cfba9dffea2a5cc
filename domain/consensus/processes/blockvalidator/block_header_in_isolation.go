package blockvalidator

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/ruleerrors"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/consensushashing"
	"github.com/Hoosat-Oy/treegraphd/infrastructure/logger"
	"github.com/pkg/errors"
)

// ValidateHeaderInIsolation validates a block in isolation from the current
// consensus state
func (v *blockValidator) ValidateHeaderInIsolation(block *externalapi.DomainBlock) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateHeaderInIsolation")
	defer onEnd()

	header := block.Header
	err := v.checkGenesis(header)
	if err != nil {
		return err
	}

	err = v.checkReferees(header)
	if err != nil {
		return err
	}

	err = v.checkBlockTimestampInIsolation(header)
	if err != nil {
		return err
	}

	err = v.checkProofOfWork(header)
	if err != nil {
		return err
	}

	return v.checkBlockBodyInIsolation(block)
}

func (v *blockValidator) checkGenesis(header *externalapi.DomainBlockHeader) error {
	if !header.IsGenesis() {
		return nil
	}
	hash := consensushashing.HeaderHash(header)
	if !hash.Equal(v.genesisHash) {
		return errors.Wrapf(ruleerrors.ErrUnexpectedGenesis, "block %s has no parent", hash)
	}
	return nil
}

func (v *blockValidator) checkReferees(header *externalapi.DomainBlockHeader) error {
	if len(header.RefereeHashes) > v.maxReferees {
		return errors.Wrapf(ruleerrors.ErrTooManyReferees, "block header has %d referees, but the maximum allowed amount "+
			"is %d", len(header.RefereeHashes), v.maxReferees)
	}

	seen := make(map[externalapi.DomainHash]struct{}, len(header.RefereeHashes))
	for _, referee := range header.RefereeHashes {
		if header.ParentHash != nil && referee.Equal(header.ParentHash) {
			return errors.Wrapf(ruleerrors.ErrParentIsReferee, "parent %s is also a referee", referee)
		}
		if _, ok := seen[*referee]; ok {
			return errors.Wrapf(ruleerrors.ErrDuplicateReferee, "referee %s appears more than once", referee)
		}
		seen[*referee] = struct{}{}
	}
	return nil
}

func (v *blockValidator) checkBlockTimestampInIsolation(header *externalapi.DomainBlockHeader) error {
	maxCurrentTime := v.now().Add(v.timestampDeviationTolerance).UnixMilli()
	if header.TimeInMilliseconds > maxCurrentTime {
		return errors.Wrapf(
			ruleerrors.ErrTimeTooNew, "The block timestamp %d is in the future.", header.TimeInMilliseconds)
	}
	return nil
}

func (v *blockValidator) checkProofOfWork(header *externalapi.DomainBlockHeader) error {
	if header.Difficulty == nil || header.Difficulty.Sign() <= 0 {
		return errors.Wrapf(ruleerrors.ErrNilDifficulty, "block difficulty must be positive")
	}
	if !v.powVerifier.CheckProofOfWork(header) {
		return errors.Wrapf(ruleerrors.ErrInvalidPoW, "block has invalid proof of work")
	}
	return nil
}
