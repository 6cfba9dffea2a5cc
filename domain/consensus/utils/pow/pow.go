package pow

import (
	"math/big"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/consensushashing"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/hashes"
)

// maxTarget is 2^256, the size of the proof-of-work hash space
var maxTarget = new(big.Int).Lsh(big.NewInt(1), 256)

// CalculateProofOfWorkValue returns the proof-of-work value of the header
// as a big-endian integer
func CalculateProofOfWorkValue(header *externalapi.DomainBlockHeader) *big.Int {
	writer := hashes.NewPoWHashWriter()
	writer.InfallibleWrite(consensushashing.HeaderHash(header).ByteSlice())
	return new(big.Int).SetBytes(writer.Finalize().ByteSlice())
}

// TargetFromDifficulty returns 2^256 / difficulty. A block's proof-of-work
// value must be strictly below its target.
func TargetFromDifficulty(difficulty *big.Int) *big.Int {
	if difficulty == nil || difficulty.Sign() <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Div(maxTarget, difficulty)
}

// CheckProofOfWork checks whether the header's proof-of-work value is below
// the target of its declared difficulty
func CheckProofOfWork(header *externalapi.DomainBlockHeader) bool {
	return CalculateProofOfWorkValue(header).Cmp(TargetFromDifficulty(header.Difficulty)) < 0
}

type verifier struct {
	skip bool
}

// NewVerifier returns a model.PoWVerifier. A skipping verifier accepts any
// header and is meant for simulation networks.
func NewVerifier(skip bool) model.PoWVerifier {
	return &verifier{skip: skip}
}

func (v *verifier) CheckProofOfWork(header *externalapi.DomainBlockHeader) bool {
	if v.skip {
		return true
	}
	return CheckProofOfWork(header)
}

// SolveBlock increments the header's nonce until it satisfies its declared
// difficulty. It is meant for tests and simulation networks only.
func SolveBlock(header *externalapi.DomainBlockHeader, maxAttempts uint64) bool {
	target := TargetFromDifficulty(header.Difficulty)
	for attempt := uint64(0); attempt < maxAttempts; attempt++ {
		if CalculateProofOfWorkValue(header).Cmp(target) < 0 {
			return true
		}
		header.Nonce++
	}
	return false
}
