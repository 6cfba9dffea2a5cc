package blockvalidator

import (
	"time"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

// blockValidator exposes a set of validation classes, after which
// it's possible to determine whether either a block is valid
type blockValidator struct {
	maxReferees                 int
	timestampDeviationTolerance time.Duration
	blockGasLimit               uint64
	genesisHash                 *externalapi.DomainHash

	arena                model.GraphArena
	difficultyManager    model.DifficultyManager
	transactionValidator model.TransactionValidator
	powVerifier          model.PoWVerifier

	now func() time.Time
}

// New instantiates a new BlockValidator
func New(
	maxReferees int,
	timestampDeviationTolerance time.Duration,
	blockGasLimit uint64,
	genesisHash *externalapi.DomainHash,

	arena model.GraphArena,
	difficultyManager model.DifficultyManager,
	transactionValidator model.TransactionValidator,
	powVerifier model.PoWVerifier,
) model.BlockValidator {

	return &blockValidator{
		maxReferees:                 maxReferees,
		timestampDeviationTolerance: timestampDeviationTolerance,
		blockGasLimit:               blockGasLimit,
		genesisHash:                 genesisHash,

		arena:                arena,
		difficultyManager:    difficultyManager,
		transactionValidator: transactionValidator,
		powVerifier:          powVerifier,

		now: time.Now,
	}
}
