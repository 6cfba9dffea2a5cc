package blockprocessor

import (
	"sync"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
)

// blockProcessor is responsible for processing incoming blocks
// and creating blocks from the current state
type blockProcessor struct {
	lock sync.Mutex

	databaseContext model.DBManager
	blockValidator  model.BlockValidator
	arena           model.GraphArena
	pivotSelector   model.PivotSelector

	blockStore          model.BlockStore
	blockStatusStore    model.BlockStatusStore
	consensusStateStore model.ConsensusStateStore

	nextSequenceNumber uint64
}

// New instantiates a new BlockProcessor
func New(
	databaseContext model.DBManager,
	blockValidator model.BlockValidator,
	arena model.GraphArena,
	pivotSelector model.PivotSelector,

	blockStore model.BlockStore,
	blockStatusStore model.BlockStatusStore,
	consensusStateStore model.ConsensusStateStore,
) model.BlockProcessor {

	return &blockProcessor{
		databaseContext: databaseContext,
		blockValidator:  blockValidator,
		arena:           arena,
		pivotSelector:   pivotSelector,

		blockStore:          blockStore,
		blockStatusStore:    blockStatusStore,
		consensusStateStore: consensusStateStore,
	}
}
