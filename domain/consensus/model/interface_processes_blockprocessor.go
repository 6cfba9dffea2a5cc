package model

import "github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"

// BlockProcessor is responsible for processing incoming blocks
type BlockProcessor interface {
	ValidateAndInsertBlock(block *externalapi.DomainBlock) (*BlockProcessingResult, error)

	// LoadBlocks re-inserts every persisted block in its original
	// insertion order. It returns the number of blocks loaded.
	LoadBlocks() (int, error)
}

// BlockProcessingResult is what the block processor reports for one
// submitted block.
type BlockProcessingResult struct {
	Index        ArenaIndex
	NewlyReady   []ArenaIndex
	PivotUpdates []*PivotUpdate
}
