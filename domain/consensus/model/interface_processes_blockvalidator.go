package model

import "github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"

// BlockValidator exposes a set of validation classes, after which
// it's possible to determine whether a block is valid
type BlockValidator interface {
	ValidateHeaderInIsolation(block *externalapi.DomainBlock) error
	ValidateHeaderInContext(index ArenaIndex) error
}
