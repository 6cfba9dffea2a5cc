package model

import "github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"

// StateReader reads committed state.
type StateReader interface {
	ReadState(key []byte) ([]byte, bool, error)
}

// StateWrite is a single key write. A nil Value deletes the key.
type StateWrite struct {
	Key   []byte
	Value []byte
}

// StateView is a read-only view of the state right after some epoch was
// committed.
type StateView interface {
	StateReader

	// RootAfter returns the state root that applying writes on top of the
	// view would produce. The view itself is left untouched.
	RootAfter(writes []*StateWrite) (*externalapi.DomainHash, error)
}

// StateStore is the checkpointed key-value state backend. Writes are staged
// and become part of the state only after Commit, which also produces the
// new state root and an undo record for the committed epoch.
type StateStore interface {
	Store
	ReadState(dbContext DBReader, stagingArea *StagingArea, key []byte) ([]byte, bool, error)
	WriteState(stagingArea *StagingArea, key, value []byte)
	DeleteState(stagingArea *StagingArea, key []byte)
	Commit(dbContext DBReader, stagingArea *StagingArea, epochHash *externalapi.DomainHash) (*externalapi.DomainHash, error)
	IsStaged(stagingArea *StagingArea) bool

	// Tip returns the epoch whose commit produced the current state, or nil
	// for the empty state.
	Tip(dbContext DBReader, stagingArea *StagingArea) (*externalapi.DomainHash, error)
	StateRoot(dbContext DBReader, stagingArea *StagingArea) (*externalapi.DomainHash, error)

	// View returns the state as it was right after epochHash was committed.
	// A nil epochHash denotes the empty state.
	View(dbContext DBReader, epochHash *externalapi.DomainHash) (StateView, error)

	// RevertTo undoes committed epochs, newest first, until epochHash is the
	// tip. A nil epochHash reverts to the empty state.
	RevertTo(dbContext DBReader, stagingArea *StagingArea, epochHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
}
