package grapharena

import (
	"time"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// Insert adds a validated-in-isolation header to the arena and links it to
// its parent and referees.
//
// Dependencies the arena never heard of are inserted as Requested
// placeholders, and the returned error then lists them. The block itself
// is inserted in any case and waits in StatusReceived. A block that
// depends on a PartialInvalid block is inserted as PartialInvalid.
func (ga *graphArena) Insert(header *externalapi.DomainBlockHeader, blockHash *externalapi.DomainHash,
	sequenceNumber uint64) (model.ArenaIndex, error) {

	ga.lock.Lock()
	defer ga.lock.Unlock()

	now := ga.now()

	index, exists := ga.hashToIndex[*blockHash]
	if exists {
		existing := ga.nodes[index]
		if existing.status != externalapi.StatusRequested {
			if !existing.header.Equal(header) {
				return index, errors.Wrapf(ruleerrors.ErrHashCollision, "block %s", blockHash)
			}
			return index, errors.Wrapf(ruleerrors.ErrDuplicateBlock, "block %s", blockHash)
		}
	}

	if header.IsGenesis() && ga.genesis != model.NoIndex {
		return model.NoIndex, errors.Wrapf(ruleerrors.ErrUnexpectedGenesis,
			"block %s has no parent but the genesis is %s", blockHash, ga.nodes[ga.genesis].hash)
	}

	if !exists {
		index = ga.allocate(newPlaceholder(blockHash, now))
	}
	n := ga.nodes[index]
	n.header = header
	n.sequenceNumber = sequenceNumber
	n.height = header.Height
	n.lastUpdate = now

	if header.IsGenesis() {
		ga.genesis = index
	} else {
		n.parent = ga.dependencyIndex(header.ParentHash, now)
		ga.nodes[n.parent].children.add(index)
	}

	n.referees = make([]model.ArenaIndex, 0, len(header.RefereeHashes))
	seenReferees := make(map[externalapi.DomainHash]struct{}, len(header.RefereeHashes))
	for _, refereeHash := range header.RefereeHashes {
		if _, ok := seenReferees[*refereeHash]; ok {
			continue
		}
		if header.ParentHash != nil && refereeHash.Equal(header.ParentHash) {
			continue
		}
		seenReferees[*refereeHash] = struct{}{}

		refereeIndex := ga.dependencyIndex(refereeHash, now)
		n.referees = append(n.referees, refereeIndex)
		ga.nodes[refereeIndex].referrers.add(index)
	}

	var missing []*externalapi.DomainHash
	hasInvalidDependency := false
	n.pendingCount = 0
	for _, dependency := range n.dependencies() {
		dependencyNode := ga.nodes[dependency]
		switch dependencyNode.status {
		case externalapi.StatusGraphReady:
		case externalapi.StatusPartialInvalid:
			hasInvalidDependency = true
			n.pendingCount++
		case externalapi.StatusRequested:
			missing = append(missing, dependencyNode.hash)
			n.pendingCount++
		default:
			n.pendingCount++
		}
	}

	n.status = externalapi.StatusReceived
	if hasInvalidDependency {
		invalidated := ga.markInvalid(index)
		log.Debugf("Block %s depends on an invalid block, %d blocks marked invalid", blockHash, len(invalidated))
		return index, errors.Wrapf(ruleerrors.ErrInvalidAncestor, "block %s", blockHash)
	}
	if len(missing) > 0 {
		log.Debugf("Block %s is missing %d dependencies", blockHash, len(missing))
		return index, ruleerrors.NewErrMissingParents(missing)
	}
	return index, nil
}

// dependencyIndex returns the index of hash, inserting a Requested
// placeholder if the arena does not know it.
func (ga *graphArena) dependencyIndex(hash *externalapi.DomainHash, now time.Time) model.ArenaIndex {
	if index, ok := ga.hashToIndex[*hash]; ok {
		return index
	}
	return ga.allocate(newPlaceholder(hash, now))
}
