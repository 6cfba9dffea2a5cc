package pivotselector

import (
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// OnBlockReady re-evaluates the pivot chain after index became
// graph-ready.
//
// Only the weights of the ancestors of index changed, so the pivot above
// the deepest pivot ancestor f of index stays optimal. If f is the tip the
// pivot is extended, otherwise the child of f leading to index is compared
// with the current pivot block after f and, if it wins, the pivot is
// truncated to f and extended again.
func (ps *pivotSelector) OnBlockReady(index model.ArenaIndex) (*model.PivotUpdate, error) {
	ps.lock.Lock()
	defer ps.lock.Unlock()

	if ps.arena.Status(index) != externalapi.StatusGraphReady {
		return nil, errors.Errorf("block %s is not graph-ready", ps.arena.Hash(index))
	}
	if _, ok := ps.pivotPos[index]; ok {
		return nil, errors.Errorf("block %s is already on the pivot chain", ps.arena.Hash(index))
	}

	previousCheckpoints := ps.checkpoints
	update := &model.PivotUpdate{}

	if ps.arena.Parent(index) == model.NoIndex {
		if len(ps.pivot) != 0 {
			return nil, errors.Errorf("genesis %s became ready twice", ps.arena.Hash(index))
		}
		ps.appendPivot(index, update)
		ps.extend(update)
		ps.refreshCheckpoints(previousCheckpoints, update)
		return update, nil
	}
	if len(ps.pivot) == 0 {
		return nil, errors.Errorf("block %s became ready before the genesis", ps.arena.Hash(index))
	}

	forkPoint, branchChild := ps.deepestPivotAncestor(index)
	forkPosition := ps.pivotPos[forkPoint]
	update.ForkHeight = forkPosition

	if forkPosition == uint64(len(ps.pivot)-1) {
		ps.extend(update)
	} else {
		incumbent := ps.pivot[forkPosition+1]
		if ps.IsEligible(branchChild) &&
			ps.heavier(branchChild, ps.Weight(branchChild), incumbent, ps.Weight(incumbent)) {

			ps.truncate(forkPosition, update)
			ps.extend(update)
		}
	}

	ps.refreshCheckpoints(previousCheckpoints, update)
	if update.IsReorg() {
		log.Infof("Pivot reorg at height %d: %d blocks removed, %d added",
			update.ForkHeight, len(update.Removed), len(update.Added))
	}
	return update, nil
}

// deepestPivotAncestor walks the parent chain of index up to the first
// pivot block. It returns that block and its child on the walked path.
func (ps *pivotSelector) deepestPivotAncestor(index model.ArenaIndex) (forkPoint model.ArenaIndex, branchChild model.ArenaIndex) {
	branchChild = index
	for {
		parent := ps.arena.Parent(branchChild)
		if parent == model.NoIndex {
			panic(errors.Errorf("the parent chain of %s does not meet the pivot chain", ps.arena.Hash(index)))
		}
		if _, ok := ps.pivotPos[parent]; ok {
			return parent, branchChild
		}
		branchChild = parent
	}
}

// extend greedily appends the heaviest child of the tip until the tip has
// no eligible child
func (ps *pivotSelector) extend(update *model.PivotUpdate) {
	for {
		next := ps.heaviestChild(ps.pivot[len(ps.pivot)-1])
		if next == model.NoIndex {
			return
		}
		ps.appendPivot(next, update)
	}
}

func (ps *pivotSelector) appendPivot(index model.ArenaIndex, update *model.PivotUpdate) {
	position := uint64(len(ps.pivot))
	ps.pivot = append(ps.pivot, index)
	ps.pivotPos[index] = position

	members := ps.collectEpoch(index, position)
	ps.epochs = append(ps.epochs, members)
	update.Added = append(update.Added, ps.arena.Hash(index))

	log.Tracef("Pivot block %s at height %d with %d epoch members", ps.arena.Hash(index), position, len(members))
}

// truncate removes every pivot block above forkPosition and releases the
// epoch memberships they held
func (ps *pivotSelector) truncate(forkPosition uint64, update *model.PivotUpdate) {
	for position := forkPosition + 1; position < uint64(len(ps.pivot)); position++ {
		removed := ps.pivot[position]
		for _, member := range ps.epochs[position] {
			delete(ps.epochOf, member)
		}
		delete(ps.pivotPos, removed)
		update.Removed = append(update.Removed, ps.arena.Hash(removed))
	}
	ps.pivot = ps.pivot[:forkPosition+1]
	ps.epochs = ps.epochs[:forkPosition+1]
}
