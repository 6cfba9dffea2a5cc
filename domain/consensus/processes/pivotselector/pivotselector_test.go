package pivotselector

import (
	"math/big"
	"testing"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/grapharena"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/ruleerrors"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/outliercache"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

type testDAG struct {
	t        *testing.T
	arena    model.GraphArena
	cache    *outliercache.OutlierCache
	selector *pivotSelector
	sequence uint64
	updates  []*model.PivotUpdate
}

func newTestDAG(t *testing.T, eraEpochCount uint64) *testDAG {
	arena := grapharena.New()
	cache := outliercache.New(100, 50, 1000)
	return &testDAG{
		t:        t,
		arena:    arena,
		cache:    cache,
		selector: New(arena, cache, eraEpochCount).(*pivotSelector),
	}
}

func testHash(i byte) *externalapi.DomainHash {
	var arr [externalapi.DomainHashSize]byte
	arr[0] = i
	return externalapi.NewDomainHashFromByteArray(&arr)
}

func testHeader(parent *externalapi.DomainHash, timeInMilliseconds int64, referees ...*externalapi.DomainHash) *externalapi.DomainBlockHeader {
	return &externalapi.DomainBlockHeader{
		Version:            1,
		ParentHash:         parent,
		RefereeHashes:      referees,
		TimeInMilliseconds: timeInMilliseconds,
		Difficulty:         big.NewInt(1),
		TransactionsRoot:   externalapi.NewZeroHash(),
	}
}

// add inserts a block and drives every block it made ready through the
// arena and the selector, one at a time
func (td *testDAG) add(hash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) {
	td.sequence++
	index, err := td.arena.Insert(header, hash, td.sequence)
	if err != nil && !errors.Is(err, ruleerrors.ErrMissingParents) {
		td.t.Fatalf("Insert %s: %+v", hash, err)
	}
	if td.arena.Status(index) != externalapi.StatusReceived || td.arena.PendingCount(index) != 0 {
		return
	}

	queue := []model.ArenaIndex{index}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		resolved, err := td.arena.MarkReady(current)
		if err != nil {
			td.t.Fatalf("MarkReady %s: %+v", td.arena.Hash(current), err)
		}
		update, err := td.selector.OnBlockReady(current)
		if err != nil {
			td.t.Fatalf("OnBlockReady %s: %+v", td.arena.Hash(current), err)
		}
		td.updates = append(td.updates, update)
		queue = append(queue, resolved...)
	}
}

func (td *testDAG) index(hash *externalapi.DomainHash) model.ArenaIndex {
	index, ok := td.arena.Index(hash)
	if !ok {
		td.t.Fatalf("block %s is not in the arena", hash)
	}
	return index
}

func (td *testDAG) pivotHashes() []*externalapi.DomainHash {
	pivot := td.selector.PivotChain()
	hashes := make([]*externalapi.DomainHash, len(pivot))
	for i, index := range pivot {
		hashes[i] = td.arena.Hash(index)
	}
	return hashes
}

func (td *testDAG) epochHashes(epochNumber uint64) []*externalapi.DomainHash {
	members, err := td.selector.EpochMembers(epochNumber)
	if err != nil {
		td.t.Fatalf("EpochMembers %d: %+v", epochNumber, err)
	}
	hashes := make([]*externalapi.DomainHash, len(members))
	for i, index := range members {
		hashes[i] = td.arena.Hash(index)
	}
	return hashes
}

func TestEpochOfReferringPivotBlock(t *testing.T) {
	td := newTestDAG(t, 100)
	genesis, a, b, c := testHash(1), testHash(2), testHash(3), testHash(4)
	td.add(genesis, testHeader(nil, 0))
	td.add(a, testHeader(genesis, 1000))
	td.add(b, testHeader(genesis, 1000))
	td.add(c, testHeader(a, 2000, b))

	expectedPivot := []*externalapi.DomainHash{genesis, a, c}
	if pivot := td.pivotHashes(); !externalapi.HashesEqual(pivot, expectedPivot) {
		t.Fatalf("expected pivot %s, got %s", expectedPivot, pivot)
	}
	expectedEpochs := [][]*externalapi.DomainHash{{genesis}, {a}, {b, c}}
	for epochNumber, expected := range expectedEpochs {
		if members := td.epochHashes(uint64(epochNumber)); !externalapi.HashesEqual(members, expected) {
			t.Fatalf("expected epoch %d to be %s, got %s", epochNumber, expected, members)
		}
	}
	epochNumber, ok := td.selector.EpochNumberOf(td.index(b))
	if !ok || epochNumber != 2 {
		t.Fatalf("expected B to belong to epoch 2, got %d (found: %t)", epochNumber, ok)
	}
	if size, err := td.selector.EpochSize(td.index(c)); err != nil || size != 2 {
		t.Fatalf("expected the epoch size of C to be 2, got %d (%v)", size, err)
	}
	if size, err := td.selector.EpochSize(td.index(b)); err != nil || size != 1 {
		t.Fatalf("expected the epoch size of B to be 1, got %d (%v)", size, err)
	}
	if _, err := td.selector.EpochMembers(3); err == nil {
		t.Fatalf("expected an error for an epoch above the tip")
	}
}

func TestOutlierBranchLosesDespiteMoreDescendants(t *testing.T) {
	td := newTestDAG(t, 100)
	genesis := testHash(1)
	x1, x2, x3a, x3b := testHash(2), testHash(3), testHash(4), testHash(5)
	y1, y2 := testHash(6), testHash(7)

	td.add(genesis, testHeader(nil, 0))
	td.add(x1, testHeader(genesis, 1000))
	// x2 goes back in time, so everything below x1 is an outlier for it
	td.add(x2, testHeader(x1, 500))
	td.add(x3a, testHeader(x2, 600))
	td.add(x3b, testHeader(x2, 600))

	if pivot := td.pivotHashes(); !externalapi.HashesEqual(pivot, []*externalapi.DomainHash{genesis, x1}) {
		t.Fatalf("expected the pivot to stop above the ineligible block, got %s", pivot)
	}
	if td.selector.IsEligible(td.index(x2)) || td.selector.Weight(td.index(x2)) != 0 {
		t.Fatalf("expected x2 to be ineligible and weightless")
	}
	if size, weight := td.arena.SubtreeSize(td.index(x1)), td.selector.Weight(td.index(x1)); size != 4 || weight != 1 {
		t.Fatalf("expected x1 to have 4 descendants and weight 1, got %d and %d", size, weight)
	}

	td.add(y1, testHeader(genesis, 1000))
	if pivot := td.pivotHashes(); !externalapi.HashesEqual(pivot, []*externalapi.DomainHash{genesis, x1}) {
		t.Fatalf("expected the tie to go to the lower hash x1, got %s", pivot)
	}

	td.add(y2, testHeader(y1, 2000, x1))
	expectedPivot := []*externalapi.DomainHash{genesis, y1, y2}
	if pivot := td.pivotHashes(); !externalapi.HashesEqual(pivot, expectedPivot) {
		t.Fatalf("expected pivot %s, got %s", expectedPivot, pivot)
	}

	update := td.updates[len(td.updates)-1]
	if !update.IsReorg() || update.ForkHeight != 0 ||
		!externalapi.HashesEqual(update.Removed, []*externalapi.DomainHash{x1}) ||
		!externalapi.HashesEqual(update.Added, []*externalapi.DomainHash{y1, y2}) {
		t.Fatalf("unexpected pivot update %s", spew.Sdump(update))
	}
	if members := td.epochHashes(2); !externalapi.HashesEqual(members, []*externalapi.DomainHash{x1, y2}) {
		t.Fatalf("expected x1 to be reassigned to the epoch of y2, got %s", members)
	}
	if _, ok := td.selector.EpochNumberOf(td.index(x2)); ok {
		t.Fatalf("x2 is not in the past of the pivot and must not belong to an epoch")
	}
}

func TestLighterBranchKeepsPivotPrefix(t *testing.T) {
	td := newTestDAG(t, 100)
	genesis, a, b, c, side := testHash(9), testHash(2), testHash(3), testHash(4), testHash(1)
	td.add(genesis, testHeader(nil, 0))
	td.add(a, testHeader(genesis, 1000))
	td.add(b, testHeader(a, 2000))
	td.add(c, testHeader(b, 3000))

	before := td.pivotHashes()
	// side has the lowest hash but a single block cannot outweigh a, b and c
	td.add(side, testHeader(genesis, 1000))
	update := td.updates[len(td.updates)-1]
	if !update.IsEmpty() {
		t.Fatalf("expected no pivot change, got %s", spew.Sdump(update))
	}
	if after := td.pivotHashes(); !externalapi.HashesEqual(before, after) {
		t.Fatalf("pivot changed from %s to %s", before, after)
	}
	if update.ForkHeight != 0 {
		t.Fatalf("expected fork height 0, got %d", update.ForkHeight)
	}
}

func TestEraCheckpoints(t *testing.T) {
	const eraEpochCount = 3
	td := newTestDAG(t, eraEpochCount)

	hashes := []*externalapi.DomainHash{testHash(1)}
	td.add(hashes[0], testHeader(nil, 0))
	var changedAt []int
	if td.updates[0].CheckpointsChanged {
		changedAt = append(changedAt, 0)
	}
	for height := 1; height <= 9; height++ {
		hash := testHash(byte(height + 1))
		td.add(hash, testHeader(hashes[height-1], int64(height)*1000))
		hashes = append(hashes, hash)
		if td.updates[len(td.updates)-1].CheckpointsChanged {
			changedAt = append(changedAt, height)
		}
	}

	if expected := []int{0, 6, 9}; spew.Sdump(changedAt) != spew.Sdump(expected) {
		t.Fatalf("expected checkpoint changes at heights %v, got %v", expected, changedAt)
	}
	expectedCheckpoints := []*externalapi.DomainHash{hashes[3], hashes[6]}
	if checkpoints := td.selector.Checkpoints(); !externalapi.HashesEqual(checkpoints, expectedCheckpoints) {
		t.Fatalf("expected checkpoints %s, got %s", expectedCheckpoints, checkpoints)
	}
	if td.cache.Len() != 4 {
		t.Fatalf("expected only the era subtree to stay cached, got %d entries", td.cache.Len())
	}
}

func TestOnBlockReadyErrors(t *testing.T) {
	td := newTestDAG(t, 100)
	genesis, a := testHash(1), testHash(2)
	td.add(genesis, testHeader(nil, 0))

	if _, err := td.selector.OnBlockReady(td.index(genesis)); err == nil {
		t.Fatalf("expected an error for a block already on the pivot")
	}
	td.sequence++
	index, err := td.arena.Insert(testHeader(genesis, 1000), a, td.sequence)
	if err != nil {
		t.Fatalf("Insert: %+v", err)
	}
	if _, err := td.selector.OnBlockReady(index); err == nil {
		t.Fatalf("expected an error for a block that is not graph-ready")
	}
}
