package difficultymanager_test

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/difficultymanager"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/processes/grapharena"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/utils/difficultycache"
)

const (
	testPeriod         = 10
	testTargetInterval = 500
	testFactor         = 2
)

var testInitialDifficulty = big.NewInt(1000)

type fixedEpochSizes struct {
	size uint64
}

func (f fixedEpochSizes) EpochSize(model.ArenaIndex) (uint64, error) {
	return f.size, nil
}

type testChain struct {
	arena  model.GraphArena
	hashes []*externalapi.DomainHash
	cache  *difficultycache.DifficultyCache
}

func chainHash(height int) *externalapi.DomainHash {
	var arr [externalapi.DomainHashSize]byte
	arr[0] = byte(height)
	arr[1] = byte(height >> 8)
	arr[2] = 1
	return externalapi.NewDomainHashFromByteArray(&arr)
}

// buildChain builds a parent chain of the given length whose blocks all
// declare difficulty and arrive interval(height) milliseconds apart
func buildChain(t *testing.T, length int, difficulty *big.Int, interval func(height int) int64) *testChain {
	arena := grapharena.New()
	chain := &testChain{arena: arena, cache: difficultycache.New(4)}

	var timestamp int64
	for height := 0; height < length; height++ {
		header := &externalapi.DomainBlockHeader{
			Version:          1,
			Height:           uint64(height),
			Difficulty:       new(big.Int).Set(difficulty),
			TransactionsRoot: externalapi.NewZeroHash(),
		}
		if height > 0 {
			timestamp += interval(height)
			header.ParentHash = chain.hashes[height-1]
		}
		header.TimeInMilliseconds = timestamp

		hash := chainHash(height)
		index, err := arena.Insert(header, hash, uint64(height))
		if err != nil {
			t.Fatalf("Insert: %+v", err)
		}
		if _, err := arena.MarkReady(index); err != nil {
			t.Fatalf("MarkReady: %+v", err)
		}
		chain.hashes = append(chain.hashes, hash)
	}
	return chain
}

func (tc *testChain) manager(epochSize uint64, skipAdjustment bool) model.DifficultyManager {
	return difficultymanager.New(tc.arena, fixedEpochSizes{size: epochSize}, tc.cache, testPeriod,
		testInitialDifficulty, testFactor, big.NewInt(1), testTargetInterval, skipAdjustment)
}

func TestTargetDifficulty(t *testing.T) {
	tests := []struct {
		name       string
		difficulty int64
		interval   int64
		epochSize  uint64
		expected   int64
	}{
		{name: "on target", difficulty: 100_000, interval: 500, epochSize: 1, expected: 100_000},
		{name: "twice as fast", difficulty: 100_000, interval: 250, epochSize: 1, expected: 120_000},
		{name: "on target with merged blocks", difficulty: 100_000, interval: 1000, epochSize: 2, expected: 100_000},
		{name: "far too fast is clamped", difficulty: 100_000, interval: 10, epochSize: 1, expected: 150_000},
		{name: "ten times slower", difficulty: 100_000, interval: 5000, epochSize: 1, expected: 82_000},
		{name: "floored at the initial difficulty", difficulty: 1200, interval: 100_000, epochSize: 1, expected: 1000},
		{name: "zero timespan", difficulty: 100_000, interval: 0, epochSize: 1, expected: 1000},
		{name: "no merged blocks", difficulty: 100_000, interval: 500, epochSize: 0, expected: 1000},
	}

	for _, test := range tests {
		chain := buildChain(t, 2*testPeriod, big.NewInt(test.difficulty), func(int) int64 { return test.interval })
		manager := chain.manager(test.epochSize, false)

		boundary := chain.hashes[2*testPeriod-1]
		next, err := manager.TargetDifficulty(boundary)
		if err != nil {
			t.Fatalf("%s: TargetDifficulty: %+v", test.name, err)
		}
		if next.Cmp(big.NewInt(test.expected)) != 0 {
			t.Fatalf("%s: expected %d, got %s", test.name, test.expected, next)
		}
	}
}

func TestTargetDifficultyIsCached(t *testing.T) {
	chain := buildChain(t, 2*testPeriod, big.NewInt(100_000), func(int) int64 { return 250 })
	manager := chain.manager(1, false)

	boundary := chain.hashes[2*testPeriod-1]
	first, err := manager.TargetDifficulty(boundary)
	if err != nil {
		t.Fatalf("TargetDifficulty: %+v", err)
	}
	if chain.cache.Len() != 1 {
		t.Fatalf("expected one cached entry, got %d", chain.cache.Len())
	}
	first.SetInt64(1)

	second, err := manager.TargetDifficulty(boundary)
	if err != nil {
		t.Fatalf("TargetDifficulty: %+v", err)
	}
	if second.Cmp(big.NewInt(120_000)) != 0 {
		t.Fatalf("expected the cached value 120000, got %s", second)
	}
	if chain.cache.Len() != 1 {
		t.Fatalf("expected one cached entry, got %d", chain.cache.Len())
	}
}

func TestExpectedDifficulty(t *testing.T) {
	chain := buildChain(t, 3*testPeriod, big.NewInt(100_000), func(int) int64 { return 250 })
	manager := chain.manager(1, false)

	secondBoundaryTarget, err := manager.TargetDifficulty(chain.hashes[2*testPeriod-1])
	if err != nil {
		t.Fatalf("TargetDifficulty: %+v", err)
	}
	firstBoundaryTarget, err := manager.TargetDifficulty(chain.hashes[testPeriod-1])
	if err != nil {
		t.Fatalf("TargetDifficulty: %+v", err)
	}

	tests := []struct {
		parentHeight int
		expected     *big.Int
	}{
		{parentHeight: 0, expected: testInitialDifficulty},
		{parentHeight: testPeriod - 2, expected: testInitialDifficulty},
		{parentHeight: testPeriod - 1, expected: firstBoundaryTarget},
		{parentHeight: 2*testPeriod - 2, expected: firstBoundaryTarget},
		{parentHeight: 2*testPeriod - 1, expected: secondBoundaryTarget},
		{parentHeight: 3*testPeriod - 2, expected: secondBoundaryTarget},
	}
	for _, test := range tests {
		expected, err := manager.ExpectedDifficulty(chain.hashes[test.parentHeight])
		if err != nil {
			t.Fatalf("ExpectedDifficulty at parent height %d: %+v", test.parentHeight, err)
		}
		if expected.Cmp(test.expected) != 0 {
			t.Fatalf("expected difficulty %s for a child of height %d, got %s",
				test.expected, test.parentHeight+1, expected)
		}
	}

	if _, err := manager.ExpectedDifficulty(chainHash(200)); err == nil {
		t.Fatalf("expected an error for an unknown parent")
	}
}

func TestSkipDifficultyAdjustment(t *testing.T) {
	chain := buildChain(t, 2*testPeriod, big.NewInt(100_000), func(int) int64 { return 10 })
	manager := chain.manager(1, true)

	next, err := manager.TargetDifficulty(chain.hashes[2*testPeriod-1])
	if err != nil {
		t.Fatalf("TargetDifficulty: %+v", err)
	}
	if next.Cmp(testInitialDifficulty) != 0 {
		t.Fatalf("expected the initial difficulty, got %s", next)
	}
}

func TestDifficultyBounds(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		current := big.NewInt(int64(random.Intn(1_000_000)) + 1)
		chain := buildChain(t, 2*testPeriod, current, func(int) int64 { return int64(random.Intn(3000)) })
		manager := chain.manager(uint64(random.Intn(4)), false)

		next, err := manager.TargetDifficulty(chain.hashes[2*testPeriod-1])
		if err != nil {
			t.Fatalf("TargetDifficulty: %+v", err)
		}
		step := new(big.Int).Quo(current, big.NewInt(testFactor))
		lowerBound := new(big.Int).Sub(current, step)
		upperBound := new(big.Int).Add(current, step)

		if next.Cmp(testInitialDifficulty) < 0 {
			t.Fatalf("difficulty %s is below the initial difficulty", next)
		}
		if next.Cmp(testInitialDifficulty) != 0 && (next.Cmp(lowerBound) < 0 || next.Cmp(upperBound) > 0) {
			t.Fatalf("difficulty %s is outside [%s, %s]", next, lowerBound, upperBound)
		}
	}
}
