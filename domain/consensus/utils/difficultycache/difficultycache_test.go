package difficultycache

import (
	"math/big"
	"testing"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

func boundaryHash(b byte) *externalapi.DomainHash {
	return externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{b})
}

func TestDifficultyCacheEvictsOldestFirst(t *testing.T) {
	cache := New(2)
	cache.Add(boundaryHash(1), big.NewInt(100))
	cache.Add(boundaryHash(2), big.NewInt(200))
	cache.Add(boundaryHash(3), big.NewInt(300))

	if _, ok := cache.Get(boundaryHash(1)); ok {
		t.Fatalf("expected the oldest entry to be evicted")
	}
	difficulty, ok := cache.Get(boundaryHash(3))
	if !ok || difficulty.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("unexpected difficulty %v (found: %t)", difficulty, ok)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
}

func TestDifficultyCacheReturnsCopies(t *testing.T) {
	cache := New(2)
	cache.Add(boundaryHash(1), big.NewInt(100))

	difficulty, _ := cache.Get(boundaryHash(1))
	difficulty.SetInt64(1)

	again, _ := cache.Get(boundaryHash(1))
	if again.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("cached difficulty was modified through a returned value: %s", again)
	}
}
