package lrucache

import (
	"testing"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
)

func newTestHash(b byte) *externalapi.DomainHash {
	var arr [externalapi.DomainHashSize]byte
	arr[0] = b
	return externalapi.NewDomainHashFromByteArray(&arr)
}

func TestLRUCacheAddGetRemove(t *testing.T) {
	cache := New[string](10, false)

	key1 := newTestHash(1)
	key2 := newTestHash(2)
	cache.Add(key1, "v1")
	cache.Add(key2, "v2")

	if !cache.Has(key1) || !cache.Has(key2) {
		t.Fatalf("expected keys to exist")
	}
	if value, ok := cache.Get(key1); !ok || value != "v1" {
		t.Fatalf("unexpected get for key1. ok=%v v=%v", ok, value)
	}

	cache.Remove(key1)
	if cache.Has(key1) {
		t.Fatalf("expected key1 to be removed")
	}
	if cache.Len() != 1 {
		t.Fatalf("expected a single entry, got %d", cache.Len())
	}
}

func TestLRUCacheKeyEqualityByValue(t *testing.T) {
	cache := New[string](10, true)
	cache.Add(newTestHash(7), "value")

	value, ok := cache.Get(newTestHash(7))
	if !ok || value != "value" {
		t.Fatalf("expected value-keyed lookup to succeed, got ok=%v v=%v", ok, value)
	}
}

func TestLRUCacheOverwriteDoesNotGrow(t *testing.T) {
	cache := New[string](10, false)
	key := newTestHash(3)

	cache.Add(key, "first")
	cache.Add(key, "second")
	if cache.Len() != 1 {
		t.Fatalf("expected len=1 after overwrite, got %d", cache.Len())
	}
	if value, _ := cache.Get(key); value != "second" {
		t.Fatalf("unexpected overwritten value %s", value)
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := New[string](2, false)

	key1 := newTestHash(1)
	key2 := newTestHash(2)
	key3 := newTestHash(3)

	cache.Add(key1, "v1")
	cache.Add(key2, "v2")

	// Touch key1 so that key2 becomes the LRU.
	if _, ok := cache.Get(key1); !ok {
		t.Fatalf("expected key1 to exist")
	}
	cache.Add(key3, "v3")

	if cache.Has(key2) {
		t.Fatalf("expected key2 to be evicted as LRU")
	}
	if !cache.Has(key1) || !cache.Has(key3) {
		t.Fatalf("expected key1 and key3 to remain")
	}
}

func TestLRUCacheRemoveIf(t *testing.T) {
	cache := New[int](10, false)
	for i := byte(0); i < 6; i++ {
		cache.Add(newTestHash(i), int(i))
	}

	removed := cache.RemoveIf(func(_ *externalapi.DomainHash, value int) bool {
		return value%2 == 0
	})
	if removed != 3 {
		t.Fatalf("expected 3 removed entries, got %d", removed)
	}
	for i := byte(0); i < 6; i++ {
		if cache.Has(newTestHash(i)) != (i%2 == 1) {
			t.Fatalf("unexpected presence of key %d", i)
		}
	}
}
