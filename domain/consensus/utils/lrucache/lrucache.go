package lrucache

import (
	"container/list"
	"sync"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/cespare/xxhash/v2"
)

type entry[V any] struct {
	key   externalapi.DomainHash // full key for collision safety
	value V
	elem  *list.Element
}

// LRUCache is a generic LRU cache keyed by block hashes. Keys are hashed
// to uint64 internally.
//
// LRUCache is safe for concurrent use. A Get moves the entry to the front,
// so every method takes the same exclusive lock.
type LRUCache[V any] struct {
	lock     sync.Mutex
	cache    map[uint64]*entry[V]
	lru      *list.List
	capacity int
}

// New creates a new LRUCache
func New[V any](capacity int, preallocate bool) *LRUCache[V] {
	cache := make(map[uint64]*entry[V])
	if preallocate {
		cache = make(map[uint64]*entry[V], capacity+capacity/4)
	}
	return &LRUCache[V]{
		cache:    cache,
		lru:      list.New(),
		capacity: capacity,
	}
}

func hash(key *externalapi.DomainHash) uint64 {
	return xxhash.Sum64(key.ByteSlice())
}

// Add adds an entry, or updates it and marks it as most recently used
func (c *LRUCache[V]) Add(key *externalapi.DomainHash, value V) {
	c.lock.Lock()
	defer c.lock.Unlock()

	h := hash(key)

	if e, ok := c.cache[h]; ok {
		if e.key == *key {
			e.value = value
			c.lru.MoveToFront(e.elem)
			return
		}
		// xxhash collision: the older entry is dropped
		c.lru.Remove(e.elem)
		delete(c.cache, h)
	}

	e := &entry[V]{
		key:   *key,
		value: value,
	}
	e.elem = c.lru.PushFront(e)
	c.cache[h] = e

	if c.lru.Len() > c.capacity {
		c.evict()
	}
}

// Get returns the entry or (zero-value, false)
func (c *LRUCache[V]) Get(key *externalapi.DomainHash) (V, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	e, ok := c.cache[hash(key)]
	if !ok || e.key != *key {
		var zero V
		return zero, false
	}

	c.lru.MoveToFront(e.elem)
	return e.value, true
}

// Has checks existence without touching the LRU order
func (c *LRUCache[V]) Has(key *externalapi.DomainHash) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	e, ok := c.cache[hash(key)]
	return ok && e.key == *key
}

// Remove removes entry if exists
func (c *LRUCache[V]) Remove(key *externalapi.DomainHash) {
	c.lock.Lock()
	defer c.lock.Unlock()

	h := hash(key)
	e, ok := c.cache[h]
	if !ok || e.key != *key {
		return
	}

	c.lru.Remove(e.elem)
	delete(c.cache, h)
}

// RemoveIf removes every entry for which shouldRemove returns true, and
// returns the number of removed entries
func (c *LRUCache[V]) RemoveIf(shouldRemove func(key *externalapi.DomainHash, value V) bool) int {
	c.lock.Lock()
	defer c.lock.Unlock()

	removed := 0
	for elem := c.lru.Front(); elem != nil; {
		next := elem.Next()
		e := elem.Value.(*entry[V])
		if shouldRemove(&e.key, e.value) {
			c.lru.Remove(elem)
			delete(c.cache, hash(&e.key))
			removed++
		}
		elem = next
	}
	return removed
}

// Len returns the number of entries in the cache
func (c *LRUCache[V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.lru.Len()
}

// Capacity returns the maximum number of entries the cache holds
func (c *LRUCache[V]) Capacity() int {
	return c.capacity
}

func (c *LRUCache[V]) evict() {
	back := c.lru.Back()
	if back == nil {
		return
	}
	e := back.Value.(*entry[V])
	c.lru.Remove(back)
	delete(c.cache, hash(&e.key))
}

// Clear empties the cache
func (c *LRUCache[V]) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.cache = make(map[uint64]*entry[V], len(c.cache)/2+1)
	c.lru.Init()
}
