// Package repo holds the in-memory registries and the Postgres window mirror
package repo

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultShards is the shard count used when none is given
const DefaultShards = 1024

type shard[V any] struct {
	mu sync.Mutex
	m  map[string]V
	_  [40]byte
}

// Sharded is a string-keyed map split across independently locked shards.
// Operations on keys in different shards never contend
type Sharded[V any] struct {
	shards []shard[V]
	mask   uint64
}

// NewSharded returns a map with n shards rounded up to a power of two
func NewSharded[V any](n int) *Sharded[V] {
	if n <= 0 {
		n = DefaultShards
	}
	size := 1
	for size < n {
		size <<= 1
	}
	s := &Sharded[V]{shards: make([]shard[V], size), mask: uint64(size - 1)}
	for i := range s.shards {
		s.shards[i].m = make(map[string]V)
	}
	return s
}

// Shards is the number of shards
func (s *Sharded[V]) Shards() int { return len(s.shards) }

// ShardOf returns the shard index key maps to
func (s *Sharded[V]) ShardOf(key string) int { return int(xxhash.Sum64String(key) & s.mask) }

func (s *Sharded[V]) shard(key string) *shard[V] { return &s.shards[s.ShardOf(key)] }

// Update replaces the value of key with fn(prev, ok) while holding the key's shard lock.
// fn must not call back into s
func (s *Sharded[V]) Update(key string, fn func(prev V, ok bool) V) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	prev, ok := sh.m[key]
	sh.m[key] = fn(prev, ok)
}

// Put stores v under key
func (s *Sharded[V]) Put(key string, v V) {
	sh := s.shard(key)
	sh.mu.Lock()
	sh.m[key] = v
	sh.mu.Unlock()
}

// PutIfAbsent stores v unless key exists and reports whether it stored
func (s *Sharded[V]) PutIfAbsent(key string, v V) bool {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.m[key]; ok {
		return false
	}
	sh.m[key] = v
	return true
}

// Get returns the value of key
func (s *Sharded[V]) Get(key string) (V, bool) {
	sh := s.shard(key)
	sh.mu.Lock()
	v, ok := sh.m[key]
	sh.mu.Unlock()
	return v, ok
}

// Len counts entries across all shards. Not a snapshot under concurrent writes
func (s *Sharded[V]) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		n += len(sh.m)
		sh.mu.Unlock()
	}
	return n
}

// Range calls fn for every entry one shard at a time until fn returns false
func (s *Sharded[V]) Range(fn func(key string, v V) bool) {
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for k, v := range sh.m {
			if !fn(k, v) {
				sh.mu.Unlock()
				return
			}
		}
		sh.mu.Unlock()
	}
}
