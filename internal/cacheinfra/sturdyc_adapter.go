package cacheinfra

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/goliatone/go-feed-cache/cache"
	"github.com/viccon/sturdyc"
)

// ToSturdycOptions converts the optional parts of cfg to sturdyc options.
// Capacity, NumShards, TTL and EvictionPercentage are passed directly to
// sturdyc.New and are not included.
func ToSturdycOptions(cfg cache.Config) []sturdyc.Option {
	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}
	return options
}

// sturdycBackend stores entries in a sturdyc client. sturdyc has no atomic
// read-modify-write, so writes to the same key are serialized by a striped
// mutex chosen from the key hash.
type sturdycBackend struct {
	client  *sturdyc.Client[any]
	stripes []sync.Mutex
}

// NewSturdycBackend validates cfg and creates a backend with TTL and
// capacity based eviction.
func NewSturdycBackend(cfg cache.Config) (cache.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		ToSturdycOptions(cfg)...,
	)

	return &sturdycBackend{
		client:  client,
		stripes: make([]sync.Mutex, cfg.LockStripes),
	}, nil
}

func (b *sturdycBackend) lock(key string) func() {
	mu := &b.stripes[xxhash.Sum64String(key)%uint64(len(b.stripes))]
	mu.Lock()
	return mu.Unlock
}

func (b *sturdycBackend) Load(key string) (any, bool) {
	return b.client.Get(key)
}

func (b *sturdycBackend) Store(key string, value any) {
	defer b.lock(key)()
	b.client.Set(key, value)
}

func (b *sturdycBackend) Delete(key string) {
	defer b.lock(key)()
	b.client.Delete(key)
}

// Compute holds the key's stripe for the whole read-modify-write, so a
// concurrent Store or Compute on the key happens entirely before or after.
func (b *sturdycBackend) Compute(key string, fn cache.PatchFunc) cache.Outcome {
	defer b.lock(key)()

	old, found := b.client.Get(key)
	out := fn(old, found)

	switch out.Op {
	case cache.OpSet:
		b.client.Set(key, out.Value)
	case cache.OpDelete:
		if !found {
			return cache.Unchanged()
		}
		b.client.Delete(key)
	}
	return out
}

func (b *sturdycBackend) Keys() []string {
	return b.client.ScanKeys()
}

func (b *sturdycBackend) Len() int {
	return b.client.Size()
}

// Close is a no-op; sturdyc releases its resources with the client.
func (b *sturdycBackend) Close() error {
	return nil
}
