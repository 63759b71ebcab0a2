package cacheinfra

import (
	"github.com/goliatone/go-feed-cache/cache"
	"github.com/puzpuzpuz/xsync/v3"
)

// memoryBackend keeps entries until they are deleted. Per-key atomicity
// comes from xsync.MapOf.Compute, which locks the key's bucket while the
// patch runs.
type memoryBackend struct {
	entries *xsync.MapOf[string, any]
}

// NewMemoryBackend creates an unbounded in-process backend.
func NewMemoryBackend() cache.Backend {
	return &memoryBackend{entries: xsync.NewMapOf[string, any]()}
}

func (b *memoryBackend) Load(key string) (any, bool) {
	return b.entries.Load(key)
}

func (b *memoryBackend) Store(key string, value any) {
	b.entries.Store(key, value)
}

func (b *memoryBackend) Delete(key string) {
	b.entries.Delete(key)
}

func (b *memoryBackend) Compute(key string, fn cache.PatchFunc) cache.Outcome {
	var out cache.Outcome
	b.entries.Compute(key, func(old any, loaded bool) (any, bool) {
		out = fn(old, loaded)
		switch out.Op {
		case cache.OpSet:
			return out.Value, false
		case cache.OpDelete:
			if !loaded {
				out = cache.Unchanged()
			}
			return old, true
		default:
			// deleting an absent key is a no-op, which keeps absent entries absent
			return old, !loaded
		}
	})
	return out
}

func (b *memoryBackend) Keys() []string {
	keys := make([]string, 0, b.entries.Size())
	b.entries.Range(func(key string, _ any) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (b *memoryBackend) Len() int {
	return b.entries.Size()
}

func (b *memoryBackend) Close() error {
	b.entries.Clear()
	return nil
}
