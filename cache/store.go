package cache

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Store is the optimistic cache of a single session: the last known result
// for every QueryKey, updated by fetches (Set) and by confirmed mutations
// (Patch, PatchAll). It is safe for concurrent use.
type Store struct {
	backend  Backend
	logger   *zap.Logger
	registry sync.Map // string -> QueryKey
	fetches  singleflight.Group

	mu        sync.RWMutex
	listeners map[uint64]subscription
	nextID    uint64
}

type subscription struct {
	match    KeyPredicate
	listener Listener
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a Store on top of backend.
func NewStore(backend Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend:   backend,
		logger:    zap.NewNop(),
		listeners: make(map[uint64]subscription),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the entry for key. It has no side effects.
func (s *Store) Get(key QueryKey) (any, bool) {
	return s.backend.Load(key.String())
}

// Set replaces the entry for key, typically with a freshly fetched result.
func (s *Store) Set(key QueryKey, entry any) {
	s.backend.Store(key.String(), entry)
	s.trackKey(key)
	s.notify(Change{Key: key, Value: entry, Present: true})
}

// Delete removes the entry for key. Deleting a missing key is a no-op.
func (s *Store) Delete(key QueryKey) {
	s.Patch(key, func(_ any, found bool) Outcome {
		if !found {
			return Unchanged()
		}
		return Absent()
	})
}

// Patch applies fn to the current entry for key and stores its outcome.
// Concurrent readers observe either the old or the new entry. It reports
// whether the entry changed.
func (s *Store) Patch(key QueryKey, fn PatchFunc) bool {
	out := s.backend.Compute(key.String(), fn)

	switch out.Op {
	case OpSet:
		s.trackKey(key)
		s.notify(Change{Key: key, Value: out.Value, Present: true})
		return true
	case OpDelete:
		s.untrackKey(key.String())
		s.notify(Change{Key: key, Present: false})
		return true
	default:
		return false
	}
}

// PatchAll applies fn to every known key matched by match and returns the
// number of entries that changed. Keys are patched independently.
func (s *Store) PatchAll(match KeyPredicate, fn PatchFunc) int {
	changed := 0
	for _, key := range s.Keys() {
		if match != nil && !match(key) {
			continue
		}
		if s.Patch(key, fn) {
			changed++
		}
	}

	s.logger.Debug("patched cache entries", zap.Int("changed", changed))
	return changed
}

// Keys returns the keys that currently hold an entry.
func (s *Store) Keys() []QueryKey {
	var keys []QueryKey
	s.registry.Range(func(k, v any) bool {
		if _, ok := s.backend.Load(k.(string)); ok {
			keys = append(keys, v.(QueryKey))
			return true
		}
		// evicted by the backend
		s.untrackKey(k.(string))
		return true
	})
	return keys
}

// Len returns the number of entries held by the backend.
func (s *Store) Len() int {
	return s.backend.Len()
}

// Fetch returns the entry for key, loading it with fetchFn when absent.
// Concurrent fetches of the same key share a single call to fetchFn.
func (s *Store) Fetch(ctx context.Context, key QueryKey, fetchFn func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}
	return s.Refresh(ctx, key, fetchFn)
}

// Refresh loads key with fetchFn and replaces whatever the cache holds,
// including the result of a patch applied while the fetch was in flight.
func (s *Store) Refresh(ctx context.Context, key QueryKey, fetchFn func(ctx context.Context) (any, error)) (any, error) {
	v, err, shared := s.fetches.Do(key.String(), func() (any, error) {
		v, err := fetchFn(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(key, v)
		return v, nil
	})
	if err != nil {
		s.logger.Debug("cache fetch failed", zap.Stringer("key", key), zap.Error(err))
		return nil, err
	}
	if shared {
		s.logger.Debug("cache fetch shared", zap.Stringer("key", key))
	}
	return v, nil
}

// Subscribe registers listener for changes to keys matched by match (all
// keys when nil). Listeners run synchronously after the write, outside any
// lock, so two concurrent writes to one key may be delivered in either
// order. A listener that needs the current entry should re-read it with Get
// rather than trust Change.Value. The returned function removes the
// subscription.
func (s *Store) Subscribe(match KeyPredicate, listener Listener) (unsubscribe func()) {
	if match == nil {
		match = AllKeys
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = subscription{match: match, listener: listener}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Close ends the session: subscriptions are dropped and every entry is removed.
func (s *Store) Close() error {
	s.mu.Lock()
	s.listeners = make(map[uint64]subscription)
	s.mu.Unlock()

	s.registry.Range(func(k, _ any) bool {
		s.backend.Delete(k.(string))
		s.registry.Delete(k)
		return true
	})
	return s.backend.Close()
}

// trackKey registers key so PatchAll and Keys can find it later.
func (s *Store) trackKey(key QueryKey) {
	s.registry.LoadOrStore(key.String(), key)
}

// untrackKey drops id from the registry unless a concurrent Set stored it
// again in the meantime.
func (s *Store) untrackKey(id string) {
	key, ok := s.registry.LoadAndDelete(id)
	if !ok {
		return
	}
	if _, present := s.backend.Load(id); present {
		s.registry.LoadOrStore(id, key)
	}
}

func (s *Store) notify(change Change) {
	s.mu.RLock()
	targets := make([]Listener, 0, len(s.listeners))
	for _, sub := range s.listeners {
		if sub.match(change.Key) {
			targets = append(targets, sub.listener)
		}
	}
	s.mu.RUnlock()

	for _, listener := range targets {
		listener(change)
	}
}
