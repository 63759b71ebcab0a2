package cache

import (
	"context"
	"errors"
)

// ErrInvalidResultType is returned by GetOrFetch when the cached entry is not of the requested type.
var ErrInvalidResultType = errors.New("cache: entry has unexpected type")

// Op is what a patch decided to do with an entry.
type Op int

const (
	// OpNone leaves the entry exactly as it was, including leaving an absent entry absent.
	OpNone Op = iota
	// OpSet stores Outcome.Value.
	OpSet
	// OpDelete removes the entry.
	OpDelete
)

// Outcome is the result of a PatchFunc.
type Outcome struct {
	Value any
	Op    Op
}

// Unchanged leaves the entry untouched.
func Unchanged() Outcome { return Outcome{Op: OpNone} }

// SetTo replaces the entry with v.
func SetTo(v any) Outcome { return Outcome{Value: v, Op: OpSet} }

// Absent removes the entry.
func Absent() Outcome { return Outcome{Op: OpDelete} }

// PatchFunc computes a new entry from the current one. found is false when
// the key holds no entry. Implementations must not modify old in place.
type PatchFunc func(old any, found bool) Outcome

// Patch adapts a typed function into a PatchFunc. Entries holding a
// different type are left unchanged.
func Patch[T any](fn func(old T, found bool) Outcome) PatchFunc {
	return func(old any, found bool) Outcome {
		if !found {
			var zero T
			return fn(zero, false)
		}
		typed, ok := old.(T)
		if !ok {
			return Unchanged()
		}
		return fn(typed, true)
	}
}

// Backend stores entries by serialized key. Compute must run fn and apply
// its outcome atomically with respect to every other call on the same key.
type Backend interface {
	Load(key string) (any, bool)
	Store(key string, value any)
	Delete(key string)
	Compute(key string, fn PatchFunc) Outcome
	Keys() []string
	Len() int
	Close() error
}

// Change describes an entry after an effective write.
type Change struct {
	Key     QueryKey
	Value   any
	Present bool
}

// Listener is notified after entries it subscribed to change. Changes to
// the same key are not ordered across goroutines.
type Listener func(Change)

// FetchFn loads a fresh query result from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// GetOrFetch is a type-safe wrapper around Store.Fetch.
func GetOrFetch[T any](ctx context.Context, store *Store, key QueryKey, fetchFn FetchFn[T]) (T, error) {
	var zero T
	result, err := store.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	})
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, ErrInvalidResultType
	}
	return typed, nil
}

// Get returns the entry for key when it exists and holds a T.
func Get[T any](store *Store, key QueryKey) (T, bool) {
	var zero T
	v, ok := store.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
