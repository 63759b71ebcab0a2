// Package cache implements the optimistic cache used by a feed session.
//
// # Overview
//
// A Store holds the last known result of every query a session has fetched,
// keyed by QueryKey. Views read entries with Get, fetch missing ones with
// Fetch or GetOrFetch, and subscribe to changes with Subscribe. Confirmed
// mutations never rewrite entries directly; they apply a PatchFunc through
// Patch (one key) or PatchAll (every key matching a predicate).
//
// # Keys
//
// A QueryKey is built from a scope (the query name) and its parameters:
//
//	key := cache.NewQueryKey("profile.getById", userID)
//
// Parameters are serialized with reflection so structurally equal values
// produce equal keys. Structs contribute their exported fields, maps are
// sorted, and values implementing encoding.TextMarshaler (time.Time,
// uuid.UUID) use their text form. Function values are only stable for the
// lifetime of the process and should not be used as parameters.
//
// # Patches
//
// A PatchFunc receives the current entry and whether it exists, and returns
// one of three outcomes:
//
//   - Unchanged(): leave the entry as is. Patching an absent entry with
//     Unchanged leaves it absent, which is how a patch avoids fabricating a
//     result that was never fetched.
//   - SetTo(v): store v.
//   - Absent(): remove the entry.
//
// Patch functions must not modify the entry they receive; entries are shared
// with concurrent readers.
//
// # Concurrency
//
// Every operation is safe for concurrent use. A patch runs inside the
// backend's per-key critical section, so it always sees the latest value and
// readers observe either the old or the new entry. Set on the same key is
// serialized with patches and the last writer wins. A fetch that completes
// after a patch replaces the patched entry with the fetched one.
//
// # Backends
//
// Store delegates storage to a Backend. The memory and sturdyc backends live
// in internal/cacheinfra and are selected through Config by pkg/di.
package cache
