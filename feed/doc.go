// Package feed defines the entries held in the optimistic cache for the
// social feed: paginated feeds of posts and profile summaries, the keys they
// are stored under and the pure patches applied to them after a confirmed
// mutation.
//
// Patches never modify the entry they receive. Slices that change are
// copied; untouched pages are shared with the previous entry.
package feed
