// Package mutation runs social actions (posting, following, liking)
// against a Gateway and keeps a session's cache.Store consistent with the
// confirmed result.
//
// # Lifecycle
//
// A mutation is validated and checked for an identity before anything is
// sent. The caller then waits on Gateway.Send. On success the Patcher
// registered for the mutation type rewrites the affected cache entries;
// on failure the cache is not touched. Observers see Pending followed by
// Succeeded or Failed.
//
//	coord := mutation.NewCoordinator(gw, store)
//	res := coord.Run(ctx, mutation.Mutation{
//		Type:    mutation.ToggleFollow,
//		Payload: mutation.ToggleFollowInput{UserID: "u2"},
//	})
//	if !res.OK() {
//		switch mutation.KindOf(res.Err) { ... }
//	}
//
// # Patches
//
// Patches are only applied after confirmation and are computed from the
// mutation's input, the gateway's output and the cached entry. Entries that
// were never loaded are left absent.
package mutation
