package mutation

import (
	"fmt"

	"github.com/goliatone/go-feed-cache/cache"
	"github.com/goliatone/go-feed-cache/feed"
	"github.com/goliatone/go-feed-cache/session"
)

// Confirmed is a mutation the gateway accepted, with its output and the
// viewer who ran it.
type Confirmed struct {
	Mutation Mutation
	Value    any
	Viewer   session.Identity
}

// Patcher brings the cache in line with a confirmed mutation. It returns
// the number of entries it changed.
type Patcher func(store *cache.Store, c Confirmed) (int, error)

// DefaultPatchers returns the patchers for every mutation type.
func DefaultPatchers() map[Type]Patcher {
	return map[Type]Patcher{
		CreateTweet:  PatchCreateTweet,
		ToggleFollow: PatchToggleFollow,
		ToggleLike:   PatchToggleLike,
	}
}

// PatchCreateTweet prepends the new post to the global feed and to the
// author's own feed, then bumps the author's tweet count. Feeds that were
// never loaded stay absent.
func PatchCreateTweet(store *cache.Store, c Confirmed) (int, error) {
	out, ok := as[CreateTweetOutput](c.Value)
	if !ok {
		return 0, unexpectedOutput(c)
	}

	post := feed.Post{
		ID:        out.ID,
		Content:   out.Content,
		CreatedAt: out.CreatedAt,
		Author: feed.Author{
			ID:    c.Viewer.UserID,
			Name:  c.Viewer.Name,
			Image: c.Viewer.Image,
		},
	}

	changed := 0
	for _, key := range []cache.QueryKey{
		feed.FeedKey(feed.Filter{}),
		feed.FeedKey(feed.Filter{UserID: c.Viewer.UserID}),
	} {
		if store.Patch(key, feed.PrependPost(post)) {
			changed++
		}
	}
	if store.Patch(feed.ProfileKey(c.Viewer.UserID), feed.AddTweets(1)) {
		changed++
	}
	return changed, nil
}

// PatchToggleFollow moves the followed profile's follower count and follow
// flag, and the viewer's own follows count, by one. Counts are computed
// from the cached values, so they can drift from the server under
// concurrent toggles until the next fetch. The viewer's following-only
// feed is dropped since its membership changed.
func PatchToggleFollow(store *cache.Store, c Confirmed) (int, error) {
	in, ok := as[ToggleFollowInput](c.Mutation.Payload)
	if !ok {
		return 0, unexpectedOutput(c)
	}
	out, ok := as[ToggleFollowOutput](c.Value)
	if !ok {
		return 0, unexpectedOutput(c)
	}

	changed := 0
	if store.Patch(feed.ProfileKey(in.UserID), feed.ApplyFollow(out.AddedFollower)) {
		changed++
	}
	if store.Patch(feed.ProfileKey(c.Viewer.UserID), feed.ApplyFollowing(out.AddedFollower)) {
		changed++
	}
	if store.Patch(feed.FeedKey(feed.Filter{OnlyFollowing: true}), dropIfPresent) {
		changed++
	}
	return changed, nil
}

// PatchToggleLike updates the post in every cached feed that holds it.
func PatchToggleLike(store *cache.Store, c Confirmed) (int, error) {
	in, ok := as[ToggleLikeInput](c.Mutation.Payload)
	if !ok {
		return 0, unexpectedOutput(c)
	}
	out, ok := as[ToggleLikeOutput](c.Value)
	if !ok {
		return 0, unexpectedOutput(c)
	}
	return store.PatchAll(feed.AnyFeed(), feed.ApplyLike(in.ID, out.AddedLike)), nil
}

func dropIfPresent(_ any, found bool) cache.Outcome {
	if !found {
		return cache.Unchanged()
	}
	return cache.Absent()
}

func unexpectedOutput(c Confirmed) error {
	return newInternal(fmt.Sprintf("unexpected %s result %T", c.Mutation.Type, c.Value))
}

// as accepts both T and *T.
func as[T any](v any) (T, bool) {
	switch typed := v.(type) {
	case T:
		return typed, true
	case *T:
		if typed != nil {
			return *typed, true
		}
	}
	var zero T
	return zero, false
}
