// Package gateway connects a session to the server procedures, either in
// process (Local) or over HTTP (Client). Both implement mutation.Gateway
// for writes and Querier for the reads that fill the cache.
package gateway

import (
	"context"

	"github.com/goliatone/go-feed-cache/cache"
	"github.com/goliatone/go-feed-cache/feed"
)

// Querier runs the read procedures.
type Querier interface {
	Profile(ctx context.Context, id string) (feed.Profile, error)
	FeedPage(ctx context.Context, filter feed.Filter, cursor *feed.Cursor) (feed.Page, error)
}

// FetchProfile returns the profile of id from store, querying q when it is
// not cached yet.
func FetchProfile(ctx context.Context, store *cache.Store, q Querier, id string) (feed.Profile, error) {
	return cache.GetOrFetch(ctx, store, feed.ProfileKey(id), func(ctx context.Context) (feed.Profile, error) {
		return q.Profile(ctx, id)
	})
}

// FetchNextPage loads the next page of the feed selected by filter and
// appends it to the cached entry. It returns the updated feed. An
// exhausted feed is returned as is. When another load appended a page
// while this one was in flight, the fetched page is dropped and the
// cached feed returned.
func FetchNextPage(ctx context.Context, store *cache.Store, q Querier, filter feed.Filter) (feed.Feed, error) {
	key := feed.FeedKey(filter)
	current, _ := cache.Get[feed.Feed](store, key)
	if !current.HasMore() {
		return current, nil
	}

	cursor := current.NextCursor()
	loaded := len(current.Pages)
	page, err := q.FeedPage(ctx, filter, cursor)
	if err != nil {
		return current, err
	}

	var next feed.Feed
	store.Patch(key, cache.Patch(func(old feed.Feed, found bool) cache.Outcome {
		if len(old.Pages) != loaded || !sameCursor(old.NextCursor(), cursor) {
			next = old
			return cache.Unchanged()
		}
		pages := make([]feed.Page, 0, len(old.Pages)+1)
		pages = append(pages, old.Pages...)
		pages = append(pages, page)
		next = feed.Feed{Pages: pages}
		return cache.SetTo(next)
	}))
	return next, nil
}

func sameCursor(a, b *feed.Cursor) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.CreatedAt.Equal(b.CreatedAt)
}

// RefreshFeed replaces the cached feed selected by filter with its first page.
func RefreshFeed(ctx context.Context, store *cache.Store, q Querier, filter feed.Filter) (feed.Feed, error) {
	v, err := store.Refresh(ctx, feed.FeedKey(filter), func(ctx context.Context) (any, error) {
		page, err := q.FeedPage(ctx, filter, nil)
		if err != nil {
			return nil, err
		}
		return feed.Feed{Pages: []feed.Page{page}}, nil
	})
	if err != nil {
		return feed.Feed{}, err
	}
	return v.(feed.Feed), nil
}
