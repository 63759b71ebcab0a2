package feed

import (
	"time"

	"github.com/goliatone/go-feed-cache/cache"
)

// Query scopes used to build cache keys. They match the procedure names the
// gateway exposes so a key can be traced back to the query that filled it.
const (
	ScopeInfiniteFeed = "tweet.infiniteFeed"
	ScopeProfile      = "profile.getById"
)

// Author is the public identity attached to a post.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Post is a post summary as it appears in a feed page.
type Post struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	LikeCount int       `json:"likeCount"`
	LikedByMe bool      `json:"likedByMe"`
	Author    Author    `json:"user"`
}

// Cursor marks the position after which the next page starts. Posts are
// ordered by CreatedAt descending and ID descending.
type Cursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Page is one fetched slice of a feed. A nil NextCursor means the end of
// the sequence.
type Page struct {
	Posts      []Post  `json:"tweets"`
	NextCursor *Cursor `json:"nextCursor,omitempty"`
}

// Feed is the cache entry for an infinite feed: every page loaded so far,
// in fetch order.
type Feed struct {
	Pages []Page `json:"pages"`
}

// HasMore reports whether another page can be fetched.
func (f Feed) HasMore() bool {
	if len(f.Pages) == 0 {
		return true
	}
	return f.Pages[len(f.Pages)-1].NextCursor != nil
}

// NextCursor returns the cursor for the next page, nil for the first page
// or when the feed is exhausted.
func (f Feed) NextCursor() *Cursor {
	if len(f.Pages) == 0 {
		return nil
	}
	return f.Pages[len(f.Pages)-1].NextCursor
}

// Posts flattens every page into a single list.
func (f Feed) Posts() []Post {
	var posts []Post
	for _, page := range f.Pages {
		posts = append(posts, page.Posts...)
	}
	return posts
}

// Profile is the cache entry for a profile lookup.
type Profile struct {
	Name           string `json:"name"`
	Image          string `json:"image,omitempty"`
	FollowersCount int    `json:"followersCount"`
	FollowsCount   int    `json:"followsCount"`
	TweetsCount    int    `json:"tweetsCount"`
	IsFollowing    bool   `json:"isFollowing"`
}

// Filter selects which posts a feed contains. The zero value is the global
// feed. UserID restricts it to one author; OnlyFollowing restricts it to the
// authors the viewer follows.
type Filter struct {
	UserID        string `json:"userId,omitempty"`
	OnlyFollowing bool   `json:"onlyFollowing,omitempty"`
}

// FeedKey returns the cache key of the feed selected by filter.
func FeedKey(filter Filter) cache.QueryKey {
	return cache.NewQueryKey(ScopeInfiniteFeed, filter)
}

// ProfileKey returns the cache key of the profile of user id.
func ProfileKey(id string) cache.QueryKey {
	return cache.NewQueryKey(ScopeProfile, id)
}

// AnyFeed matches the keys of every cached feed variant.
func AnyFeed() cache.KeyPredicate {
	return cache.InScope(ScopeInfiniteFeed)
}
