package feed

import (
	"testing"
	"time"

	"github.com/goliatone/go-feed-cache/cache"
)

func post(id string) Post {
	return Post{ID: id, Content: id, Author: Author{ID: "u1", Name: "Ann"}}
}

func ids(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPrependPost(t *testing.T) {
	cursor := &Cursor{ID: "B", CreatedAt: time.Unix(10, 0)}
	old := Feed{Pages: []Page{
		{Posts: []Post{post("A"), post("B")}, NextCursor: cursor},
		{Posts: []Post{post("D")}},
	}}

	out := PrependPost(post("C"))(old, true)
	if out.Op != cache.OpSet {
		t.Fatalf("expected OpSet, got %v", out.Op)
	}

	got := out.Value.(Feed)
	if !equalIDs(ids(got.Pages[0].Posts), []string{"C", "A", "B"}) {
		t.Errorf("first page = %v, want [C A B]", ids(got.Pages[0].Posts))
	}
	if got.Pages[0].NextCursor != cursor {
		t.Error("first page cursor should be kept")
	}
	if !equalIDs(ids(got.Pages[1].Posts), []string{"D"}) {
		t.Errorf("later pages must be untouched, got %v", ids(got.Pages[1].Posts))
	}
	if !equalIDs(ids(old.Pages[0].Posts), []string{"A", "B"}) {
		t.Errorf("input feed was modified: %v", ids(old.Pages[0].Posts))
	}
}

func TestPrependPost_AbsenceSafety(t *testing.T) {
	tests := []struct {
		name  string
		old   any
		found bool
	}{
		{name: "absent", found: false},
		{name: "no pages", old: Feed{}, found: true},
		{name: "other entry type", old: Profile{Name: "x"}, found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := PrependPost(post("C"))(tt.old, tt.found)
			if out.Op != cache.OpNone {
				t.Errorf("expected OpNone, got %v", out.Op)
			}
		})
	}
}

func TestPrependPost_EmptyLoadedFeed(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := Post{ID: "t1", Content: "hi", CreatedAt: created}

	out := PrependPost(p)(Feed{Pages: []Page{{Posts: []Post{}}}}, true)
	got := out.Value.(Feed)

	if len(got.Pages) != 1 || len(got.Pages[0].Posts) != 1 {
		t.Fatalf("unexpected feed %+v", got)
	}
	first := got.Pages[0].Posts[0]
	if first.ID != "t1" || first.Content != "hi" || !first.CreatedAt.Equal(created) {
		t.Errorf("unexpected post %+v", first)
	}
	if first.LikeCount != 0 || first.LikedByMe {
		t.Errorf("new post should start without likes: %+v", first)
	}
}

func TestApplyFollow(t *testing.T) {
	tests := []struct {
		name          string
		old           Profile
		added         bool
		wantFollowers int
	}{
		{name: "follow", old: Profile{FollowersCount: 10}, added: true, wantFollowers: 11},
		{name: "follow already following", old: Profile{FollowersCount: 10, IsFollowing: true}, added: true, wantFollowers: 11},
		{name: "unfollow", old: Profile{FollowersCount: 10, IsFollowing: true}, added: false, wantFollowers: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyFollow(tt.added)(tt.old, true)
			got := out.Value.(Profile)
			if got.FollowersCount != tt.wantFollowers {
				t.Errorf("FollowersCount = %d, want %d", got.FollowersCount, tt.wantFollowers)
			}
			if got.IsFollowing != tt.added {
				t.Errorf("IsFollowing = %v, want %v", got.IsFollowing, tt.added)
			}
		})
	}

	if out := ApplyFollow(true)(nil, false); out.Op != cache.OpNone {
		t.Errorf("absent profile must stay absent, got %v", out.Op)
	}
}

func TestApplyFollowing(t *testing.T) {
	out := ApplyFollowing(false)(Profile{FollowsCount: 3}, true)
	if got := out.Value.(Profile); got.FollowsCount != 2 {
		t.Errorf("FollowsCount = %d, want 2", got.FollowsCount)
	}
	if out := ApplyFollowing(true)(nil, false); out.Op != cache.OpNone {
		t.Errorf("absent profile must stay absent, got %v", out.Op)
	}
}

func TestAddTweets(t *testing.T) {
	out := AddTweets(1)(Profile{TweetsCount: 4}, true)
	if got := out.Value.(Profile); got.TweetsCount != 5 {
		t.Errorf("TweetsCount = %d, want 5", got.TweetsCount)
	}
	if out := AddTweets(0)(Profile{}, true); out.Op != cache.OpNone {
		t.Error("zero delta should leave the profile unchanged")
	}
}

func TestApplyLike(t *testing.T) {
	liked := post("B")
	liked.LikeCount = 2
	old := Feed{Pages: []Page{
		{Posts: []Post{post("A")}},
		{Posts: []Post{liked, post("C")}},
	}}

	out := ApplyLike("B", true)(old, true)
	if out.Op != cache.OpSet {
		t.Fatalf("expected OpSet, got %v", out.Op)
	}
	got := out.Value.(Feed).Pages[1].Posts[0]
	if got.LikeCount != 3 || !got.LikedByMe {
		t.Errorf("unexpected post after like %+v", got)
	}
	if old.Pages[1].Posts[0].LikeCount != 2 {
		t.Error("input feed was modified")
	}

	if out := ApplyLike("missing", true)(old, true); out.Op != cache.OpNone {
		t.Errorf("feed without the post should be unchanged, got %v", out.Op)
	}
}

func TestFeedHelpers(t *testing.T) {
	var empty Feed
	if !empty.HasMore() || empty.NextCursor() != nil {
		t.Error("an unloaded feed has more pages and no cursor")
	}

	cursor := &Cursor{ID: "A"}
	f := Feed{Pages: []Page{{Posts: []Post{post("A")}, NextCursor: cursor}, {Posts: []Post{post("B")}}}}
	if f.HasMore() {
		t.Error("feed ending without cursor has no more pages")
	}
	if !equalIDs(ids(f.Posts()), []string{"A", "B"}) {
		t.Errorf("Posts() = %v", ids(f.Posts()))
	}
}

func TestKeys(t *testing.T) {
	if FeedKey(Filter{}) == FeedKey(Filter{UserID: "u1"}) {
		t.Error("feed variants must have distinct keys")
	}
	if FeedKey(Filter{UserID: "u1"}) != FeedKey(Filter{UserID: "u1"}) {
		t.Error("equal filters must produce equal keys")
	}
	if !AnyFeed()(FeedKey(Filter{OnlyFollowing: true})) {
		t.Error("AnyFeed should match every feed key")
	}
	if AnyFeed()(ProfileKey("u1")) {
		t.Error("AnyFeed should not match profile keys")
	}
}
