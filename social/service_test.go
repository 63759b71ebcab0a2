package social

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-feed-cache/feed"
	"github.com/goliatone/go-feed-cache/mutation"
	"github.com/goliatone/go-feed-cache/pkg/testsupport"
	"github.com/goliatone/go-feed-cache/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testsupport.OpenSQLite(t)
	require.NoError(t, CreateSchema(context.Background(), db))
	require.NoError(t, CreateSchema(context.Background(), db), "schema creation should be idempotent")

	clock := testsupport.SteppingClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), time.Second)
	return NewService(db, WithClock(clock))
}

func as(u *User) context.Context {
	return session.WithIdentity(context.Background(), session.Identity{UserID: u.ID.String(), Name: u.Name})
}

func mustUser(t *testing.T, s *Service, name string) *User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), name, name+"@example.com", "")
	require.NoError(t, err)
	return u
}

func TestProfileByID(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	ann := mustUser(t, s, "ann")
	bob := mustUser(t, s, "bob")

	_, err := s.CreateTweet(as(ann), mutation.CreateTweetInput{Content: "one"})
	require.NoError(t, err)
	_, err = s.ToggleFollow(as(bob), mutation.ToggleFollowInput{UserID: ann.ID.String()})
	require.NoError(t, err)

	anonymous, err := s.ProfileByID(ctx, ann.ID.String())
	require.NoError(t, err)
	assert.Equal(t, feed.Profile{Name: "ann", FollowersCount: 1, FollowsCount: 0, TweetsCount: 1}, anonymous)

	asBob, err := s.ProfileByID(as(bob), ann.ID.String())
	require.NoError(t, err)
	assert.True(t, asBob.IsFollowing)

	bobProfile, err := s.ProfileByID(as(ann), bob.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, bobProfile.FollowsCount)
	assert.False(t, bobProfile.IsFollowing)
}

func TestProfileByID_NotFound(t *testing.T) {
	s := newTestService(t)

	_, err := s.ProfileByID(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, mutation.KindNotFound, mutation.KindOf(err))
}

func TestToggleFollow(t *testing.T) {
	s := newTestService(t)
	ann := mustUser(t, s, "ann")
	bob := mustUser(t, s, "bob")

	out, err := s.ToggleFollow(as(ann), mutation.ToggleFollowInput{UserID: bob.ID.String()})
	require.NoError(t, err)
	assert.True(t, out.AddedFollower)

	out, err = s.ToggleFollow(as(ann), mutation.ToggleFollowInput{UserID: bob.ID.String()})
	require.NoError(t, err)
	assert.False(t, out.AddedFollower)

	profile, err := s.ProfileByID(as(ann), bob.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, profile.FollowersCount)
	assert.False(t, profile.IsFollowing)
}

func TestToggleFollow_Errors(t *testing.T) {
	s := newTestService(t)
	ann := mustUser(t, s, "ann")

	tests := []struct {
		name string
		ctx  context.Context
		in   mutation.ToggleFollowInput
		want mutation.Kind
	}{
		{name: "anonymous", ctx: context.Background(), in: mutation.ToggleFollowInput{UserID: ann.ID.String()}, want: mutation.KindAuthorization},
		{name: "missing user id", ctx: as(ann), in: mutation.ToggleFollowInput{}, want: mutation.KindValidation},
		{name: "self follow", ctx: as(ann), in: mutation.ToggleFollowInput{UserID: ann.ID.String()}, want: mutation.KindValidation},
		{name: "unknown target", ctx: as(ann), in: mutation.ToggleFollowInput{UserID: uuid.NewString()}, want: mutation.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ToggleFollow(tt.ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.want, mutation.KindOf(err), err.Error())
		})
	}
}

func TestCreateTweet(t *testing.T) {
	s := newTestService(t)
	ann := mustUser(t, s, "ann")

	out, err := s.CreateTweet(as(ann), mutation.CreateTweetInput{Content: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "hello", out.Content)
	assert.False(t, out.CreatedAt.IsZero())

	_, err = s.CreateTweet(as(ann), mutation.CreateTweetInput{})
	assert.Equal(t, mutation.KindValidation, mutation.KindOf(err))

	_, err = s.CreateTweet(context.Background(), mutation.CreateTweetInput{Content: "x"})
	assert.Equal(t, mutation.KindAuthorization, mutation.KindOf(err))
}

func TestToggleLike(t *testing.T) {
	s := newTestService(t)
	ann := mustUser(t, s, "ann")
	post, err := s.CreateTweet(as(ann), mutation.CreateTweetInput{Content: "like me"})
	require.NoError(t, err)

	out, err := s.ToggleLike(as(ann), mutation.ToggleLikeInput{ID: post.ID})
	require.NoError(t, err)
	assert.True(t, out.AddedLike)

	page, err := s.InfiniteFeed(as(ann), feed.Filter{}, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, 1, page.Posts[0].LikeCount)
	assert.True(t, page.Posts[0].LikedByMe)

	anonymous, err := s.InfiniteFeed(context.Background(), feed.Filter{}, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, anonymous.Posts[0].LikeCount)
	assert.False(t, anonymous.Posts[0].LikedByMe)

	out, err = s.ToggleLike(as(ann), mutation.ToggleLikeInput{ID: post.ID})
	require.NoError(t, err)
	assert.False(t, out.AddedLike)

	_, err = s.ToggleLike(as(ann), mutation.ToggleLikeInput{ID: uuid.NewString()})
	assert.Equal(t, mutation.KindNotFound, mutation.KindOf(err))
}

func TestInfiniteFeed_Pagination(t *testing.T) {
	s := newTestService(t)
	ann := mustUser(t, s, "ann")

	var ids []string
	for i := 0; i < 5; i++ {
		out, err := s.CreateTweet(as(ann), mutation.CreateTweetInput{Content: fmt.Sprintf("post %d", i)})
		require.NoError(t, err)
		ids = append([]string{out.ID}, ids...)
	}

	var (
		got    []string
		cursor *feed.Cursor
		pages  int
	)
	for {
		page, err := s.InfiniteFeed(context.Background(), feed.Filter{}, cursor, 2)
		require.NoError(t, err)
		pages++
		for _, p := range page.Posts {
			got = append(got, p.ID)
			assert.Equal(t, "ann", p.Author.Name)
		}
		if page.NextCursor == nil {
			break
		}
		cursor = page.NextCursor
		require.Less(t, pages, 10, "pagination did not terminate")
	}

	assert.Equal(t, ids, got, "posts should be newest first without gaps or duplicates")
	assert.Equal(t, 3, pages)
}

func TestInfiniteFeed_Filters(t *testing.T) {
	s := newTestService(t)
	ann := mustUser(t, s, "ann")
	bob := mustUser(t, s, "bob")
	cat := mustUser(t, s, "cat")

	for _, u := range []*User{ann, bob, cat} {
		_, err := s.CreateTweet(as(u), mutation.CreateTweetInput{Content: "by " + u.Name})
		require.NoError(t, err)
	}
	_, err := s.ToggleFollow(as(ann), mutation.ToggleFollowInput{UserID: bob.ID.String()})
	require.NoError(t, err)

	authors := func(page feed.Page) []string {
		var names []string
		for _, p := range page.Posts {
			names = append(names, p.Author.Name)
		}
		return names
	}

	all, err := s.InfiniteFeed(as(ann), feed.Filter{}, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "bob", "ann"}, authors(all))

	following, err := s.InfiniteFeed(as(ann), feed.Filter{OnlyFollowing: true}, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, authors(following))

	byCat, err := s.InfiniteFeed(context.Background(), feed.Filter{UserID: cat.ID.String()}, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat"}, authors(byCat))

	anonymousFollowing, err := s.InfiniteFeed(context.Background(), feed.Filter{OnlyFollowing: true}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, anonymousFollowing.Posts)
}

func TestUserByEmail(t *testing.T) {
	s := newTestService(t)
	ann := mustUser(t, s, "ann")

	got, err := s.UserByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, got.ID)

	_, err = s.UserByEmail(context.Background(), "nobody@example.com")
	assert.Equal(t, mutation.KindNotFound, mutation.KindOf(err))
}
