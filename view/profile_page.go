package view

import (
	"context"
	"sync"

	"github.com/goliatone/go-feed-cache/cache"
	"github.com/goliatone/go-feed-cache/feed"
	"github.com/goliatone/go-feed-cache/gateway"
	"github.com/goliatone/go-feed-cache/mutation"
	"github.com/goliatone/go-feed-cache/session"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// TitlePrefix starts every profile page title.
const TitlePrefix = "Twitter Clone - "

// FollowButton is the follow toggle shown on someone else's profile.
type FollowButton struct {
	Label   string `json:"label"`
	Gray    bool   `json:"gray"`
	Pending bool   `json:"pending"`
}

// ProfilePageView is the rendered profile page.
type ProfilePageView struct {
	Title     string        `json:"title"`
	Loading   bool          `json:"loading"`
	NotFound  bool          `json:"notFound"`
	Name      string        `json:"name"`
	Image     ProfileImage  `json:"image"`
	Tweets    string        `json:"tweets"`
	Followers string        `json:"followers"`
	Follows   string        `json:"follows"`
	Follow    *FollowButton `json:"follow,omitempty"`
	Posts     []feed.Post   `json:"posts"`
	HasMore   bool          `json:"hasMore"`
}

// ProfilePage shows one user's profile and their posts.
type ProfilePage struct {
	id      string
	store   *cache.Store
	querier gateway.Querier
	runner  Runner
	stats   *Stats
	logger  *zap.Logger

	mu       sync.Mutex
	loadErr  error
	toggling bool
}

// ProfilePageOption configures a ProfilePage.
type ProfilePageOption func(*ProfilePage)

// WithLanguage sets the language used for the stats.
func WithLanguage(tag language.Tag) ProfilePageOption {
	return func(p *ProfilePage) {
		p.stats = NewStats(tag)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ProfilePageOption {
	return func(p *ProfilePage) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProfilePage returns the page of user id. Reads go through store,
// filled from q; follow toggles run through runner.
func NewProfilePage(id string, store *cache.Store, q gateway.Querier, runner Runner, opts ...ProfilePageOption) *ProfilePage {
	p := &ProfilePage{
		id:      id,
		store:   store,
		querier: q,
		runner:  runner,
		stats:   NewStats(language.English),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *ProfilePage) feedFilter() feed.Filter {
	return feed.Filter{UserID: p.id}
}

// Load fetches the profile and the first page of posts when they are not
// cached yet. A failed profile lookup is kept and rendered.
func (p *ProfilePage) Load(ctx context.Context) error {
	_, err := gateway.FetchProfile(ctx, p.store, p.querier, p.id)
	p.mu.Lock()
	p.loadErr = err
	p.mu.Unlock()
	if err != nil {
		p.logger.Debug("profile load failed", zap.String("id", p.id), zap.Error(err))
		return err
	}

	if _, ok := p.store.Get(feed.FeedKey(p.feedFilter())); ok {
		return nil
	}
	_, err = gateway.FetchNextPage(ctx, p.store, p.querier, p.feedFilter())
	return err
}

// LoadMore appends the next page of the user's posts.
func (p *ProfilePage) LoadMore(ctx context.Context) error {
	_, err := gateway.FetchNextPage(ctx, p.store, p.querier, p.feedFilter())
	return err
}

// Render returns the view model for the viewer in ctx.
func (p *ProfilePage) Render(ctx context.Context) ProfilePageView {
	p.mu.Lock()
	loadErr, toggling := p.loadErr, p.toggling
	p.mu.Unlock()

	profile, ok := cache.Get[feed.Profile](p.store, feed.ProfileKey(p.id))
	if !ok {
		if mutation.KindOf(loadErr) == mutation.KindNotFound {
			return ProfilePageView{Title: TitlePrefix + "Not Found", NotFound: true}
		}
		return ProfilePageView{Title: TitlePrefix, Loading: true}
	}

	posts, _ := cache.Get[feed.Feed](p.store, feed.FeedKey(p.feedFilter()))
	v := ProfilePageView{
		Title:     TitlePrefix + profile.Name,
		Name:      profile.Name,
		Image:     NewProfileImage(profile.Image, "flex-shrink-0"),
		Tweets:    p.stats.Tweets(profile.TweetsCount),
		Followers: p.stats.Followers(profile.FollowersCount),
		Follows:   p.stats.Follows(profile.FollowsCount),
		Posts:     posts.Posts(),
		HasMore:   posts.HasMore(),
	}

	viewer, ok := session.FromContext(ctx)
	if ok && viewer.UserID != p.id {
		btn := &FollowButton{Label: "Follow", Pending: toggling}
		if profile.IsFollowing {
			btn.Label = "Unfollow"
			btn.Gray = true
		}
		v.Follow = btn
	}
	return v
}

// ToggleFollow follows or unfollows the user for the viewer in ctx.
func (p *ProfilePage) ToggleFollow(ctx context.Context) mutation.Result {
	p.mu.Lock()
	p.toggling = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.toggling = false
		p.mu.Unlock()
	}()

	return p.runner.Run(ctx, mutation.Mutation{
		Type:    mutation.ToggleFollow,
		Payload: mutation.ToggleFollowInput{UserID: p.id},
	})
}

// Subscribe calls render with a fresh view whenever the profile or the
// user's posts change in the store. The returned function stops it.
func (p *ProfilePage) Subscribe(ctx context.Context, render func(ProfilePageView)) (unsubscribe func()) {
	match := cache.AnyOf(feed.ProfileKey(p.id), feed.FeedKey(p.feedFilter()))
	return p.store.Subscribe(match, func(cache.Change) {
		render(p.Render(ctx))
	})
}
