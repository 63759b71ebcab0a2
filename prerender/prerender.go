// Package prerender builds cache snapshots for statically generated pages.
// A snapshot is produced on the server with an anonymous viewer and handed
// to the client, which hydrates its own Store from it before the first
// render so the page does not refetch what was already loaded.
package prerender

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-feed-cache/cache"
	"github.com/goliatone/go-feed-cache/feed"
	"github.com/goliatone/go-feed-cache/gateway"
	"github.com/goliatone/go-feed-cache/session"
	"go.uber.org/zap"
)

// Entry kinds stored in a snapshot.
const (
	KindProfile = "profile"
	KindFeed    = "feed"
)

// Snapshot is the serializable state of a Store.
type Snapshot struct {
	Entries []Entry `json:"entries"`
}

// Entry is one dehydrated cache entry. Exactly one of Profile and Feed is
// set, matching Kind.
type Entry struct {
	Key     string        `json:"key"`
	Kind    string        `json:"kind"`
	Profile *feed.Profile `json:"profile,omitempty"`
	Feed    *feed.Feed    `json:"feed,omitempty"`
}

// Page is what a statically generated profile page receives.
type Page struct {
	ID    string   `json:"id"`
	State Snapshot `json:"state"`
}

// StoreFactory creates the empty Store a render fills.
type StoreFactory func() (*cache.Store, error)

// Helper prefetches the queries of a page into a fresh Store.
type Helper struct {
	querier  gateway.Querier
	newStore StoreFactory
	logger   *zap.Logger
}

// Option configures a Helper.
type Option func(*Helper)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Helper) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHelper returns a Helper reading through q. newStore is called once
// per render.
func NewHelper(q gateway.Querier, newStore StoreFactory, opts ...Option) *Helper {
	h := &Helper{
		querier:  q,
		newStore: newStore,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ProfilePage prefetches the profile of id with an anonymous viewer and
// returns the page props. An empty id is a validation error; a missing
// profile fails with a NotFound error.
func (h *Helper) ProfilePage(ctx context.Context, id string) (Page, error) {
	if id == "" {
		return Page{}, goerrors.NewValidation("no id provided",
			goerrors.FieldError{Field: "id", Message: "cannot be blank"})
	}

	store, err := h.newStore()
	if err != nil {
		return Page{}, goerrors.Wrap(err, goerrors.CategoryInternal, "create prerender store")
	}
	defer store.Close()

	// a static page is shared by every visitor, so nothing viewer specific
	// may end up in it
	ctx = session.Anonymous(ctx)
	if _, err := gateway.FetchProfile(ctx, store, h.querier, id); err != nil {
		return Page{}, err
	}

	snapshot := Dehydrate(store)
	h.logger.Debug("profile page prerendered", zap.String("id", id), zap.Int("entries", len(snapshot.Entries)))
	return Page{ID: id, State: snapshot}, nil
}

// Dehydrate captures every profile and feed entry of store. Entries of
// other types are skipped.
func Dehydrate(store *cache.Store) Snapshot {
	snapshot := Snapshot{Entries: []Entry{}}
	for _, key := range store.Keys() {
		v, ok := store.Get(key)
		if !ok {
			continue
		}
		switch entry := v.(type) {
		case feed.Profile:
			snapshot.Entries = append(snapshot.Entries, Entry{Key: key.String(), Kind: KindProfile, Profile: &entry})
		case feed.Feed:
			snapshot.Entries = append(snapshot.Entries, Entry{Key: key.String(), Kind: KindFeed, Feed: &entry})
		}
	}
	slices.SortFunc(snapshot.Entries, func(a, b Entry) int {
		return strings.Compare(a.Key, b.Key)
	})
	return snapshot
}

// Hydrate writes every entry of snapshot into store, replacing what it
// holds for the same keys.
func Hydrate(store *cache.Store, snapshot Snapshot) error {
	for _, entry := range snapshot.Entries {
		key := cache.ParseQueryKey(entry.Key)
		if key.IsZero() {
			return goerrors.New("snapshot entry without key", goerrors.CategoryBadInput)
		}

		switch {
		case entry.Kind == KindProfile && entry.Profile != nil:
			store.Set(key, *entry.Profile)
		case entry.Kind == KindFeed && entry.Feed != nil:
			store.Set(key, *entry.Feed)
		default:
			return goerrors.New(fmt.Sprintf("snapshot entry %s has unknown kind %q", entry.Key, entry.Kind), goerrors.CategoryBadInput)
		}
	}
	return nil
}

// Marshal encodes page as JSON.
func Marshal(page Page) ([]byte, error) {
	data, err := sonic.Marshal(page)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "encode prerendered page")
	}
	return data, nil
}

// Unmarshal decodes a page produced by Marshal.
func Unmarshal(data []byte) (Page, error) {
	var page Page
	if err := sonic.Unmarshal(data, &page); err != nil {
		return Page{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "decode prerendered page")
	}
	return page, nil
}
