package gateway

import (
	"context"

	"github.com/goliatone/go-feed-cache/feed"
	"github.com/goliatone/go-feed-cache/mutation"
	"github.com/goliatone/go-feed-cache/social"
)

// Local calls a social.Service in the same process.
type Local struct {
	service  *social.Service
	pageSize int
}

// NewLocal returns a gateway backed by service. pageSize of 0 uses the
// service default.
func NewLocal(service *social.Service, pageSize int) *Local {
	return &Local{service: service, pageSize: pageSize}
}

var (
	_ mutation.Gateway = (*Local)(nil)
	_ Querier          = (*Local)(nil)
)

// Send dispatches m to the service procedure for its type.
func (l *Local) Send(ctx context.Context, m mutation.Mutation) mutation.Result {
	value, err := l.service.Dispatch(ctx, m)
	if err != nil {
		return mutation.Failed(err)
	}
	return mutation.Succeeded(value)
}

func (l *Local) Profile(ctx context.Context, id string) (feed.Profile, error) {
	return l.service.ProfileByID(ctx, id)
}

func (l *Local) FeedPage(ctx context.Context, filter feed.Filter, cursor *feed.Cursor) (feed.Page, error) {
	return l.service.InfiniteFeed(ctx, filter, cursor, l.pageSize)
}
