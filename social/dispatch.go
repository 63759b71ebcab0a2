package social

import (
	"context"
	"fmt"

	"github.com/goliatone/go-feed-cache/mutation"
)

// Dispatch runs the procedure matching m.Type and returns its output.
func (s *Service) Dispatch(ctx context.Context, m mutation.Mutation) (any, error) {
	switch m.Type {
	case mutation.CreateTweet:
		in, ok := mutation.PayloadAs[mutation.CreateTweetInput](m)
		if !ok {
			return nil, payloadError(m)
		}
		return s.CreateTweet(ctx, in)
	case mutation.ToggleFollow:
		in, ok := mutation.PayloadAs[mutation.ToggleFollowInput](m)
		if !ok {
			return nil, payloadError(m)
		}
		return s.ToggleFollow(ctx, in)
	case mutation.ToggleLike:
		in, ok := mutation.PayloadAs[mutation.ToggleLikeInput](m)
		if !ok {
			return nil, payloadError(m)
		}
		return s.ToggleLike(ctx, in)
	}
	return nil, mutation.NewValidationError(fmt.Errorf("unknown mutation type %q", m.Type), m.Type)
}

func payloadError(m mutation.Mutation) error {
	return mutation.NewValidationError(fmt.Errorf("unexpected payload %T", m.Payload), m.Type)
}
