// Package view holds the presentation components of the feed: the post
// composer, the profile page and the profile image. Components read from a
// session cache.Store, run mutations through a Runner and render to plain
// view models that the host UI toolkit binds to its widgets.
package view

import (
	"context"

	"github.com/goliatone/go-feed-cache/mutation"
)

// Element is a multi-line text input whose height can be measured and set.
type Element interface {
	SetHeight(px int)
	ScrollHeight() int
}

// ResizeToContent makes el exactly as tall as its content. The height is
// reset to zero first because the scroll height includes the current
// height, so skipping the reset would only ever let the input grow.
func ResizeToContent(el Element) {
	if el == nil {
		return
	}
	el.SetHeight(0)
	el.SetHeight(el.ScrollHeight())
}

// Runner runs a mutation to completion. *mutation.Coordinator implements it.
type Runner interface {
	Run(ctx context.Context, m mutation.Mutation) mutation.Result
}
