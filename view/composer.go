package view

import (
	"context"
	"sync"

	"github.com/goliatone/go-feed-cache/mutation"
	"github.com/goliatone/go-feed-cache/session"
)

// ComposerView is the rendered composer form.
type ComposerView struct {
	Visible     bool         `json:"visible"`
	Avatar      ProfileImage `json:"avatar"`
	Placeholder string       `json:"placeholder"`
	Value       string       `json:"value"`
	SubmitLabel string       `json:"submitLabel"`
	Pending     bool         `json:"pending"`
}

// Composer is the form used to write a new post. It is only shown to
// authenticated viewers.
type Composer struct {
	runner   Runner
	textarea Element

	mu      sync.Mutex
	value   string
	pending bool
}

// NewComposer returns a composer that posts through runner. textarea may be
// nil when the host has no measurable input.
func NewComposer(runner Runner, textarea Element) *Composer {
	c := &Composer{runner: runner, textarea: textarea}
	ResizeToContent(textarea)
	return c
}

// SetValue replaces the input text and resizes the text area.
func (c *Composer) SetValue(v string) {
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
	ResizeToContent(c.textarea)
}

// Value returns the input text.
func (c *Composer) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Render returns the view model for the viewer in ctx.
func (c *Composer) Render(ctx context.Context) ComposerView {
	viewer, ok := session.FromContext(ctx)
	if !ok {
		return ComposerView{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return ComposerView{
		Visible:     true,
		Avatar:      NewProfileImage(viewer.Image, ""),
		Placeholder: "What's happening?",
		Value:       c.value,
		SubmitLabel: "Tweet",
		Pending:     c.pending,
	}
}

// Submit posts the current text. The input is cleared only when the post
// was created; on failure the text is kept so the viewer can retry.
func (c *Composer) Submit(ctx context.Context) mutation.Result {
	if _, ok := session.FromContext(ctx); !ok {
		return mutation.Failed(mutation.NewUnauthorized(mutation.CreateTweet))
	}

	c.mu.Lock()
	content := c.value
	c.pending = true
	c.mu.Unlock()

	res := c.runner.Run(ctx, mutation.Mutation{
		Type:    mutation.CreateTweet,
		Payload: mutation.CreateTweetInput{Content: content},
	})

	c.mu.Lock()
	c.pending = false
	c.mu.Unlock()

	if res.OK() {
		c.SetValue("")
	}
	return res
}
