package mutation

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Type names a mutation. The set is closed: a Coordinator only runs the
// types listed here.
type Type string

const (
	CreateTweet  Type = "tweet.create"
	ToggleFollow Type = "profile.toggleFollow"
	ToggleLike   Type = "tweet.toggleLike"
)

// Types lists every supported mutation type.
func Types() []Type {
	return []Type{CreateTweet, ToggleFollow, ToggleLike}
}

// Valid reports whether t is a supported mutation type.
func (t Type) Valid() bool {
	switch t {
	case CreateTweet, ToggleFollow, ToggleLike:
		return true
	}
	return false
}

func (t Type) String() string { return string(t) }

// MaxContentLength bounds the length of a post.
const MaxContentLength = 280

// Mutation is a request to change server state. Payload holds the input
// struct matching Type, as a value or a pointer.
type Mutation struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload"`
}

type CreateTweetInput struct {
	Content string `json:"content"`
}

func (in CreateTweetInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Content, validation.Required, validation.RuneLength(1, MaxContentLength)),
	)
}

type CreateTweetOutput struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type ToggleFollowInput struct {
	UserID string `json:"userId"`
}

func (in ToggleFollowInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.UserID, validation.Required),
	)
}

type ToggleFollowOutput struct {
	AddedFollower bool `json:"addedFollower"`
}

type ToggleLikeInput struct {
	ID string `json:"id"`
}

func (in ToggleLikeInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ID, validation.Required),
	)
}

type ToggleLikeOutput struct {
	AddedLike bool `json:"addedLike"`
}

// NewInput returns a pointer to a zero input for t, ready to be decoded into.
func NewInput(t Type) (any, bool) {
	switch t {
	case CreateTweet:
		return &CreateTweetInput{}, true
	case ToggleFollow:
		return &ToggleFollowInput{}, true
	case ToggleLike:
		return &ToggleLikeInput{}, true
	}
	return nil, false
}

// NewOutput returns a pointer to a zero output for t, ready to be decoded into.
func NewOutput(t Type) (any, bool) {
	switch t {
	case CreateTweet:
		return &CreateTweetOutput{}, true
	case ToggleFollow:
		return &ToggleFollowOutput{}, true
	case ToggleLike:
		return &ToggleLikeOutput{}, true
	}
	return nil, false
}

// PayloadAs returns the payload of m as a T, accepting a T or a *T.
func PayloadAs[T any](m Mutation) (T, bool) {
	return as[T](m.Payload)
}

// ValueAs returns the output held by r as a T, accepting a T or a *T.
func ValueAs[T any](r Result) (T, bool) {
	return as[T](r.Value)
}

// Result is the outcome of a mutation: the gateway's typed output on
// success, the failure reason otherwise.
type Result struct {
	Value any
	Err   error
}

// OK reports whether the mutation succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Succeeded builds a successful Result.
func Succeeded(v any) Result { return Result{Value: v} }

// Failed builds a failed Result.
func Failed(err error) Result { return Result{Err: err} }

// Gateway applies mutations against the source of truth. Send blocks until
// the gateway answers or ctx is done; it reports every failure through the
// Result.
type Gateway interface {
	Send(ctx context.Context, m Mutation) Result
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, m Mutation) Result

func (f GatewayFunc) Send(ctx context.Context, m Mutation) Result { return f(ctx, m) }

// State is the lifecycle stage of a mutation.
type State int

const (
	StatePending State = iota
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Event is delivered to observers on every lifecycle transition. Result is
// the zero value while the mutation is pending.
type Event struct {
	Mutation Mutation
	State    State
	Result   Result
}

// Observer receives lifecycle events.
type Observer func(Event)
