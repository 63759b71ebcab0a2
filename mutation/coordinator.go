package mutation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-feed-cache/cache"
	"github.com/goliatone/go-feed-cache/session"
	"go.uber.org/zap"
)

// Coordinator runs mutations against a Gateway and patches the session's
// Store once the gateway confirms them. Nothing is written to the Store
// before confirmation, so a failed mutation never needs a rollback.
type Coordinator struct {
	gateway Gateway
	store   *cache.Store
	logger  *zap.Logger
	metrics *Metrics

	mu        sync.RWMutex
	patchers  map[Type]Patcher
	observers []Observer
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records runs and patches in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithObserver registers an observer for lifecycle events.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// NewCoordinator creates a Coordinator with the default patchers.
func NewCoordinator(gateway Gateway, store *cache.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		gateway:  gateway,
		store:    store,
		logger:   zap.NewNop(),
		patchers: DefaultPatchers(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register replaces the patcher for t. A nil patcher disables cache
// updates for t.
func (c *Coordinator) Register(t Type, p Patcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patchers[t] = p
}

// Observe adds an observer after construction.
func (c *Coordinator) Observe(o Observer) {
	if o == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// Store returns the cache the coordinator patches.
func (c *Coordinator) Store() *cache.Store {
	return c.store
}

// Run sends m to the gateway and, once it succeeds, applies the patcher
// registered for its type. It blocks until the gateway answers. Every
// failure, including a panicking gateway, is returned in the Result. A
// panicking patcher or observer is logged and does not change the Result.
func (c *Coordinator) Run(ctx context.Context, m Mutation) (result Result) {
	logger := c.logger.With(zap.Stringer("mutation", m.Type))

	viewer, err := c.check(ctx, m)
	if err != nil {
		logger.Debug("mutation rejected", zap.Error(err))
		c.metrics.observeRun(m.Type, err, 0)
		res := Failed(err)
		c.emit(Event{Mutation: m, State: StateFailed, Result: res})
		return res
	}

	c.emit(Event{Mutation: m, State: StatePending})
	start := time.Now()
	res := c.send(ctx, m)
	c.metrics.observeRun(m.Type, res.Err, time.Since(start))

	if !res.OK() {
		logger.Info("mutation failed", zap.Stringer("kind", KindOf(res.Err)), zap.Error(res.Err))
		c.emit(Event{Mutation: m, State: StateFailed, Result: res})
		return res
	}

	c.apply(logger, Confirmed{Mutation: m, Value: res.Value, Viewer: viewer})
	c.emit(Event{Mutation: m, State: StateSucceeded, Result: res})
	return res
}

// RunAsync runs m on its own goroutine. The channel receives exactly one
// Result and is then closed.
func (c *Coordinator) RunAsync(ctx context.Context, m Mutation) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		ch <- c.Run(ctx, m)
	}()
	return ch
}

func (c *Coordinator) check(ctx context.Context, m Mutation) (session.Identity, error) {
	if !m.Type.Valid() {
		return session.Identity{}, NewValidationError(fmt.Errorf("unknown mutation type %q", m.Type), m.Type)
	}
	if err := validatePayload(m); err != nil {
		return session.Identity{}, err
	}
	viewer, ok := session.FromContext(ctx)
	if !ok {
		return session.Identity{}, NewUnauthorized(m.Type)
	}
	return viewer, nil
}

func (c *Coordinator) send(ctx context.Context, m Mutation) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("mutation gateway panicked", zap.Stringer("mutation", m.Type), zap.Any("panic", r))
			res = Failed(newInternal(fmt.Sprintf("gateway panic: %v", r)))
		}
	}()
	return c.gateway.Send(ctx, m)
}

func (c *Coordinator) apply(logger *zap.Logger, confirmed Confirmed) {
	c.mu.RLock()
	patcher := c.patchers[confirmed.Mutation.Type]
	c.mu.RUnlock()

	if patcher == nil || c.store == nil {
		return
	}

	changed, err := c.patch(patcher, confirmed)
	if err != nil {
		// the mutation is committed; the cache stays stale until the next fetch
		logger.Error("cache patch failed", zap.Error(err))
		return
	}
	c.metrics.observePatched(confirmed.Mutation.Type, changed)
	logger.Debug("cache patched", zap.Int("changed", changed))
}

// patch runs patcher, turning a panic into an error so a committed
// mutation is still reported as a success.
func (c *Coordinator) patch(patcher Patcher, confirmed Confirmed) (changed int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newInternal(fmt.Sprintf("patcher panic: %v", r))
		}
	}()
	return patcher(c.store, confirmed)
}

func (c *Coordinator) emit(e Event) {
	c.mu.RLock()
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.mu.RUnlock()

	for _, o := range observers {
		c.notify(o, e)
	}
}

func (c *Coordinator) notify(o Observer, e Event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("mutation observer panicked",
				zap.Stringer("mutation", e.Mutation.Type),
				zap.Stringer("state", e.State),
				zap.Any("panic", r))
		}
	}()
	o(e)
}

type validatable interface {
	Validate() error
}

func validatePayload(m Mutation) error {
	var err error
	switch m.Type {
	case CreateTweet:
		err = validateAs[CreateTweetInput](m.Payload)
	case ToggleFollow:
		err = validateAs[ToggleFollowInput](m.Payload)
	case ToggleLike:
		err = validateAs[ToggleLikeInput](m.Payload)
	}
	if err != nil {
		return NewValidationError(err, m.Type)
	}
	return nil
}

func validateAs[T validatable](payload any) error {
	in, ok := as[T](payload)
	if !ok {
		return fmt.Errorf("payload must be %T, got %T", in, payload)
	}
	return in.Validate()
}
