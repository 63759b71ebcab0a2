package di

import (
	"github.com/goliatone/go-feed-cache/cache"
	"github.com/goliatone/go-feed-cache/internal/cacheinfra"
	"github.com/goliatone/go-feed-cache/mutation"
	"go.uber.org/zap"
)

// Container wires the per-session components: one Store per session over
// the configured backend, and a Coordinator bound to it. The gateway,
// logger and metrics are shared by every session it creates.
type Container struct {
	config   cache.Config
	gateway  mutation.Gateway
	logger   *zap.Logger
	metrics  *mutation.Metrics
	patchers map[mutation.Type]mutation.Patcher
}

// Option configures a Container.
type Option func(*Container)

// WithGateway sets the gateway used by session coordinators.
func WithGateway(g mutation.Gateway) Option {
	return func(c *Container) {
		c.gateway = g
	}
}

// WithLogger sets the logger handed to stores and coordinators.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the mutation metrics shared by every session.
func WithMetrics(m *mutation.Metrics) Option {
	return func(c *Container) {
		c.metrics = m
	}
}

// WithPatcher overrides the patcher registered for t in every session.
func WithPatcher(t mutation.Type, p mutation.Patcher) Option {
	return func(c *Container) {
		if c.patchers == nil {
			c.patchers = make(map[mutation.Type]mutation.Patcher)
		}
		c.patchers[t] = p
	}
}

// NewContainer creates a new DI container with the provided cache configuration.
// The configuration is validated up front so session creation only fails
// when the backend itself cannot be built.
func NewContainer(config cache.Config, opts ...Option) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		config: config,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewContainerWithDefaults creates a new DI container using default configuration.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// NewStore creates an empty Store over a fresh backend.
func (c *Container) NewStore() (*cache.Store, error) {
	backend, err := cacheinfra.NewBackend(c.config)
	if err != nil {
		return nil, err
	}
	return cache.NewStore(backend, cache.WithLogger(c.logger.Named("cache"))), nil
}

// Session is the state owned by one viewer: its cache and the coordinator
// that patches it. Close it when the viewer goes away.
type Session struct {
	Store       *cache.Store
	Coordinator *mutation.Coordinator
}

// Close releases the session store.
func (s *Session) Close() error {
	return s.Store.Close()
}

// NewSession creates a Store and a Coordinator bound to it. A gateway must
// have been configured with WithGateway.
func (c *Container) NewSession() (*Session, error) {
	if c.gateway == nil {
		return nil, &cache.ConfigError{Field: "Gateway", Message: "must be set to create sessions"}
	}

	store, err := c.NewStore()
	if err != nil {
		return nil, err
	}

	opts := []mutation.Option{mutation.WithLogger(c.logger.Named("mutation"))}
	if c.metrics != nil {
		opts = append(opts, mutation.WithMetrics(c.metrics))
	}
	coordinator := mutation.NewCoordinator(c.gateway, store, opts...)
	for t, p := range c.patchers {
		coordinator.Register(t, p)
	}

	return &Session{Store: store, Coordinator: coordinator}, nil
}
