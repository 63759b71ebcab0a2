package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-feed-cache/feed"
	"github.com/goliatone/go-feed-cache/mutation"
	"github.com/goliatone/go-feed-cache/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Backend is what the API exposes: the mutation dispatcher and the reads.
// *social.Service implements it.
type Backend interface {
	Dispatch(ctx context.Context, m mutation.Mutation) (any, error)
	ProfileByID(ctx context.Context, id string) (feed.Profile, error)
	InfiniteFeed(ctx context.Context, filter feed.Filter, cursor *feed.Cursor, limit int) (feed.Page, error)
}

// Authenticator resolves the viewer of a request. It returns false for
// anonymous requests.
type Authenticator func(r *http.Request) (session.Identity, bool)

// HeaderAuthenticator trusts the UserHeader and UserNameHeader headers. It
// is meant for development and for deployments behind an authenticating
// proxy.
func HeaderAuthenticator(r *http.Request) (session.Identity, bool) {
	id := r.Header.Get(UserHeader)
	if id == "" {
		return session.Identity{}, false
	}
	return session.Identity{UserID: id, Name: r.Header.Get(UserNameHeader)}, true
}

// Config holds the server options.
type Config struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
	Metrics         bool          `koanf:"metrics"`
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxBodyBytes:    1 << 20,
		Metrics:         true,
	}
}

// Server serves the feed API.
type Server struct {
	backend  Backend
	auth     Authenticator
	logger   *zap.Logger
	config   Config
	gatherer prometheus.Gatherer
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuthenticator replaces HeaderAuthenticator.
func WithAuthenticator(auth Authenticator) Option {
	return func(s *Server) {
		if auth != nil {
			s.auth = auth
		}
	}
}

// WithGatherer sets the registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewServer builds the router for backend.
func NewServer(backend Backend, config Config, opts ...Option) *Server {
	s := &Server{
		backend:  backend,
		auth:     HeaderAuthenticator,
		logger:   zap.NewNop(),
		config:   config,
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		s.logger.Info("HTTP server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.identity)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.config.Metrics && s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/mutations/{type}", s.handleMutation)
		r.Get("/profiles/{id}", s.handleProfile)
		r.Get("/feed", s.handleFeed)
	})
	return r
}

func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := session.Anonymous(r.Context())
		if id, ok := s.auth(r); ok {
			ctx = session.WithIdentity(r.Context(), id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) handleMutation(w http.ResponseWriter, r *http.Request) {
	t := mutation.Type(chi.URLParam(r, "type"))
	input, ok := mutation.NewInput(t)
	if !ok {
		writeError(w, mutation.NewValidationError(fmt.Errorf("unknown mutation type %q", t), t))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxBodyBytes))
	if err != nil {
		writeError(w, mutation.NewValidationError(err, t))
		return
	}
	if len(body) > 0 {
		if err := sonic.Unmarshal(body, input); err != nil {
			writeError(w, mutation.NewValidationError(err, t))
			return
		}
	}

	value, err := s.backend.Dispatch(r.Context(), mutation.Mutation{Type: t, Payload: input})
	if err != nil {
		s.logger.Info("mutation failed", zap.Stringer("mutation", t), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, value)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.backend.ProfileByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := feed.Filter{
		UserID:        query.Get("userId"),
		OnlyFollowing: query.Get("onlyFollowing") == "true",
	}

	cursor, err := parseCursor(query.Get("cursorId"), query.Get("cursorCreatedAt"))
	if err != nil {
		writeError(w, mutation.NewValidationError(err, "tweet.infiniteFeed"))
		return
	}

	limit := 0
	if v := query.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			writeError(w, mutation.NewValidationError(fmt.Errorf("limit: %w", err), "tweet.infiniteFeed"))
			return
		}
	}

	page, err := s.backend.InfiniteFeed(r.Context(), filter, cursor, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func parseCursor(id, createdAt string) (*feed.Cursor, error) {
	if id == "" && createdAt == "" {
		return nil, nil
	}
	at, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("cursorCreatedAt: %w", err)
	}
	return &feed.Cursor{ID: id, CreatedAt: at}, nil
}
