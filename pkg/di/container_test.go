package di

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-feed-cache/cache"
	"github.com/goliatone/go-feed-cache/feed"
	"github.com/goliatone/go-feed-cache/mutation"
	"github.com/goliatone/go-feed-cache/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func followGateway(added bool) mutation.Gateway {
	return mutation.GatewayFunc(func(ctx context.Context, m mutation.Mutation) mutation.Result {
		return mutation.Succeeded(mutation.ToggleFollowOutput{AddedFollower: added})
	})
}

func TestNewContainer(t *testing.T) {
	config := cache.Config{
		Backend:            cache.BackendSturdyc,
		Capacity:           1000,
		NumShards:          16,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
		LockStripes:        8,
	}

	container, err := NewContainer(config)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	if container == nil {
		t.Fatal("NewContainer() returned nil container")
	}

	storedConfig := container.Config()
	if storedConfig.Capacity != config.Capacity {
		t.Errorf("Expected capacity %d, got %d", config.Capacity, storedConfig.Capacity)
	}

	if storedConfig.TTL != config.TTL {
		t.Errorf("Expected TTL %v, got %v", config.TTL, storedConfig.TTL)
	}
}

func TestNewContainerWithDefaults(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	config := container.Config()
	defaultConfig := cache.DefaultConfig()

	if config.Backend != defaultConfig.Backend {
		t.Errorf("Expected default backend %q, got %q", defaultConfig.Backend, config.Backend)
	}

	if config.TTL != defaultConfig.TTL {
		t.Errorf("Expected default TTL %v, got %v", defaultConfig.TTL, config.TTL)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	invalidConfig := cache.Config{
		Backend:            cache.BackendSturdyc,
		Capacity:           0, // Invalid: must be > 0
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
		LockStripes:        8,
	}

	_, err := NewContainer(invalidConfig)
	if err == nil {
		t.Fatal("NewContainer() should fail with invalid config")
	}

	var cfgErr *cache.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "Capacity" {
		t.Errorf("expected a Capacity ConfigError, got %v", err)
	}
}

func TestNewSession_RequiresGateway(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	if _, err := container.NewSession(); err == nil {
		t.Error("NewSession() should fail without a gateway")
	}
}

func TestNewSession_StoresAreIsolated(t *testing.T) {
	for _, backend := range []string{cache.BackendMemory, cache.BackendSturdyc} {
		t.Run(backend, func(t *testing.T) {
			config := cache.DefaultConfig()
			config.Backend = backend

			container, err := NewContainer(config, WithGateway(followGateway(true)))
			if err != nil {
				t.Fatalf("NewContainer() failed: %v", err)
			}

			first, err := container.NewSession()
			if err != nil {
				t.Fatalf("NewSession() failed: %v", err)
			}
			defer first.Close()

			second, err := container.NewSession()
			if err != nil {
				t.Fatalf("NewSession() failed: %v", err)
			}
			defer second.Close()

			if first.Store == second.Store {
				t.Fatal("sessions must not share a store")
			}
			if first.Coordinator.Store() != first.Store {
				t.Error("session coordinator should patch the session store")
			}

			key := feed.ProfileKey("u1")
			first.Store.Set(key, feed.Profile{Name: "Ann"})
			if _, ok := second.Store.Get(key); ok {
				t.Error("entry set in one session leaked into another")
			}
		})
	}
}

func TestNewSession_CoordinatorPatchesSessionStore(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := mutation.NewMetrics(mutation.WithRegistry(registry))

	container, err := NewContainerWithDefaults(
		WithGateway(followGateway(true)),
		WithMetrics(metrics),
	)
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	s, err := container.NewSession()
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	defer s.Close()

	key := feed.ProfileKey("u2")
	s.Store.Set(key, feed.Profile{Name: "Bo", FollowersCount: 10})

	ctx := session.WithIdentity(context.Background(), session.Identity{UserID: "u1"})
	res := s.Coordinator.Run(ctx, mutation.Mutation{
		Type:    mutation.ToggleFollow,
		Payload: mutation.ToggleFollowInput{UserID: "u2"},
	})
	if !res.OK() {
		t.Fatalf("Run() failed: %v", res.Err)
	}

	profile, _ := cache.Get[feed.Profile](s.Store, key)
	if profile.FollowersCount != 11 || !profile.IsFollowing {
		t.Errorf("profile = %+v, want 11 followers and following", profile)
	}

	if n := testutil.CollectAndCount(registry, "feed_mutation_runs_total"); n == 0 {
		t.Error("shared metrics should record session runs")
	}
}

func TestWithPatcher_OverridesDefault(t *testing.T) {
	var calls int
	container, err := NewContainerWithDefaults(
		WithGateway(followGateway(true)),
		WithPatcher(mutation.ToggleFollow, func(store *cache.Store, c mutation.Confirmed) (int, error) {
			calls++
			return 0, nil
		}),
	)
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	s, err := container.NewSession()
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	defer s.Close()

	key := feed.ProfileKey("u2")
	s.Store.Set(key, feed.Profile{FollowersCount: 1})

	ctx := session.WithIdentity(context.Background(), session.Identity{UserID: "u1"})
	s.Coordinator.Run(ctx, mutation.Mutation{Type: mutation.ToggleFollow, Payload: mutation.ToggleFollowInput{UserID: "u2"}})

	if calls != 1 {
		t.Errorf("expected custom patcher to run once, ran %d times", calls)
	}
	profile, _ := cache.Get[feed.Profile](s.Store, key)
	if profile.FollowersCount != 1 {
		t.Error("default patcher should have been replaced")
	}
}

func TestSession_Close(t *testing.T) {
	container, err := NewContainerWithDefaults(WithGateway(followGateway(true)))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	s, err := container.NewSession()
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}

	s.Store.Set(feed.ProfileKey("u1"), feed.Profile{})
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if s.Store.Len() != 0 {
		t.Errorf("expected empty store after Close, got %d entries", s.Store.Len())
	}
}
