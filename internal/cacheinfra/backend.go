package cacheinfra

import "github.com/goliatone/go-feed-cache/cache"

// NewBackend builds the backend selected by cfg.Backend.
func NewBackend(cfg cache.Config) (cache.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend == cache.BackendSturdyc {
		return NewSturdycBackend(cfg)
	}
	return NewMemoryBackend(), nil
}
