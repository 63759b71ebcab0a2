package cache

import "time"

// Backend kinds understood by the DI container.
const (
	BackendMemory  = "memory"
	BackendSturdyc = "sturdyc"
)

// Config selects and tunes the backend behind a Store.
type Config struct {
	// Backend is either BackendMemory (no expiry) or BackendSturdyc (TTL and
	// capacity based eviction).
	Backend string `koanf:"backend"`

	// Capacity is the maximum number of entries held by the sturdyc backend.
	Capacity int `koanf:"capacity"`

	// NumShards is the number of sturdyc shards.
	NumShards int `koanf:"num_shards"`

	// TTL is how long a fetched entry is trusted before it must be refetched.
	TTL time.Duration `koanf:"ttl"`

	// EvictionPercentage is the share of entries evicted when a shard is full (1-100).
	EvictionPercentage int `koanf:"eviction_percentage"`

	// EvictionInterval sets how often expired entries are swept. Zero keeps
	// the sturdyc default.
	EvictionInterval time.Duration `koanf:"eviction_interval"`

	// LockStripes is the number of mutexes used to serialize writes per key
	// on backends without native atomic updates.
	LockStripes int `koanf:"lock_stripes"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:            BackendMemory,
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
		LockStripes:        64,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendSturdyc:
	default:
		return &ConfigError{Field: "Backend", Message: "must be one of memory, sturdyc"}
	}

	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}
	if c.LockStripes <= 0 {
		return &ConfigError{Field: "LockStripes", Message: "must be greater than 0"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
