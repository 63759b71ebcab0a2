// Package config loads the feedd configuration from a TOML file. Every
// section starts from its package defaults, so a file only needs the
// settings it changes.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-feed-cache/cache"
	"github.com/goliatone/go-feed-cache/internal/database"
	"github.com/goliatone/go-feed-cache/internal/httpapi"
	"github.com/goliatone/go-feed-cache/internal/logging"
	"github.com/goliatone/go-feed-cache/social"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full application configuration.
type Config struct {
	Cache    cache.Config    `koanf:"cache"`
	Database database.Config `koanf:"database"`
	HTTP     httpapi.Config  `koanf:"http"`
	Log      logging.Config  `koanf:"log"`
	Feed     Feed            `koanf:"feed"`
}

// Feed tunes feed pagination.
type Feed struct {
	PageSize int `koanf:"page_size"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Cache:    cache.DefaultConfig(),
		Database: database.DefaultConfig(),
		HTTP:     httpapi.DefaultConfig(),
		Log:      logging.DefaultConfig(),
		Feed:     Feed{PageSize: social.DefaultPageSize},
	}
}

// Load reads path over the defaults and validates the result. An empty
// path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, goerrors.Wrap(err, goerrors.CategoryNotFound, fmt.Sprintf("config file %s not found", path))
		}
		return Config{}, goerrors.Wrap(err, goerrors.CategoryBadInput, fmt.Sprintf("error loading config file %s", path))
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "error unmarshaling config")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Cache.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid cache config")
	}
	if err := c.Database.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid database config")
	}

	err := validation.Errors{
		"http": validation.ValidateStruct(&c.HTTP,
			validation.Field(&c.HTTP.Addr, validation.Required),
			validation.Field(&c.HTTP.MaxBodyBytes, validation.Min(int64(1))),
		),
		"log": validation.ValidateStruct(&c.Log,
			validation.Field(&c.Log.Level, validation.Required,
				validation.In("debug", "info", "warn", "error", "dpanic", "panic", "fatal")),
			validation.Field(&c.Log.Format, validation.In(logging.FormatConsole, logging.FormatJSON)),
		),
		"feed": validation.ValidateStruct(&c.Feed,
			validation.Field(&c.Feed.PageSize, validation.Min(1), validation.Max(social.MaxPageSize)),
		),
	}.Filter()
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid config")
	}
	return nil
}
