package database

import (
	"context"
	"errors"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "postgres", mutate: func(c *Config) { c.Driver = DriverPostgres; c.DSN = "postgres://localhost/feed" }},
		{name: "unknown driver", mutate: func(c *Config) { c.Driver = "mysql" }, wantErr: "must be one of"},
		{name: "empty dsn", mutate: func(c *Config) { c.DSN = "" }, wantErr: "must not be empty"},
		{name: "negative conns", mutate: func(c *Config) { c.MaxOpenConns = -1 }, wantErr: "non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOpen_SQLite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DSN = "file:open_test?mode=memory&cache=shared"

	db, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.NewSelect().ColumnExpr("1").Scan(context.Background(), &n))
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql", DSN: "x"}, nil)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, IsRetryableError(nil))
	assert.False(t, IsRetryableError(errors.New("syntax error")))
	assert.True(t, IsRetryableError(errors.New("dial tcp: connection refused")))
	assert.True(t, IsRetryableError(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.False(t, IsRetryableError(sqlite3.Error{Code: sqlite3.ErrConstraint}))
}

func TestNoResult(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := NoResult(ctx, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	permanent := errors.New("syntax error")
	calls = 0
	err = NoResult(ctx, func(context.Context) error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}
