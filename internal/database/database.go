package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bunjson"
	"go.uber.org/zap"
)

// sonicProvider is a JSON provider that uses Sonic for encoding and decoding.
type sonicProvider struct{}

func (sonicProvider) Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

func (sonicProvider) Unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

func (sonicProvider) NewEncoder(w io.Writer) bunjson.Encoder {
	return sonic.ConfigDefault.NewEncoder(w)
}

func (sonicProvider) NewDecoder(r io.Reader) bunjson.Decoder {
	return sonic.ConfigDefault.NewDecoder(r)
}

// Open connects to the database described by cfg and waits, with retries,
// until it answers a ping.
//
// sqlite connections are limited to a single writer, so MaxOpenConns is
// forced to 1 and foreign keys are enabled on the connection.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*bun.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sqldb, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var db *bun.DB
	switch cfg.Driver {
	case DriverSQLite:
		sqldb.SetMaxOpenConns(1)
		sqldb.SetMaxIdleConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
		db = bun.NewDB(sqldb, pgdialect.New())
	}
	sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	bunjson.SetProvider(sonicProvider{})
	db.AddQueryHook(NewQueryHook(logger))

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := NoResult(pingCtx, db.PingContext); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	logger.Info("Database connection established", zap.String("driver", cfg.Driver))
	return db, nil
}
