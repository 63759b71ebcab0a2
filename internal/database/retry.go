package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
)

var (
	maxElapsedTime  = 30 * time.Second
	initialInterval = 100 * time.Millisecond
	maxInterval     = 2 * time.Second
	maxRetries      = uint64(5)
)

// IsRetryableError reports whether err is a transient connection or lock
// failure worth retrying.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "connection reset by peer") ||
		strings.Contains(errMsg, "broken pipe") ||
		strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no connection") ||
		strings.Contains(errMsg, "i/o timeout") ||
		strings.Contains(errMsg, "the database system is starting up")
}

func newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(maxElapsedTime),
		backoff.WithInitialInterval(initialInterval),
		backoff.WithMaxInterval(maxInterval),
	), maxRetries)
	return backoff.WithContext(b, ctx)
}

// NoResult runs operation, retrying transient failures with exponential
// backoff. Non-retryable errors are returned at once.
func NoResult(ctx context.Context, operation func(context.Context) error) error {
	var lastErr error

	err := backoff.Retry(func() error {
		err := operation(ctx)
		if err != nil {
			if !IsRetryableError(err) {
				return backoff.Permanent(err)
			}
			lastErr = err
			return err
		}
		return nil
	}, newBackOff(ctx))
	if err != nil {
		if lastErr != nil && !errors.Is(err, lastErr) {
			return fmt.Errorf("database operation failed after retries: %w", lastErr)
		}
		return err
	}
	return nil
}

// Transaction runs fn in a transaction, retrying the whole transaction on
// transient failures.
func Transaction(ctx context.Context, db bun.IDB, fn func(context.Context, bun.Tx) error) error {
	return NoResult(ctx, func(ctx context.Context) error {
		return db.RunInTx(ctx, nil, fn)
	})
}
