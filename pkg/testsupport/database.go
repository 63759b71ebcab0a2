package testsupport

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-feed-cache/internal/database"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// OpenSQLite opens a private in-memory sqlite database that is closed when
// the test ends. The schema is left to the caller.
func OpenSQLite(t *testing.T) *bun.DB {
	t.Helper()

	cfg := database.DefaultConfig()
	cfg.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	db, err := database.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SteppingClock returns a clock that starts at base and advances by step
// on every call, so rows created in sequence have distinct timestamps.
func SteppingClock(base time.Time, step time.Duration) func() time.Time {
	var n atomic.Int64
	return func() time.Time {
		return base.Add(time.Duration(n.Add(1)) * step)
	}
}
