package database

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// QueryHook implements bun.QueryHook interface for logging queries with zap.
type QueryHook struct {
	logger *zap.Logger
}

// NewQueryHook creates a new QueryHook with zap logger.
func NewQueryHook(logger *zap.Logger) *QueryHook {
	return &QueryHook{logger: logger}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if event.Err != nil {
		h.logger.Error("Query failed",
			zap.String("operation", event.Operation()),
			zap.String("query", event.Query),
			zap.Duration("duration", time.Since(event.StartTime)),
			zap.Error(event.Err))
		return
	}
	h.logger.Debug("Query executed",
		zap.String("operation", event.Operation()),
		zap.String("query", event.Query),
		zap.Duration("duration", time.Since(event.StartTime)))
}
