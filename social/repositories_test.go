package social

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/goliatone/go-feed-cache/pkg/testsupport"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotFound(t *testing.T) {
	db := testsupport.OpenSQLite(t)
	require.NoError(t, CreateSchema(context.Background(), db))

	_, missingUser := NewUserRepository(db).GetByID(context.Background(), uuid.NewString())
	require.Error(t, missingUser)
	_, missingPost := NewPostRepository(db).GetByID(context.Background(), uuid.NewString())
	require.Error(t, missingPost)

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "missing user", err: missingUser, want: true},
		{name: "missing post", err: missingPost, want: true},
		{name: "driver error", err: sql.ErrNoRows, want: true},
		{name: "other error", err: errors.New("connection reset"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNotFound(tt.err))
		})
	}

	// the repository reports a missing row with its own category
	assert.True(t, repository.IsRecordNotFound(missingUser))
}
