package social

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema creates the tables and indexes used by the service. It is
// idempotent.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	tables := []struct {
		model any
		fks   []string
	}{
		{model: (*User)(nil)},
		{model: (*Post)(nil), fks: []string{
			`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
		}},
		{model: (*Follow)(nil), fks: []string{
			`("follower_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
			`("following_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
		}},
		{model: (*Like)(nil), fks: []string{
			`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
			`("post_id") REFERENCES "tweets" ("id") ON DELETE CASCADE`,
		}},
	}

	for _, table := range tables {
		q := db.NewCreateTable().Model(table.model).IfNotExists()
		for _, fk := range table.fks {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table %T: %w", table.model, err)
		}
	}

	indexes := []struct {
		model   any
		name    string
		columns []string
	}{
		{model: (*Post)(nil), name: "tweets_created_idx", columns: []string{"created_at", "id"}},
		{model: (*Post)(nil), name: "tweets_user_created_idx", columns: []string{"user_id", "created_at", "id"}},
		{model: (*Follow)(nil), name: "follows_following_idx", columns: []string{"following_id"}},
		{model: (*Like)(nil), name: "likes_post_idx", columns: []string{"post_id"}},
	}

	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}
