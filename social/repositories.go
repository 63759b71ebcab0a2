package social

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewUserRepository returns the generic repository for users. Users are
// also addressable by email through GetByIdentifier.
func NewUserRepository(db *bun.DB) repository.Repository[*User] {
	return repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User {
			return &User{}
		},
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			u.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
	})
}

// NewPostRepository returns the generic repository for posts.
func NewPostRepository(db *bun.DB) repository.Repository[*Post] {
	return repository.NewRepository[*Post](db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post {
			return &Post{}
		},
		GetID: func(p *Post) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
	})
}

// isNotFound reports a missing record, whether it comes back as the raw
// driver error or as the repository's database_not_found category.
func isNotFound(err error) bool {
	return repository.IsRecordNotFound(err)
}
