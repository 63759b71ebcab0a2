package social

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-feed-cache/feed"
	"github.com/goliatone/go-feed-cache/internal/database"
	"github.com/goliatone/go-feed-cache/mutation"
	"github.com/goliatone/go-feed-cache/session"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Service implements the server side procedures: profile lookup, follow
// and like toggles, posting and the infinite feeds. The viewer is read
// from the context with session.FromContext.
type Service struct {
	db     *bun.DB
	users  repository.Repository[*User]
	posts  repository.Repository[*Post]
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source used to stamp new posts.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service on db.
func NewService(db *bun.DB, opts ...Option) *Service {
	s := &Service{
		db:     db,
		users:  NewUserRepository(db),
		posts:  NewPostRepository(db),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers a user.
func (s *Service) CreateUser(ctx context.Context, name, email, image string) (*User, error) {
	if name == "" {
		return nil, goerrors.NewValidation("invalid user", goerrors.FieldError{Field: "name", Message: "cannot be blank"})
	}
	user := &User{ID: uuid.New(), Name: name, Email: email, Image: image, CreatedAt: s.now().UTC()}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "create user")
	}
	return created, nil
}

// UserByEmail looks a user up by email.
func (s *Service) UserByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.users.GetByIdentifier(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, mutation.NewNotFound("user not found")
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "get user")
	}
	return user, nil
}

// ProfileByID returns the public profile of user id with its counters.
// IsFollowing is true when the viewer follows id; it is always false for
// anonymous viewers.
func (s *Service) ProfileByID(ctx context.Context, id string) (feed.Profile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return feed.Profile{}, mutation.NewNotFound("Profile not found")
		}
		return feed.Profile{}, goerrors.Wrap(err, goerrors.CategoryInternal, "get profile")
	}

	profile := feed.Profile{Name: user.Name, Image: user.Image}

	if profile.FollowersCount, err = s.db.NewSelect().Model((*Follow)(nil)).
		Where("following_id = ?", id).Count(ctx); err != nil {
		return feed.Profile{}, goerrors.Wrap(err, goerrors.CategoryInternal, "count followers")
	}
	if profile.FollowsCount, err = s.db.NewSelect().Model((*Follow)(nil)).
		Where("follower_id = ?", id).Count(ctx); err != nil {
		return feed.Profile{}, goerrors.Wrap(err, goerrors.CategoryInternal, "count follows")
	}
	if profile.TweetsCount, err = s.posts.Count(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("user_id = ?", id)
	}); err != nil {
		return feed.Profile{}, goerrors.Wrap(err, goerrors.CategoryInternal, "count tweets")
	}

	if viewer := session.UserID(ctx); viewer != "" {
		profile.IsFollowing, err = s.db.NewSelect().Model((*Follow)(nil)).
			Where("follower_id = ?", viewer).
			Where("following_id = ?", id).
			Exists(ctx)
		if err != nil {
			return feed.Profile{}, goerrors.Wrap(err, goerrors.CategoryInternal, "check follow")
		}
	}
	return profile, nil
}

// ToggleFollow makes the viewer follow in.UserID, or stop following when
// the edge already exists.
func (s *Service) ToggleFollow(ctx context.Context, in mutation.ToggleFollowInput) (mutation.ToggleFollowOutput, error) {
	viewer, err := s.viewer(ctx, mutation.ToggleFollow)
	if err != nil {
		return mutation.ToggleFollowOutput{}, err
	}
	if err := in.Validate(); err != nil {
		return mutation.ToggleFollowOutput{}, mutation.NewValidationError(err, mutation.ToggleFollow)
	}
	if in.UserID == viewer.String() {
		return mutation.ToggleFollowOutput{}, goerrors.NewValidation("invalid profile.toggleFollow payload",
			goerrors.FieldError{Field: "userId", Message: "cannot follow yourself"})
	}

	target, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		if isNotFound(err) {
			return mutation.ToggleFollowOutput{}, mutation.NewNotFound("Profile not found")
		}
		return mutation.ToggleFollowOutput{}, goerrors.Wrap(err, goerrors.CategoryInternal, "get profile")
	}

	var added bool
	err = database.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		edge := &Follow{FollowerID: viewer, FollowingID: target.ID, CreatedAt: s.now().UTC()}
		res, err := tx.NewDelete().Model(edge).WherePK().Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n > 0 {
			added = false
			return nil
		}
		if _, err := tx.NewInsert().Model(edge).Exec(ctx); err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		return mutation.ToggleFollowOutput{}, goerrors.Wrap(err, goerrors.CategoryInternal, "toggle follow")
	}

	s.logger.Debug("follow toggled",
		zap.Stringer("follower", viewer),
		zap.Stringer("following", target.ID),
		zap.Bool("added", added))
	return mutation.ToggleFollowOutput{AddedFollower: added}, nil
}

// CreateTweet stores a post authored by the viewer.
func (s *Service) CreateTweet(ctx context.Context, in mutation.CreateTweetInput) (mutation.CreateTweetOutput, error) {
	viewer, err := s.viewer(ctx, mutation.CreateTweet)
	if err != nil {
		return mutation.CreateTweetOutput{}, err
	}
	if err := in.Validate(); err != nil {
		return mutation.CreateTweetOutput{}, mutation.NewValidationError(err, mutation.CreateTweet)
	}

	post := &Post{
		ID:        uuid.New(),
		UserID:    viewer,
		Content:   in.Content,
		CreatedAt: s.now().UTC(),
	}
	created, err := s.posts.Create(ctx, post)
	if err != nil {
		return mutation.CreateTweetOutput{}, goerrors.Wrap(err, goerrors.CategoryInternal, "create tweet")
	}

	return mutation.CreateTweetOutput{
		ID:        created.ID.String(),
		Content:   created.Content,
		CreatedAt: created.CreatedAt,
	}, nil
}

// ToggleLike likes post in.ID for the viewer, or removes the like.
func (s *Service) ToggleLike(ctx context.Context, in mutation.ToggleLikeInput) (mutation.ToggleLikeOutput, error) {
	viewer, err := s.viewer(ctx, mutation.ToggleLike)
	if err != nil {
		return mutation.ToggleLikeOutput{}, err
	}
	if err := in.Validate(); err != nil {
		return mutation.ToggleLikeOutput{}, mutation.NewValidationError(err, mutation.ToggleLike)
	}

	post, err := s.posts.GetByID(ctx, in.ID)
	if err != nil {
		if isNotFound(err) {
			return mutation.ToggleLikeOutput{}, mutation.NewNotFound("Tweet not found")
		}
		return mutation.ToggleLikeOutput{}, goerrors.Wrap(err, goerrors.CategoryInternal, "get tweet")
	}

	var added bool
	err = database.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		like := &Like{UserID: viewer, PostID: post.ID, CreatedAt: s.now().UTC()}
		res, err := tx.NewDelete().Model(like).WherePK().Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n > 0 {
			added = false
			return nil
		}
		if _, err := tx.NewInsert().Model(like).Exec(ctx); err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		return mutation.ToggleLikeOutput{}, goerrors.Wrap(err, goerrors.CategoryInternal, "toggle like")
	}
	return mutation.ToggleLikeOutput{AddedLike: added}, nil
}

// InfiniteFeed returns one page of posts, newest first. cursor is the
// NextCursor of the previous page, nil for the first page. The page holds
// at most limit posts; NextCursor is set when more posts exist.
func (s *Service) InfiniteFeed(ctx context.Context, filter feed.Filter, cursor *feed.Cursor, limit int) (feed.Page, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	viewer := session.UserID(ctx)
	if filter.OnlyFollowing && viewer == "" {
		return feed.Page{Posts: []feed.Post{}}, nil
	}

	var posts []*Post
	q := s.db.NewSelect().
		Model(&posts).
		ColumnExpr("p.*").
		ColumnExpr("(SELECT COUNT(*) FROM likes AS l WHERE l.post_id = p.id) AS like_count").
		Relation("User").
		OrderExpr("p.created_at DESC, p.id DESC").
		Limit(limit + 1)

	if viewer != "" {
		q = q.ColumnExpr("EXISTS (SELECT 1 FROM likes AS l WHERE l.post_id = p.id AND l.user_id = ?) AS liked_by_me", viewer)
	}
	if filter.UserID != "" {
		q = q.Where("p.user_id = ?", filter.UserID)
	}
	if filter.OnlyFollowing {
		following := s.db.NewSelect().
			Model((*Follow)(nil)).
			Column("following_id").
			Where("follower_id = ?", viewer)
		q = q.Where("p.user_id IN (?)", following)
	}
	if cursor != nil {
		at := cursor.CreatedAt.UTC()
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("p.created_at < ?", at).
				WhereOr("p.created_at = ? AND p.id <= ?", at, cursor.ID)
		})
	}

	if err := q.Scan(ctx); err != nil {
		return feed.Page{}, goerrors.Wrap(err, goerrors.CategoryInternal, "list tweets")
	}

	page := feed.Page{Posts: make([]feed.Post, 0, len(posts))}
	if len(posts) > limit {
		next := posts[limit]
		page.NextCursor = &feed.Cursor{ID: next.ID.String(), CreatedAt: next.CreatedAt}
		posts = posts[:limit]
	}
	for _, p := range posts {
		page.Posts = append(page.Posts, toFeedPost(p))
	}
	return page, nil
}

func (s *Service) viewer(ctx context.Context, t mutation.Type) (uuid.UUID, error) {
	id, ok := session.FromContext(ctx)
	if !ok {
		return uuid.Nil, mutation.NewUnauthorized(t)
	}
	parsed, err := uuid.Parse(id.UserID)
	if err != nil {
		return uuid.Nil, goerrors.Wrap(err, goerrors.CategoryAuth, fmt.Sprintf("invalid session user %q", id.UserID))
	}
	return parsed, nil
}

func toFeedPost(p *Post) feed.Post {
	out := feed.Post{
		ID:        p.ID.String(),
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		LikeCount: p.LikeCount,
		LikedByMe: p.LikedByMe,
	}
	if p.User != nil {
		out.Author = feed.Author{ID: p.User.ID.String(), Name: p.User.Name, Image: p.User.Image}
	}
	return out
}
