package social

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        uuid.UUID `bun:"id,pk,type:varchar(36)" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,unique" json:"email,omitempty"`
	Image     string    `bun:"image" json:"image,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

type Post struct {
	bun.BaseModel `bun:"table:tweets,alias:p"`

	ID        uuid.UUID `bun:"id,pk,type:varchar(36)" json:"id"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:varchar(36)" json:"userId"`
	Content   string    `bun:"content,notnull" json:"content"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`

	User      *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	LikeCount int   `bun:"like_count,scanonly" json:"likeCount"`
	LikedByMe bool  `bun:"liked_by_me,scanonly" json:"likedByMe"`
}

// Follow is the edge FollowerID -> FollowingID.
type Follow struct {
	bun.BaseModel `bun:"table:follows,alias:f"`

	FollowerID  uuid.UUID `bun:"follower_id,pk,type:varchar(36)"`
	FollowingID uuid.UUID `bun:"following_id,pk,type:varchar(36)"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type Like struct {
	bun.BaseModel `bun:"table:likes,alias:l"`

	UserID    uuid.UUID `bun:"user_id,pk,type:varchar(36)"`
	PostID    uuid.UUID `bun:"post_id,pk,type:varchar(36)"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
