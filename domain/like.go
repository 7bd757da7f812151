package domain

import (
	"context"
	"time"
)

// Like represents a many-to-many relationship between a User and a Post.
// A Like is created when a user likes a post and destroyed when they unlike
// it, or when the post itself gets deleted. Serialized, a like collapses to
// the liker's user id.
type Like struct {
	ID     int `json:"-"`
	UserID int `json:"id" gorm:"notNull;index:idx_like_pair,unique"`
	PostID int `json:"-" gorm:"notNull;index:idx_like_pair,unique"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
type LikeService interface {
	Create(ctx context.Context, like *Like) error
	Delete(ctx context.Context, like *Like) error
}
