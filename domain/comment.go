package domain

import (
	"context"
	"time"
)

type Comment struct {
	ID     int    `json:"id"`
	PostID int    `json:"post_id" gorm:"notNull;index"`
	UserID int    `json:"user_id" gorm:"notNull"`
	User   User   `json:"user"`
	Body   string `json:"body"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentService is a set of methods to manipulate and work with the Comment model.
type CommentService interface {
	Create(ctx context.Context, comment *Comment) error
	ByPostID(ctx context.Context, postID int) ([]Comment, error)
}
