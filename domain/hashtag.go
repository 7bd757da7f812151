package domain

import (
	"context"
	"time"
)

type Hashtag struct {
	ID   int    `json:"id"`
	Name string `json:"name" gorm:"uniqueIndex;size:64;notNull"`

	Posts []Post `json:"-" gorm:"many2many:post_hashtags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HashtagService is a set of methods to manipulate and work with the Hashtag model.
type HashtagService interface {
	// Link get-or-creates the named tags and attaches them to the post.
	Link(ctx context.Context, post *Post, names []string) error
	// PostsByName returns the posts carrying the named tag, enriched the
	// same way as a user feed.
	PostsByName(ctx context.Context, name string) ([]Post, error)
}
