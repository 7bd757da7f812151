package domain

import (
	"context"
	"time"
)

type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id" gorm:"notNull;index"`
	User   User   `json:"user"`
	Body   string `json:"body"`

	// RetweetsID is nil for original posts. Posts with a non-nil value
	// are retweets and are excluded from a user's primary feed.
	RetweetsID *int  `json:"retweets_id,omitempty"`
	Retweet    *Post `json:"retweet,omitempty" gorm:"foreignKey:RetweetsID"`

	Images   []Image   `json:"images" gorm:"foreignKey:PostID"`
	Likes    []Like    `json:"likers" gorm:"foreignKey:PostID"`
	Hashtags []Hashtag `json:"hashtags,omitempty" gorm:"many2many:post_hashtags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostService is a set of methods to manipulate and work with the Post model.
type PostService interface {
	ByID(ctx context.Context, id int) (*Post, error)
	// ByUserID returns the user's feed: original (non-retweet) posts,
	// enriched with author, images and likers, oldest first.
	ByUserID(ctx context.Context, userID int) ([]Post, error)
	Create(ctx context.Context, post *Post) error
	Retweet(ctx context.Context, userID, postID int) (*Post, error)
	Delete(ctx context.Context, post *Post) error
}
