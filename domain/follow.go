package domain

import (
	"context"
	"time"
)

// Follow represents a self-referential many-to-many relationship between two
// users. A Follow is created when one user decides to follow another user.
// The FollowerID is the ID of the user that follows, and the FollowedID is
// the ID of the user being followed. The composite unique index on the
// ordered pair is what keeps the edge unique even under racing requests.
type Follow struct {
	ID         int  `json:"id"`
	FollowerID int  `json:"follower_id" gorm:"notNull;index:idx_follow_pair,unique"`
	Follower   User `json:"-"`
	FollowedID int  `json:"followed_id" gorm:"notNull;index:idx_follow_pair,unique"`
	Followed   User `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FollowService is a set of methods to manipulate and work with the Follow model.
// Create and Delete are idempotent: creating an existing edge or deleting an
// absent one succeeds without effect.
type FollowService interface {
	Create(ctx context.Context, follow *Follow) error
	Delete(ctx context.Context, follow *Follow) error
	Followings(ctx context.Context, userID, limit, offset int) ([]User, error)
}
