package domain

import (
	"context"
	"time"
)

type User struct {
	ID       int    `json:"id"`
	Handle   string `json:"handle" gorm:"uniqueIndex;size:64;notNull"`
	Nickname string `json:"nickname"`

	// Password only ever holds plaintext in memory, on the way in.
	// It is cleared as soon as PasswordHash is computed and neither
	// field is ever serialized or stored alongside responses.
	Password     string `json:"-" gorm:"-"`
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Posts      []Post   `json:"posts,omitempty"`
	Followings []Follow `json:"-" gorm:"foreignKey:FollowerID"`
	Followers  []Follow `json:"-" gorm:"foreignKey:FollowedID"`

	// Aggregate counts. Never persisted, always recomputed at read time.
	PostCount      int `json:"post_count" gorm:"-"`
	FollowingCount int `json:"following_count" gorm:"-"`
	FollowerCount  int `json:"follower_count" gorm:"-"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	ByID(ctx context.Context, id int) (*User, error)
	ByHandle(ctx context.Context, handle string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Authenticate(ctx context.Context, handle, password string) (*User, error)

	CountPosts(ctx context.Context, userID int) (int, error)
	CountFollowings(ctx context.Context, userID int) (int, error)
	CountFollowers(ctx context.Context, userID int) (int, error)
}
