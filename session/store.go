// Package session keeps server-side sessions in redis, one key per opaque
// token. A session binds a token to exactly one user id; absence of a valid
// token means the request is anonymous.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"chirper/errs"
)

// ErrNoSession marks an anonymous request: the token is missing,
// expired or unknown. It is deliberately distinct from a storage
// failure, which must never be mistaken for anonymity.
var ErrNoSession = errors.New("session: no such session")

// CookieName is the cookie the token travels in.
const CookieName = "session_token"

const keyPrefix = "session:"

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Create binds a fresh token to the given user id. Every call mints a new
// token, so logging in always rotates the session instead of reusing any
// prior one.
func (s *Store) Create(ctx context.Context, userID int) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", errs.Wrap(errs.EUNAVAILABLE, "Session storage is unavailable.", err)
	}
	return token, nil
}

// UserID resolves a token to the user id it was bound to. It returns
// ErrNoSession for an unknown token and an EUNAVAILABLE error when redis
// cannot be reached.
func (s *Store) UserID(ctx context.Context, token string) (int, error) {
	id, err := s.client.Get(ctx, keyPrefix+token).Int()
	if err == redis.Nil {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, errs.Wrap(errs.EUNAVAILABLE, "Session storage is unavailable.", err)
	}
	return id, nil
}

// Destroy removes the session bound to token. Destroying an already-absent
// session is not an error.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return errs.Wrap(errs.EUNAVAILABLE, "Session storage is unavailable.", err)
	}
	return nil
}
