// Package auth carries the resolved request identity through a context.
// Handlers never read ambient globals; the checkUser middleware resolves the
// session once per request and everything downstream goes through GetUser.
package auth

import (
	"context"

	"chirper/domain"
)

const (
	userKey privateKey = "user"
)

type privateKey string

// SetUser returns a child context carrying the resolved user.
func SetUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the resolved user, or nil for an anonymous request.
func GetUser(ctx context.Context) *domain.User {
	if temp := ctx.Value(userKey); temp != nil {
		if user, ok := temp.(*domain.User); ok {
			return user
		}
	}
	return nil
}
