package session

import (
	"context"
	"errors"
)

var ErrCacheMiss = errors.New("cache miss")

// Identity is the small {userEmail, userId} pair persisted locally so a
// returning client can be pre-populated before the identity provider
// responds. It is never authoritative: a mismatch with the live provider
// discards it.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type Cache interface {
	Get(ctx context.Context, clientID string) (*Identity, error)
	Set(ctx context.Context, clientID string, id Identity) error
	Delete(ctx context.Context, clientID string) error
}
