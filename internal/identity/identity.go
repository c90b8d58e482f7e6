// Package identity is the contract with the external identity provider:
// sign-in, sign-out, account creation, verification and password-reset
// mail, plus the stream of identity-change events the session gate
// consumes.
package identity

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email already in use")
	ErrUserNotFound       = errors.New("user not found")
)

// User is the provider's view of an account. Token authenticates
// subsequent calls for this sign-in.
type User struct {
	ID            string
	Email         string
	EmailVerified bool
	Token         string
}

// Event is one identity change. A nil User means the holder of Token was
// signed out.
type Event struct {
	Token string
	User  *User
}

type Provider interface {
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context, token string) error
	CreateAccount(ctx context.Context, name, email, password string) (*User, error)
	SendVerification(ctx context.Context, email string) error
	SendPasswordReset(ctx context.Context, email string) error

	// CurrentUser resolves a previously issued token. It returns
	// (nil, nil) when the token no longer maps to a signed-in user.
	CurrentUser(ctx context.Context, token string) (*User, error)

	// Events emits identity changes. The channel is closed when the
	// provider shuts down.
	Events() <-chan Event
}
