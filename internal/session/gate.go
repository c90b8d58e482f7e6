// Package session resolves the active user identity and gates cart and
// order operations on it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
	"github.com/moisesdreckmann/projetoreactnative/internal/identity"
)

var ErrEmailNotVerified = errors.New("email not verified")

type State int

const (
	StateUnknown State = iota
	StateAuthenticating
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Gate tracks one client session. It prefers the live identity-provider
// state over the locally cached identity and treats a mismatch between
// the two as no session at all, discarding the cache. No state is
// terminal: every provider event re-evaluates the gate.
type Gate struct {
	provider identity.Provider
	cache    Cache
	clientID string

	mu      sync.Mutex
	state   State
	session *domain.Session
}

func NewGate(provider identity.Provider, cache Cache, clientID string) *Gate {
	return &Gate{
		provider: provider,
		cache:    cache,
		clientID: clientID,
		state:    StateUnknown,
	}
}

// SignIn authenticates against the provider. An unverified account may
// exist at the provider, but the gate refuses to open a session for it
// and the sign-in is rolled back.
func (g *Gate) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	g.setState(StateAuthenticating, nil)

	user, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		g.setState(StateUnauthenticated, nil)
		return nil, fmt.Errorf("sign in: %w", err)
	}

	if !user.EmailVerified {
		if err2 := g.provider.SignOut(ctx, user.Token); err2 != nil {
			log.Printf("sign out of unverified account failed: %v", err2)
		}
		g.setState(StateUnauthenticated, nil)
		return nil, ErrEmailNotVerified
	}

	sess := &domain.Session{
		UserID:        user.ID,
		Email:         user.Email,
		EmailVerified: true,
		AuthToken:     user.Token,
	}
	g.setState(StateAuthenticated, sess)

	if err2 := g.cache.Set(ctx, g.clientID, Identity{UserID: user.ID, Email: user.Email}); err2 != nil {
		log.Printf("identity cache set failed: %v", err2)
	}

	return sess, nil
}

func (g *Gate) SignOut(ctx context.Context) error {
	g.mu.Lock()
	sess := g.session
	g.mu.Unlock()

	if sess != nil {
		if err := g.provider.SignOut(ctx, sess.AuthToken); err != nil {
			return fmt.Errorf("sign out: %w", err)
		}
	}

	if err := g.cache.Delete(ctx, g.clientID); err != nil {
		log.Printf("identity cache delete failed: %v", err)
	}

	g.setState(StateUnauthenticated, nil)
	return nil
}

// Register creates the account and sends the verification mail. The gate
// stays unauthenticated: the user signs in after verifying.
func (g *Gate) Register(ctx context.Context, name, email, password string) error {
	if _, err := g.provider.CreateAccount(ctx, name, email, password); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	if err := g.provider.SendVerification(ctx, email); err != nil {
		return fmt.Errorf("send verification: %w", err)
	}
	return nil
}

func (g *Gate) ResetPassword(ctx context.Context, email string) error {
	if err := g.provider.SendPasswordReset(ctx, email); err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}
	return nil
}

// Restore resolves the session for a returning client holding a token
// from a previous run. The cached identity only pre-populates the
// comparison; the provider's answer wins. A cached user id that does not
// match the live one means the cache is stale and is dropped.
func (g *Gate) Restore(ctx context.Context, token string) (*domain.Session, error) {
	cached, err := g.cache.Get(ctx, g.clientID)
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		log.Printf("identity cache get failed: %v", err)
	}

	user, err := g.provider.CurrentUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resolve current user: %w", err)
	}

	if user == nil {
		g.setState(StateUnauthenticated, nil)
		return nil, nil
	}

	if cached != nil && cached.UserID != user.ID {
		if err2 := g.cache.Delete(ctx, g.clientID); err2 != nil {
			log.Printf("identity cache delete failed: %v", err2)
		}
		g.setState(StateUnauthenticated, nil)
		return nil, nil
	}

	if !user.EmailVerified {
		g.setState(StateUnauthenticated, nil)
		return nil, ErrEmailNotVerified
	}

	sess := &domain.Session{
		UserID:        user.ID,
		Email:         user.Email,
		EmailVerified: true,
		AuthToken:     token,
	}
	g.setState(StateAuthenticated, sess)
	return sess, nil
}

// Current returns the active session, if the gate is open.
func (g *Gate) Current() (*domain.Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateAuthenticated || g.session == nil {
		return nil, false
	}
	sess := *g.session
	return &sess, true
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Run consumes identity-provider events for this gate's session until
// the context is cancelled or the provider closes the stream.
func (g *Gate) Run(ctx context.Context) {
	events := g.provider.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			g.Apply(ctx, ev)
		}
	}
}

// Apply reduces one provider event into a state transition. Events for
// other clients' tokens are not ours to act on. Session managers that
// multiplex one provider event stream across many gates call this
// directly instead of Run.
func (g *Gate) Apply(ctx context.Context, ev identity.Event) {
	g.mu.Lock()
	sess := g.session
	g.mu.Unlock()

	if sess == nil || ev.Token != sess.AuthToken {
		return
	}

	if ev.User == nil {
		g.setState(StateUnauthenticated, nil)
		return
	}

	if ev.User.ID != sess.UserID {
		if err := g.cache.Delete(ctx, g.clientID); err != nil {
			log.Printf("identity cache delete failed: %v", err)
		}
		g.setState(StateUnauthenticated, nil)
		return
	}

	updated := *sess
	updated.EmailVerified = ev.User.EmailVerified
	g.setState(StateAuthenticated, &updated)
}

func (g *Gate) setState(state State, sess *domain.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = state
	g.session = sess
}
