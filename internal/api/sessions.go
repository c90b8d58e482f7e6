package api

import (
	"context"
	"log"
	"sync"

	"github.com/moisesdreckmann/projetoreactnative/internal/cart"
	"github.com/moisesdreckmann/projetoreactnative/internal/identity"
	"github.com/moisesdreckmann/projetoreactnative/internal/session"
)

// ClientSession is the server-side mirror of one signed-in device: its
// session gate and its ephemeral cart. Sessions are independent; there
// is no shared mutable state between them.
type ClientSession struct {
	ClientID string
	Token    string
	Gate     *session.Gate
	Cart     *cart.Store
}

type SessionManager struct {
	provider identity.Provider
	cache    session.Cache

	mu       sync.RWMutex
	sessions map[string]*ClientSession // keyed by auth token
}

func NewSessionManager(provider identity.Provider, cache session.Cache) *SessionManager {
	return &SessionManager{
		provider: provider,
		cache:    cache,
		sessions: make(map[string]*ClientSession),
	}
}

func (m *SessionManager) SignIn(ctx context.Context, clientID, email, password string) (*ClientSession, error) {
	gate := session.NewGate(m.provider, m.cache, clientID)

	sess, err := gate.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	cs := &ClientSession{
		ClientID: clientID,
		Token:    sess.AuthToken,
		Gate:     gate,
		Cart:     cart.New(),
	}

	m.mu.Lock()
	m.sessions[cs.Token] = cs
	m.mu.Unlock()

	return cs, nil
}

// Restore re-attaches a returning client that still holds a token from a
// previous run. The gate decides whether the cached identity is still
// trustworthy.
func (m *SessionManager) Restore(ctx context.Context, clientID, token string) (*ClientSession, error) {
	gate := session.NewGate(m.provider, m.cache, clientID)

	sess, err := gate.Restore(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	cs := &ClientSession{
		ClientID: clientID,
		Token:    token,
		Gate:     gate,
		Cart:     cart.New(),
	}

	m.mu.Lock()
	m.sessions[token] = cs
	m.mu.Unlock()

	return cs, nil
}

func (m *SessionManager) SignOut(ctx context.Context, token string) error {
	m.mu.Lock()
	cs, ok := m.sessions[token]
	delete(m.sessions, token)
	m.mu.Unlock()

	if !ok {
		return nil
	}

	// The cart never survives a sign-out.
	cs.Cart.Clear()
	return cs.Gate.SignOut(ctx)
}

// Resolve returns the client session for a token, if the gate for it is
// still open.
func (m *SessionManager) Resolve(token string) (*ClientSession, bool) {
	m.mu.RLock()
	cs, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if _, open := cs.Gate.Current(); !open {
		return nil, false
	}
	return cs, true
}

// Run fans provider events out to the gates. One provider event stream
// serves every session, so the dispatch happens here rather than in a
// per-gate Run loop.
func (m *SessionManager) Run(ctx context.Context) {
	events := m.provider.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.dispatch(ctx, ev)
		}
	}
}

func (m *SessionManager) dispatch(ctx context.Context, ev identity.Event) {
	m.mu.RLock()
	cs, ok := m.sessions[ev.Token]
	m.mu.RUnlock()

	if !ok {
		return
	}

	cs.Gate.Apply(ctx, ev)

	if _, open := cs.Gate.Current(); !open {
		log.Printf("session for client %s closed by identity event", cs.ClientID)
		cs.Cart.Clear()
		m.mu.Lock()
		delete(m.sessions, ev.Token)
		m.mu.Unlock()
	}
}
