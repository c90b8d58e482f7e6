package identity

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"log"
	"sync"

	"github.com/google/uuid"
)

type account struct {
	id           string
	name         string
	email        string
	passwordHash [32]byte
	verified     bool
}

// MemoryProvider is an in-process stand-in for the hosted identity
// provider, used for local runs and tests (replace with the real
// provider client in production). Verification mail is simulated: the
// mail is logged and VerifyEmail flips the flag.
type MemoryProvider struct {
	mu       sync.Mutex
	accounts map[string]*account // keyed by email
	tokens   map[string]string   // token -> email
	events   chan Event
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		events:   make(chan Event, 16),
	}
}

func (p *MemoryProvider) SignIn(ctx context.Context, email, password string) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.accounts[email]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	hash := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(hash[:], acc.passwordHash[:]) != 1 {
		return nil, ErrInvalidCredentials
	}

	token := uuid.New().String()
	p.tokens[token] = email

	user := &User{ID: acc.id, Email: acc.email, EmailVerified: acc.verified, Token: token}
	p.emit(Event{Token: token, User: user})
	return user, nil
}

func (p *MemoryProvider) SignOut(ctx context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.tokens, token)
	p.emit(Event{Token: token, User: nil})
	return nil
}

func (p *MemoryProvider) CreateAccount(ctx context.Context, name, email, password string) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[email]; exists {
		return nil, ErrEmailInUse
	}

	acc := &account{
		id:           uuid.New().String(),
		name:         name,
		email:        email,
		passwordHash: sha256.Sum256([]byte(password)),
	}
	p.accounts[email] = acc

	return &User{ID: acc.id, Email: acc.email}, nil
}

func (p *MemoryProvider) SendVerification(ctx context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.accounts[email]; !ok {
		return ErrUserNotFound
	}
	log.Printf("verification mail sent to %s", email)
	return nil
}

func (p *MemoryProvider) SendPasswordReset(ctx context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.accounts[email]; !ok {
		return ErrUserNotFound
	}
	log.Printf("password reset mail sent to %s", email)
	return nil
}

func (p *MemoryProvider) CurrentUser(ctx context.Context, token string) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.tokens[token]
	if !ok {
		return nil, nil
	}
	acc := p.accounts[email]
	return &User{ID: acc.id, Email: acc.email, EmailVerified: acc.verified, Token: token}, nil
}

func (p *MemoryProvider) Events() <-chan Event {
	return p.events
}

// VerifyEmail marks an account as verified, standing in for the user
// clicking the verification link.
func (p *MemoryProvider) VerifyEmail(email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.accounts[email]
	if !ok {
		return ErrUserNotFound
	}
	acc.verified = true

	for token, accEmail := range p.tokens {
		if accEmail == email {
			p.emit(Event{Token: token, User: &User{
				ID: acc.id, Email: acc.email, EmailVerified: true, Token: token,
			}})
		}
	}
	return nil
}

func (p *MemoryProvider) Close() {
	close(p.events)
}

// emit drops events when no consumer keeps up; the gate re-resolves from
// CurrentUser anyway, events only accelerate it.
func (p *MemoryProvider) emit(ev Event) {
	select {
	case p.events <- ev:
	default:
	}
}
