package cart

import (
	"errors"
	"sync"

	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantity must be greater than 0")

// Observer receives the full cart contents after every mutation.
// Observers are called synchronously, in the same order the mutations
// were applied.
type Observer func(lines []domain.CartLine)

// Store holds the cart lines for one active session. Adding a product
// that is already present merges into the existing line instead of
// appending a duplicate; line order is insertion order.
//
// A Store is ephemeral. It lives in memory for the lifetime of the
// session and is cleared on successful checkout or sign-out.
type Store struct {
	mu        sync.Mutex
	lines     []domain.CartLine
	observers []Observer
}

func New() *Store {
	return &Store{}
}

// Subscribe registers an observer for cart mutations. There is no
// unsubscribe: observers live as long as the session's cart does.
func (s *Store) Subscribe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Add merges quantity into an existing line with the same product key or
// appends a new line. It returns the resulting line.
func (s *Store) Add(p domain.Product, quantity int) (domain.CartLine, error) {
	if quantity <= 0 {
		return domain.CartLine{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].Product.Key() == p.Key() {
			s.lines[i].Quantity += quantity
			line := s.lines[i]
			s.notify()
			return line, nil
		}
	}

	line := domain.CartLine{Product: p, Quantity: quantity}
	s.lines = append(s.lines, line)
	s.notify()
	return line, nil
}

// Remove deletes the line with the given product key. Removing an absent
// key is a no-op, not an error.
func (s *Store) Remove(productKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, line := range s.lines {
		if line.Product.Key() == productKey {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.notify()
			return
		}
	}
}

// SetQuantity sets the quantity of an existing line. A quantity of zero
// or less removes the line; a line is never kept at quantity zero.
func (s *Store) SetQuantity(productKey string, n int) {
	if n <= 0 {
		s.Remove(productKey)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].Product.Key() == productKey {
			s.lines[i].Quantity = n
			s.notify()
			return
		}
	}
}

// Total sums unit price times quantity over all lines in decimal space,
// so totals do not drift across many lines the way float accumulation
// would.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Snapshot returns an immutable copy of the current lines. Later
// mutations of the live cart do not affect a snapshot already taken.
func (s *Store) Snapshot() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]domain.CartLine, len(s.lines))
	copy(snapshot, s.lines)
	return snapshot
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Clear empties the cart. Used after a successful checkout and on
// sign-out. Clearing always resets to empty regardless of mutations that
// happened since the checkout snapshot was taken.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return
	}
	s.lines = nil
	s.notify()
}

// notify is called with the mutex held, which keeps deliveries in the
// same causal order as the mutations.
func (s *Store) notify() {
	if len(s.observers) == 0 {
		return
	}
	snapshot := make([]domain.CartLine, len(s.lines))
	copy(snapshot, s.lines)
	for _, fn := range s.observers {
		fn(snapshot)
	}
}
