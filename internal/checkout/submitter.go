// Package checkout converts a cart snapshot plus a session into a
// persisted order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/moisesdreckmann/projetoreactnative/internal/cart"
	"github.com/moisesdreckmann/projetoreactnative/internal/docstore"
	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
	"github.com/moisesdreckmann/projetoreactnative/internal/orders"
	"github.com/shopspring/decimal"
)

// Publisher announces a created order downstream. Publishing is
// best-effort: a publish failure never fails the submission.
type Publisher interface {
	OrderCreated(ctx context.Context, order domain.Order) error
}

type Submitter struct {
	store      docstore.Store
	cart       *cart.Store
	publisher  Publisher // optional
	collection string
	now        func() time.Time
}

func NewSubmitter(store docstore.Store, cartStore *cart.Store, publisher Publisher) *Submitter {
	return &Submitter{
		store:      store,
		cart:       cartStore,
		publisher:  publisher,
		collection: orders.Collection,
		now:        time.Now,
	}
}

// Submit persists the snapshot as an order under a fresh idempotency
// key. Callers that want retry-safe submission keep the key from
// SubmitAttempt instead.
func (s *Submitter) Submit(ctx context.Context, snapshot []domain.CartLine, sess *domain.Session) (*domain.Order, error) {
	return s.SubmitAttempt(ctx, snapshot, sess, uuid.New().String())
}

// SubmitAttempt persists the snapshot as a single atomic create. The
// idempotency key is stored on the order document and guarded by a
// unique index, so retrying the same attempt after a timeout cannot
// create a second order. On success the cart is cleared; on failure the
// cart keeps its exact prior contents.
func (s *Submitter) SubmitAttempt(ctx context.Context, snapshot []domain.CartLine, sess *domain.Session, idempotencyKey string) (*domain.Order, error) {
	if sess == nil || !sess.EmailVerified {
		return nil, ErrNotAuthenticated
	}
	if len(snapshot) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]domain.OrderItem, len(snapshot))
	itemDocs := make([]docstore.Document, len(snapshot))
	total := decimal.Zero
	for i, line := range snapshot {
		items[i] = domain.OrderItem{
			Name:      line.Product.Name,
			UnitPrice: line.Product.UnitPrice,
			Quantity:  line.Quantity,
		}
		itemDocs[i] = docstore.Document{
			"name":       line.Product.Name,
			"unit_price": line.Product.UnitPrice.String(),
			"quantity":   line.Quantity,
		}
		total = total.Add(line.Subtotal())
	}

	createdAt := s.now().UTC()
	doc := docstore.Document{
		"user_id":         sess.UserID,
		"items":           itemDocs,
		"total":           total.String(),
		"created_at":      createdAt,
		"idempotency_key": idempotencyKey,
	}

	id, err := s.store.Create(ctx, s.collection, doc)
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicate) {
			// An earlier try of this same attempt already went through,
			// so the order exists and the cart is done with.
			s.cart.Clear()
			return nil, ErrDuplicateSubmission
		}
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	order := &domain.Order{
		ID:        id,
		UserID:    sess.UserID,
		Items:     items,
		Total:     total,
		CreatedAt: createdAt,
	}

	s.cart.Clear()

	if s.publisher != nil {
		if err := s.publisher.OrderCreated(ctx, *order); err != nil {
			log.Printf("order created event publish failed for order %s: %v", order.ID, err)
		}
	}

	return order, nil
}
