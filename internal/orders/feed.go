// Package orders derives a user's order history from the live feed of
// persisted orders.
package orders

import (
	"context"
	"sort"

	"github.com/moisesdreckmann/projetoreactnative/internal/docstore"
	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
)

const Collection = "orders"

// Feed subscribes to persisted orders for one user and keeps them sorted
// newest first. Each push carries the full current set, mirroring the
// store's snapshot semantics.
type Feed struct {
	store      docstore.Store
	collection string
}

func NewFeed(store docstore.Store) *Feed {
	return &Feed{store: store, collection: Collection}
}

// Subscribe opens a live subscription for the given user. onUpdate
// receives decoded, sorted orders; onError is delivered once on a store
// failure and the subscription stops; resubscribing is the caller's
// decision. The returned handle must be unsubscribed on view teardown;
// unsubscribing twice is a harmless no-op.
func (f *Feed) Subscribe(userID string, onUpdate func([]domain.Order), onError func(error)) (docstore.Subscription, error) {
	filter := docstore.Document{"user_id": userID}

	return f.store.Watch(f.collection, filter, func(docs []docstore.Document) {
		orders := make([]domain.Order, 0, len(docs))
		for _, doc := range docs {
			orders = append(orders, DecodeOrder(doc))
		}
		sortByDateDesc(orders)
		onUpdate(orders)
	}, onError)
}

// List is the one-shot variant of Subscribe, used where a live view is
// not needed.
func (f *Feed) List(ctx context.Context, userID string) ([]domain.Order, error) {
	docs, err := f.store.Find(ctx, f.collection, docstore.Document{"user_id": userID})
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, DecodeOrder(doc))
	}
	sortByDateDesc(orders)
	return orders, nil
}

func sortByDateDesc(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
