package orders

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/moisesdreckmann/projetoreactnative/internal/docstore"
	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore lets the test drive Watch pushes by hand.
type fakeStore struct {
	m          sync.Mutex
	docs       []docstore.Document
	findErr    error
	watchErr   error
	onSnapshot func([]docstore.Document)
	onError    func(error)
	cancelled  int
}

func (s *fakeStore) Create(context.Context, string, docstore.Document) (string, error) {
	return "", nil
}
func (s *fakeStore) Update(context.Context, string, string, docstore.Document) error { return nil }
func (s *fakeStore) Delete(context.Context, string, string) error                    { return nil }
func (s *fakeStore) Get(context.Context, string, string) (docstore.Document, error) {
	return nil, docstore.ErrNotFound
}

func (s *fakeStore) Find(context.Context, string, docstore.Document) ([]docstore.Document, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.docs, nil
}

func (s *fakeStore) Watch(_ string, _ docstore.Document, onSnapshot func([]docstore.Document), onError func(error)) (docstore.Subscription, error) {
	if s.watchErr != nil {
		return nil, s.watchErr
	}
	s.m.Lock()
	s.onSnapshot = onSnapshot
	s.onError = onError
	s.m.Unlock()
	return &fakeSubscription{store: s}, nil
}

func (s *fakeStore) push(docs []docstore.Document) {
	s.m.Lock()
	fn := s.onSnapshot
	s.m.Unlock()
	fn(docs)
}

func (s *fakeStore) pushError(err error) {
	s.m.Lock()
	fn := s.onError
	s.m.Unlock()
	fn(err)
}

type fakeSubscription struct {
	store *fakeStore
	once  sync.Once
}

func (f *fakeSubscription) Unsubscribe() {
	f.once.Do(func() {
		f.store.m.Lock()
		f.store.cancelled++
		f.store.m.Unlock()
	})
}

func orderDoc(id, userID string, createdAt time.Time) docstore.Document {
	return docstore.Document{
		"id":      id,
		"user_id": userID,
		"items": []any{
			map[string]any{"name": "margherita", "unit_price": "39.90", "quantity": 2},
		},
		"total":      "79.80",
		"created_at": createdAt,
	}
}

func TestSubscribe_DeliversSortedNewestFirst(t *testing.T) {
	store := &fakeStore{}
	feed := NewFeed(store)

	var got [][]domain.Order
	sub, err := feed.Subscribe("user-1", func(orders []domain.Order) {
		got = append(got, orders)
	}, func(error) { t.Fatal("unexpected error callback") })
	require.NoError(t, err)
	defer sub.Unsubscribe()

	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	t3 := t2.Add(24 * time.Hour)

	store.push([]docstore.Document{
		orderDoc("a", "user-1", t1),
		orderDoc("c", "user-1", t3),
		orderDoc("b", "user-1", t2),
	})

	require.Len(t, got, 1)
	orders := got[0]
	require.Len(t, orders, 3)
	assert.Equal(t, "c", orders[0].ID)
	assert.Equal(t, "b", orders[1].ID)
	assert.Equal(t, "a", orders[2].ID)
	assert.Equal(t, t3, orders[0].CreatedAt)
}

func TestSubscribe_EachPushIsFullSet(t *testing.T) {
	store := &fakeStore{}
	feed := NewFeed(store)

	var got [][]domain.Order
	sub, err := feed.Subscribe("user-1", func(orders []domain.Order) {
		got = append(got, orders)
	}, func(error) {})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.push([]docstore.Document{orderDoc("a", "user-1", t1)})
	store.push([]docstore.Document{
		orderDoc("a", "user-1", t1),
		orderDoc("b", "user-1", t1.Add(time.Hour)),
	})

	require.Len(t, got, 2)
	assert.Len(t, got[0], 1)
	assert.Len(t, got[1], 2)
	assert.Equal(t, "b", got[1][0].ID)
}

func TestSubscribe_ErrorDeliveredToCallback(t *testing.T) {
	store := &fakeStore{}
	feed := NewFeed(store)

	var errs []error
	sub, err := feed.Subscribe("user-1", func([]domain.Order) {
		t.Fatal("unexpected update callback")
	}, func(err error) {
		errs = append(errs, err)
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	store.pushError(fmt.Errorf("permission denied"))

	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "permission denied")
}

func TestUnsubscribe_TwiceIsIdempotent(t *testing.T) {
	store := &fakeStore{}
	feed := NewFeed(store)

	sub, err := feed.Subscribe("user-1", func([]domain.Order) {}, func(error) {})
	require.NoError(t, err)

	sub.Unsubscribe()
	sub.Unsubscribe()

	store.m.Lock()
	defer store.m.Unlock()
	assert.Equal(t, 1, store.cancelled)
}

func TestList_ReturnsSortedOrders(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	store := &fakeStore{docs: []docstore.Document{
		orderDoc("old", "user-1", t1),
		orderDoc("new", "user-1", t2),
	}}
	feed := NewFeed(store)

	orders, err := feed.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "new", orders[0].ID)
	assert.Equal(t, "old", orders[1].ID)
}

func TestList_StoreError(t *testing.T) {
	store := &fakeStore{findErr: fmt.Errorf("store unavailable")}
	feed := NewFeed(store)

	orders, err := feed.List(context.Background(), "user-1")
	require.ErrorContains(t, err, "store unavailable")
	assert.Nil(t, orders)
}
