package api

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/moisesdreckmann/projetoreactnative/internal/catalog"
	"github.com/moisesdreckmann/projetoreactnative/internal/docstore"
	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
	"github.com/moisesdreckmann/projetoreactnative/internal/identity"
	"github.com/moisesdreckmann/projetoreactnative/internal/orders"
	"github.com/moisesdreckmann/projetoreactnative/internal/session"
	"github.com/moisesdreckmann/projetoreactnative/internal/storage"
)

// memStore is an in-memory docstore.Store for handler tests.
type memStore struct {
	mu          sync.Mutex
	collections map[string]map[string]docstore.Document
	createErr   error
	seq         int
}

func newMemStore() *memStore {
	return &memStore{collections: make(map[string]map[string]docstore.Document)}
}

func (s *memStore) Create(_ context.Context, collection string, doc docstore.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}

	s.seq++
	id := fmt.Sprintf("doc-%d", s.seq)

	stored := make(docstore.Document, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}
	stored["id"] = id

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]docstore.Document)
	}
	s.collections[collection][id] = stored
	return id, nil
}

func (s *memStore) Update(_ context.Context, collection, id string, partial docstore.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return docstore.ErrNotFound
	}
	for k, v := range partial {
		doc[k] = v
	}
	return nil
}

func (s *memStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return docstore.ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *memStore) Get(_ context.Context, collection, id string) (docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return doc, nil
}

func (s *memStore) Find(_ context.Context, collection string, filter docstore.Document) ([]docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var docs []docstore.Document
	for _, doc := range s.collections[collection] {
		match := true
		for k, v := range filter {
			if doc[k] != v {
				match = false
				break
			}
		}
		if match {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *memStore) Watch(string, docstore.Document, func([]docstore.Document), func(error)) (docstore.Subscription, error) {
	return noopSubscription{}, nil
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

// memCatalogCache always misses, so handler tests hit the store.
type memCatalogCache struct{}

func (memCatalogCache) Get(context.Context, string) ([]domain.Product, error) {
	return nil, catalog.ErrCacheMiss
}
func (memCatalogCache) Set(context.Context, string, []domain.Product) error { return nil }
func (memCatalogCache) Delete(context.Context, string) error                { return nil }

type memSessionCache struct {
	mu      sync.Mutex
	entries map[string]session.Identity
}

func newMemSessionCache() *memSessionCache {
	return &memSessionCache{entries: make(map[string]session.Identity)}
}

func (c *memSessionCache) Get(_ context.Context, clientID string) (*session.Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.entries[clientID]
	if !ok {
		return nil, session.ErrCacheMiss
	}
	return &id, nil
}

func (c *memSessionCache) Set(_ context.Context, clientID string, id session.Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[clientID] = id
	return nil
}

func (c *memSessionCache) Delete(_ context.Context, clientID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, clientID)
	return nil
}

type memFileStore struct {
	mu    sync.Mutex
	files map[string][]byte
	seq   int
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: make(map[string][]byte)}
}

func (f *memFileStore) Put(_ context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := fmt.Sprintf("img-%d", f.seq)
	f.files[id] = data
	return "http://localhost:8080/images/" + id, nil
}

func (f *memFileStore) Download(_ context.Context, id string, w io.Writer) error {
	f.mu.Lock()
	data, ok := f.files[id]
	f.mu.Unlock()

	if !ok {
		return storage.ErrFileNotFound
	}
	_, err := w.Write(data)
	return err
}

type testEnv struct {
	server   *Server
	store    *memStore
	provider *identity.MemoryProvider
	files    *memFileStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	provider := identity.NewMemoryProvider()
	t.Cleanup(provider.Close)
	files := newMemFileStore()

	server := NewServer(Config{
		Store:        store,
		Catalog:      catalog.NewService(store, memCatalogCache{}),
		Feed:         orders.NewFeed(store),
		Files:        files,
		Provider:     provider,
		SessionCache: newMemSessionCache(),
		AdminKey:     "test-admin-key",
	})

	return &testEnv{server: server, store: store, provider: provider, files: files}
}

// signIn registers a verified account and opens a session for it.
func (e *testEnv) signIn(t *testing.T, email string) *ClientSession {
	t.Helper()

	ctx := context.Background()
	if _, err := e.provider.CreateAccount(ctx, "Test User", email, "secret"); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := e.provider.VerifyEmail(email); err != nil {
		t.Fatalf("verify email: %v", err)
	}

	cs, err := e.server.Sessions().SignIn(ctx, "client-"+email, email, "secret")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return cs
}

// seedProduct inserts a product document and returns its id.
func (e *testEnv) seedProduct(t *testing.T, name, price, category string) string {
	t.Helper()

	id, err := e.store.Create(context.Background(), catalog.Collection, docstore.Document{
		"name":        name,
		"description": "test product",
		"unit_price":  price,
		"image_ref":   "",
		"category":    category,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return id
}

func withSession(ctx context.Context, cs *ClientSession) context.Context {
	return context.WithValue(ctx, sessionContextKey, cs)
}
