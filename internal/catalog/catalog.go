// Package catalog reads products per category from the remote document
// store, fronted by a cache. Products are immutable once fetched; a cart
// keeps its own price snapshot, so a later catalog change never alters
// an uncommitted cart.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/moisesdreckmann/projetoreactnative/internal/docstore"
	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const Collection = "products"

var ErrProductNotFound = errors.New("product not found")

type Service struct {
	store docstore.Store
	cache Cache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewService(store docstore.Store, cache Cache) *Service {
	return &Service{
		store: store,
		cache: cache,
	}
}

func (s *Service) List(ctx context.Context, category string) ([]domain.Product, error) {
	// Use singleflight to collapse concurrent cache misses for the same category
	v, err, _ := s.sfg.Do(category, func() (interface{}, error) {

		products, err := s.cache.Get(ctx, category)
		if err == nil {
			return products, nil // category is in cache
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		docs, errFind := s.store.Find(ctx, Collection, docstore.Document{"category": category})
		if errFind != nil {
			return nil, fmt.Errorf("list products: %w", errFind)
		}

		products = make([]domain.Product, 0, len(docs))
		for _, doc := range docs {
			products = append(products, decodeProduct(doc))
		}

		// set cache
		go func() {
			if errSet := s.cache.Set(context.Background(), category, products); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return products, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]domain.Product), nil
}

// Get resolves one product by id, bypassing the category cache.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	doc, err := s.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	product := decodeProduct(doc)
	return &product, nil
}

// Invalidate drops the cached category after an admin write.
func (s *Service) Invalidate(ctx context.Context, category string) {
	if err := s.cache.Delete(ctx, category); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

// decodeProduct tolerates the loose typing of older documents: prices
// arrive as strings or numbers, missing fields stay zero.
func decodeProduct(doc docstore.Document) domain.Product {
	p := domain.Product{
		ID:          stringField(doc, "id"),
		Name:        stringField(doc, "name"),
		Description: stringField(doc, "description"),
		ImageRef:    stringField(doc, "image_ref"),
		Category:    stringField(doc, "category"),
	}
	if price, ok := decimalField(doc, "unit_price"); ok {
		p.UnitPrice = price
	}
	return p
}

func stringField(doc docstore.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}

func decimalField(doc docstore.Document, key string) (decimal.Decimal, bool) {
	switch v := doc[key].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	default:
		return decimal.Zero, false
	}
}
