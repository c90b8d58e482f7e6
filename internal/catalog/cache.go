package catalog

import (
	"context"
	"errors"

	"github.com/moisesdreckmann/projetoreactnative/internal/domain"
)

type Cache interface {
	Get(ctx context.Context, category string) ([]domain.Product, error)
	Set(ctx context.Context, category string, products []domain.Product) error
	Delete(ctx context.Context, category string) error
}

var ErrCacheMiss = errors.New("cache miss")
