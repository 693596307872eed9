package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/rl1809/clock-shop/internal/core/domain"
	"github.com/rl1809/clock-shop/internal/port"
)

// MemoryCatalog is a CatalogRepository kept in process memory.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[domain.ProductID]domain.Product
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{products: make(map[domain.ProductID]domain.Product)}
}

func (c *MemoryCatalog) UpsertProducts(ctx context.Context, products []domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range products {
		c.products[p.ID] = p
	}
	return nil
}

func (c *MemoryCatalog) ListProducts(ctx context.Context, collection domain.Collection) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if collection == "" || p.Collection == collection {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Collection != out[j].Collection {
			return out[i].Collection < out[j].Collection
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (c *MemoryCatalog) GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return domain.Product{}, port.ErrProductNotFound
	}
	return p, nil
}
