package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/clock-shop/internal/core/domain"
	"github.com/rl1809/clock-shop/internal/port"
)

var ErrInvalidCollection = errors.New("invalid collection")

type CatalogService struct {
	repo   port.CatalogRepository
	logger *zap.Logger
}

func NewCatalogService(repo port.CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// Seed loads entries and upserts them into the catalog.
func (s *CatalogService) Seed(ctx context.Context, entries []CatalogEntry, currency string, strict bool) error {
	products, err := LoadCatalog(entries, currency, strict, s.logger)
	if err != nil {
		return err
	}
	if err := s.repo.UpsertProducts(ctx, products); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	s.logger.Info("catalog seeded", zap.Int("products", len(products)))
	return nil
}

func (s *CatalogService) List(ctx context.Context, collection string) ([]domain.Product, error) {
	c := domain.Collection(collection)
	if c != "" && !c.Valid() {
		return nil, ErrInvalidCollection
	}

	products, err := s.repo.ListProducts(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if errors.Is(err, port.ErrProductNotFound) {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}
