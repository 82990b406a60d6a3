// internal/service/product_service.go
package service

import (
	"context"
	"time"

	"github.com/pantrytrack/backend/internal/cache"
	"github.com/pantrytrack/backend/internal/domain"
	"github.com/pantrytrack/backend/internal/forecast"
	"github.com/pantrytrack/backend/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ProductService carries the plain product mutations. Inventory writes
// are the one place with a side effect: they append a snapshot to the
// history and drop the cached ranking.
type ProductService struct {
	repo   repository.ProductRepository
	engine *forecast.Engine
	cache  cache.ForecastCache
}

func NewProductService(repo repository.ProductRepository, engine *forecast.Engine, cacheImpl cache.ForecastCache) *ProductService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	return &ProductService{repo: repo, engine: engine, cache: cacheImpl}
}

// AddProduct creates a product by name, or returns the existing one
// untouched. Repeated calls with the same name are idempotent.
func (s *ProductService) AddProduct(ctx context.Context, name string, stock int, price decimal.Decimal, unitType string, idealStock int, imagePath string) (*domain.Product, error) {
	p := &domain.Product{
		Name:        name,
		Inventory:   stock,
		Price:       price.Round(2),
		UnitType:    unitType,
		IdealStock:  idealStock,
		ImagePath:   imagePath,
		LastUpdated: time.Now(),
	}

	created, isNew, err := s.repo.GetOrCreate(ctx, p)
	if err != nil {
		return nil, err
	}
	if isNew {
		log.Info().Str("product", name).Int("stock", stock).Msg("product created")
	}
	return created, nil
}

func (s *ProductService) GetProduct(ctx context.Context, name string) (*domain.Product, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *ProductService) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

// DeleteProduct removes the product row. Its snapshots stay behind for
// audit.
func (s *ProductService) DeleteProduct(ctx context.Context, name string) error {
	p, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, p.ID)
}

// IncrementPrice adds a delta to the product's price, rounded to two
// places.
func (s *ProductService) IncrementPrice(ctx context.Context, name string, delta decimal.Decimal) (*domain.Product, error) {
	return s.mutate(ctx, name, func(p *domain.Product) {
		p.Price = p.Price.Add(delta).Round(2)
	})
}

// IncrementIdealStock adds a delta to the product's target level.
func (s *ProductService) IncrementIdealStock(ctx context.Context, name string, delta int) (*domain.Product, error) {
	return s.mutate(ctx, name, func(p *domain.Product) {
		p.IdealStock += delta
	})
}

// SetIdealStock replaces the product's target level.
func (s *ProductService) SetIdealStock(ctx context.Context, name string, target int) (*domain.Product, error) {
	return s.mutate(ctx, name, func(p *domain.Product) {
		p.IdealStock = target
	})
}

// IncrementStock adds a delta to the on-hand count and records a
// snapshot of the new level.
func (s *ProductService) IncrementStock(ctx context.Context, name string, delta int) (*domain.Product, error) {
	return s.mutateStock(ctx, name, func(p *domain.Product) {
		p.Inventory += delta
	})
}

// SetStock replaces the on-hand count and records a snapshot of the new
// level. Negative and unchanged values are accepted verbatim.
func (s *ProductService) SetStock(ctx context.Context, name string, level int) (*domain.Product, error) {
	return s.mutateStock(ctx, name, func(p *domain.Product) {
		p.Inventory = level
	})
}

// SetImagePath points the product at a stored image.
func (s *ProductService) SetImagePath(ctx context.Context, name, path string) (*domain.Product, error) {
	return s.mutate(ctx, name, func(p *domain.Product) {
		p.ImagePath = path
	})
}

func (s *ProductService) mutate(ctx context.Context, name string, apply func(*domain.Product)) (*domain.Product, error) {
	p, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	apply(p)
	p.LastUpdated = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) mutateStock(ctx context.Context, name string, apply func(*domain.Product)) (*domain.Product, error) {
	p, err := s.mutate(ctx, name, apply)
	if err != nil {
		return nil, err
	}

	if _, err := s.engine.Record(ctx, p.ID, p.Inventory); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("forecast: cache invalidate failed")
	}

	return p, nil
}
