// internal/service/forecast_service.go
package service

import (
	"context"

	"github.com/pantrytrack/backend/internal/cache"
	"github.com/pantrytrack/backend/internal/domain"
	"github.com/pantrytrack/backend/internal/forecast"
	"github.com/pantrytrack/backend/internal/repository"
	"github.com/rs/zerolog/log"
)

// ForecastService exposes the analytics engine to the API: consumption
// estimates, depletion forecasts, and the cached urgency ranking.
type ForecastService struct {
	repo   repository.ProductRepository
	engine *forecast.Engine
	cache  cache.ForecastCache
}

func NewForecastService(repo repository.ProductRepository, engine *forecast.Engine, cacheImpl cache.ForecastCache) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	return &ForecastService{repo: repo, engine: engine, cache: cacheImpl}
}

// History returns the product's filtered snapshot log, newest first.
func (s *ForecastService) History(ctx context.Context, name string) ([]*domain.InventorySnapshot, error) {
	p, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.engine.History(ctx, p.ID)
}

// UsagePerDay returns the product's estimated daily consumption, nil
// when there is not enough usable history.
func (s *ForecastService) UsagePerDay(ctx context.Context, name string) (*float64, error) {
	p, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.engine.UsagePerDay(ctx, p)
}

// DaysUntilOut returns the product's depletion forecast, nil when the
// product is not measurably depleting.
func (s *ForecastService) DaysUntilOut(ctx context.Context, name string) (*float64, error) {
	p, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.engine.DaysUntilOut(ctx, p, nil)
}

// RefreshForecasts recomputes every product's forecast, persists the
// fill-forward DaysLeft values, and drops the cached ranking.
func (s *ForecastService) RefreshForecasts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.engine.FillForecastForAll(ctx, products); err != nil {
		return nil, err
	}

	for _, p := range products {
		if err := s.repo.Update(ctx, p); err != nil {
			return nil, err
		}
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("forecast: cache invalidate failed")
	}

	return products, nil
}

// UrgencyRanking returns every product ordered most-urgent first,
// serving from the cache when it holds a ranking.
func (s *ForecastService) UrgencyRanking(ctx context.Context) ([]*domain.Product, error) {
	if ranked, ok, err := s.cache.GetRanking(ctx); err == nil && ok {
		return ranked, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get ranking failed")
	}

	products, err := s.RefreshForecasts(ctx)
	if err != nil {
		return nil, err
	}

	ranked := forecast.UrgencyRank(products)

	if err := s.cache.SetRanking(ctx, ranked); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set ranking failed")
	}

	return ranked, nil
}
