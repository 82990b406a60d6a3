package service

import (
	"context"
	"testing"
	"time"

	"github.com/pantrytrack/backend/internal/cache"
	"github.com/pantrytrack/backend/internal/domain"
	"github.com/pantrytrack/backend/internal/forecast"
	"github.com/pantrytrack/backend/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	products  *memory.ProductRepository
	snapshots *memory.SnapshotRepository
	product   *ProductService
	forecast  *ForecastService
}

func newTestFixture() *testFixture {
	products := memory.NewProductRepository()
	snapshots := memory.NewSnapshotRepository()
	engine := forecast.NewEngine(snapshots)
	noop := cache.NewNoopForecastCache()
	return &testFixture{
		products:  products,
		snapshots: snapshots,
		product:   NewProductService(products, engine, noop),
		forecast:  NewForecastService(products, engine, noop),
	}
}

func (f *testFixture) seedHistory(t *testing.T, productID int64, base time.Time, readings ...int) {
	t.Helper()
	for i, qty := range readings {
		require.NoError(t, f.snapshots.Create(context.Background(), &domain.InventorySnapshot{
			ProductID: productID,
			Inventory: qty,
			Timestamp: base.Add(time.Duration(i) * 24 * time.Hour),
		}))
	}
}

func TestForecastServiceUsageAndForecast(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	p, err := f.product.AddProduct(ctx, "Rice", 45, decimal.NewFromInt(3), "kg", 100, "")
	require.NoError(t, err)
	f.seedHistory(t, p.ID, base, 100, 90, 70)

	usage, err := f.forecast.UsagePerDay(ctx, "Rice")
	require.NoError(t, err)
	require.NotNil(t, usage)
	assert.InDelta(t, 15.0, *usage, 1e-9)

	days, err := f.forecast.DaysUntilOut(ctx, "Rice")
	require.NoError(t, err)
	require.NotNil(t, days)
	assert.InDelta(t, 3.0, *days, 1e-9)
}

func TestForecastServiceNotFound(t *testing.T) {
	f := newTestFixture()

	_, err := f.forecast.UsagePerDay(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.forecast.DaysUntilOut(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.forecast.History(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRefreshForecastsPersistsDaysLeft(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	p, err := f.product.AddProduct(ctx, "Rice", 45, decimal.NewFromInt(3), "kg", 100, "")
	require.NoError(t, err)
	f.seedHistory(t, p.ID, base, 100, 90, 70)

	_, err = f.product.AddProduct(ctx, "Salt", 10, decimal.NewFromInt(1), "g", 50, "")
	require.NoError(t, err)

	_, err = f.forecast.RefreshForecasts(ctx)
	require.NoError(t, err)

	stored, err := f.products.GetByName(ctx, "Rice")
	require.NoError(t, err)
	require.NotNil(t, stored.DaysLeft)
	assert.InDelta(t, 3.0, *stored.DaysLeft, 1e-9)

	noHistory, err := f.products.GetByName(ctx, "Salt")
	require.NoError(t, err)
	assert.Nil(t, noHistory.DaysLeft)
}

func TestUrgencyRankingOrdersAllProducts(t *testing.T) {
	f := newTestFixture()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	rice, err := f.product.AddProduct(ctx, "Rice", 45, decimal.NewFromInt(3), "kg", 100, "")
	require.NoError(t, err)
	f.seedHistory(t, rice.ID, base, 100, 90, 70) // 15/day, 3 days left

	flour, err := f.product.AddProduct(ctx, "Flour", 50, decimal.NewFromInt(2), "kg", 100, "")
	require.NoError(t, err)
	f.seedHistory(t, flour.ID, base, 20, 15) // 5/day, 10 days left

	_, err = f.product.AddProduct(ctx, "Salt", 10, decimal.NewFromInt(1), "g", 50, "")
	require.NoError(t, err)

	ranked, err := f.forecast.UrgencyRanking(ctx)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "Rice", ranked[0].Name)
	assert.Equal(t, "Flour", ranked[1].Name)
	assert.Equal(t, "Salt", ranked[2].Name, "unforecastable product sorts last")
	assert.Nil(t, ranked[2].DaysLeft)
}
