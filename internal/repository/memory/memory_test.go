package memory

import (
	"context"
	"testing"
	"time"

	"github.com/pantrytrack/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductGetOrCreate(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()

	first, isNew, err := repo.GetOrCreate(ctx, &domain.Product{Name: "Rice", Inventory: 10})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NotZero(t, first.ID)

	second, isNew, err := repo.GetOrCreate(ctx, &domain.Product{Name: "Rice", Inventory: 99})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 10, second.Inventory)
}

func TestProductLookupsAndDelete(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()

	created, _, err := repo.GetOrCreate(ctx, &domain.Product{Name: "Rice"})
	require.NoError(t, err)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rice", byID.Name)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetByName(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), domain.ErrNotFound)
}

func TestProductListSortsByName(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()

	for _, name := range []string{"Sugar", "Beans", "Rice"} {
		_, _, err := repo.GetOrCreate(ctx, &domain.Product{Name: name})
		require.NoError(t, err)
	}

	products, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Beans", products[0].Name)
	assert.Equal(t, "Rice", products[1].Name)
	assert.Equal(t, "Sugar", products[2].Name)
}

func TestProductUpdateReturnsCopies(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()

	created, _, err := repo.GetOrCreate(ctx, &domain.Product{Name: "Rice", Inventory: 10})
	require.NoError(t, err)

	// Mutating the returned value must not leak into the store.
	created.Inventory = 999

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Inventory)
}

func TestSnapshotListNewestFirst(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	for i, qty := range []int{100, 90, 80} {
		require.NoError(t, repo.Create(ctx, &domain.InventorySnapshot{
			ProductID: 1,
			Inventory: qty,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	// Another product's snapshots stay out of the listing.
	require.NoError(t, repo.Create(ctx, &domain.InventorySnapshot{
		ProductID: 2, Inventory: 5, Timestamp: base,
	}))

	snapshots, err := repo.ListByProduct(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snapshots, 3)
	assert.Equal(t, 80, snapshots[0].Inventory)
	assert.Equal(t, 90, snapshots[1].Inventory)
	assert.Equal(t, 100, snapshots[2].Inventory)
}

func TestSnapshotTimestampTiesBreakOnInsertionOrder(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	first := &domain.InventorySnapshot{ProductID: 1, Inventory: 10, Timestamp: ts}
	second := &domain.InventorySnapshot{ProductID: 1, Inventory: 20, Timestamp: ts}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	snapshots, err := repo.ListByProduct(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, second.ID, snapshots[0].ID, "later insert sorts first on a tie")
}

func TestMarkIgnored(t *testing.T) {
	repo := NewSnapshotRepository()
	ctx := context.Background()

	s := &domain.InventorySnapshot{ProductID: 1, Inventory: 10, Timestamp: time.Now()}
	require.NoError(t, repo.Create(ctx, s))

	require.NoError(t, repo.MarkIgnored(ctx, s.ID))
	// Marking twice is fine; the flag never flips back.
	require.NoError(t, repo.MarkIgnored(ctx, s.ID))

	snapshots, err := repo.ListByProduct(ctx, 1)
	require.NoError(t, err)
	assert.True(t, snapshots[0].Ignored)

	assert.ErrorIs(t, repo.MarkIgnored(ctx, 999), domain.ErrNotFound)
}

func TestApplyReadingMovesLevelWithSnapshot(t *testing.T) {
	products := NewProductRepository()
	snapshots := NewSnapshotRepository()
	readings := NewReadingRepository(products, snapshots)
	ctx := context.Background()

	rice, _, err := products.GetOrCreate(ctx, &domain.Product{Name: "Rice", Inventory: 10})
	require.NoError(t, err)

	level := 7
	s := &domain.InventorySnapshot{ProductID: rice.ID, Inventory: 7, Timestamp: time.Now()}
	require.NoError(t, readings.ApplyReading(ctx, s, &level))

	updated, err := products.GetByID(ctx, rice.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Inventory)

	log, err := snapshots.ListByProduct(ctx, rice.ID)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, 7, log[0].Inventory)
}

func TestApplyReadingWithNilLevelOnlyAppends(t *testing.T) {
	products := NewProductRepository()
	snapshots := NewSnapshotRepository()
	readings := NewReadingRepository(products, snapshots)
	ctx := context.Background()

	rice, _, err := products.GetOrCreate(ctx, &domain.Product{Name: "Rice", Inventory: 10})
	require.NoError(t, err)

	s := &domain.InventorySnapshot{ProductID: rice.ID, Inventory: 99, Timestamp: time.Now()}
	require.NoError(t, readings.ApplyReading(ctx, s, nil))

	unchanged, err := products.GetByID(ctx, rice.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, unchanged.Inventory)

	log, err := snapshots.ListByProduct(ctx, rice.ID)
	require.NoError(t, err)
	assert.Len(t, log, 1)
}

func TestApplyReadingUnknownProductLeavesNoOrphanSnapshot(t *testing.T) {
	products := NewProductRepository()
	snapshots := NewSnapshotRepository()
	readings := NewReadingRepository(products, snapshots)
	ctx := context.Background()

	level := 5
	s := &domain.InventorySnapshot{ProductID: 42, Inventory: 5, Timestamp: time.Now()}
	assert.ErrorIs(t, readings.ApplyReading(ctx, s, &level), domain.ErrNotFound)

	log, err := snapshots.ListByProduct(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, log)
}
