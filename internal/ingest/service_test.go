package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/pantrytrack/backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *memory.ProductRepository, *memory.SnapshotRepository) {
	products := memory.NewProductRepository()
	snapshots := memory.NewSnapshotRepository()
	readings := memory.NewReadingRepository(products, snapshots)
	return NewService(nil, products, snapshots, readings), products, snapshots
}

func TestIngestCreatesProductsAndSnapshots(t *testing.T) {
	svc, products, snapshots := newTestService()
	ctx := context.Background()

	csv := strings.Join([]string{
		"product,quantity,timestamp",
		"Rice,12,2024-03-01T08:00:00Z",
		"Rice,10,2024-03-02T08:00:00Z",
		"Salt,3,2024-03-01",
	}, "\n")

	result, err := svc.ingestCSV(ctx, "counts.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 0, result.SkippedRows)
	assert.Equal(t, 2, result.NewProducts)

	rice, err := products.GetByName(ctx, "Rice")
	require.NoError(t, err)
	assert.Equal(t, 10, rice.Inventory, "latest reading wins")

	log, err := snapshots.ListByProduct(ctx, rice.ID)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, 10, log[0].Inventory)
	assert.Equal(t, 12, log[1].Inventory)
}

func TestIngestSkipsMalformedRows(t *testing.T) {
	svc, products, _ := newTestService()
	ctx := context.Background()

	csv := strings.Join([]string{
		"product,quantity,timestamp",
		"Rice,not-a-number,2024-03-01T08:00:00Z",
		",5,2024-03-01T08:00:00Z",
		"Salt,3,",
	}, "\n")

	result, err := svc.ingestCSV(ctx, "counts.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalRows, "only the valid row lands")
	assert.Equal(t, 2, result.SkippedRows, "malformed rows are counted, not hidden")

	_, err = products.GetByName(ctx, "Rice")
	assert.Error(t, err)

	salt, err := products.GetByName(ctx, "Salt")
	require.NoError(t, err)
	assert.Equal(t, 3, salt.Inventory)
}

func TestIngestRejectsMissingColumns(t *testing.T) {
	svc, _, _ := newTestService()

	csv := "name,count\nRice,3\n"
	_, err := svc.ingestCSV(context.Background(), "counts.csv", strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestIngestBackfilledHistoryDoesNotMoveCurrentStock(t *testing.T) {
	svc, products, snapshots := newTestService()
	ctx := context.Background()

	// First import sets the current level.
	_, err := svc.ingestCSV(ctx, "day1.csv",
		strings.NewReader("product,quantity\nRice,10\n"))
	require.NoError(t, err)

	// A backfill with an old timestamp adds history only.
	_, err = svc.ingestCSV(ctx, "backfill.csv",
		strings.NewReader("product,quantity,timestamp\nRice,99,2020-01-01\n"))
	require.NoError(t, err)

	rice, err := products.GetByName(ctx, "Rice")
	require.NoError(t, err)
	assert.Equal(t, 10, rice.Inventory)

	log, err := snapshots.ListByProduct(ctx, rice.ID)
	require.NoError(t, err)
	assert.Len(t, log, 2)
}
