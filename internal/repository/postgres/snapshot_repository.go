// internal/repository/postgres/snapshot_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pantrytrack/backend/internal/domain"
	"github.com/pantrytrack/backend/internal/repository"
)

type snapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) repository.SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(ctx context.Context, s *domain.InventorySnapshot) error {
	query := `
		INSERT INTO inventory_snapshots (product_id, inventory, timestamp, ignored)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if err := r.db.QueryRowxContext(ctx, query,
		s.ProductID, s.Inventory, s.Timestamp, s.Ignored,
	).Scan(&s.ID); err != nil {
		return fmt.Errorf("failed to create snapshot for product %d: %w", s.ProductID, err)
	}

	return nil
}

func (r *snapshotRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.InventorySnapshot, error) {
	query := `
		SELECT id, product_id, inventory, timestamp, ignored
		FROM inventory_snapshots
		WHERE product_id = $1
		ORDER BY timestamp DESC, id DESC
	`

	var snapshots []*domain.InventorySnapshot
	if err := sqlx.SelectContext(ctx, r.db, &snapshots, query, productID); err != nil {
		return nil, fmt.Errorf("failed to list snapshots for product %d: %w", productID, err)
	}

	return snapshots, nil
}

func (r *snapshotRepository) MarkIgnored(ctx context.Context, snapshotID int64) error {
	// The flag is monotonic: false to true, never back.
	res, err := r.db.ExecContext(ctx,
		`UPDATE inventory_snapshots SET ignored = TRUE WHERE id = $1`, snapshotID)
	if err != nil {
		return fmt.Errorf("failed to mark snapshot %d ignored: %w", snapshotID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check mark result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
