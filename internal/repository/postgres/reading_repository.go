// internal/repository/postgres/reading_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pantrytrack/backend/internal/domain"
	"github.com/pantrytrack/backend/internal/repository"
)

type readingRepository struct {
	db *DB
}

func NewReadingRepository(db *DB) repository.ReadingRepository {
	return &readingRepository{db: db}
}

// ApplyReading inserts the snapshot and, when level is non-nil, moves
// the product's on-hand count in the same transaction.
func (r *readingRepository) ApplyReading(ctx context.Context, s *domain.InventorySnapshot, level *int) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		insertQuery := `
			INSERT INTO inventory_snapshots (product_id, inventory, timestamp, ignored)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, insertQuery,
			s.ProductID, s.Inventory, s.Timestamp, s.Ignored,
		).Scan(&s.ID); err != nil {
			return fmt.Errorf("failed to create snapshot for product %d: %w", s.ProductID, err)
		}

		if level == nil {
			return nil
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE products SET inventory = $1, last_updated = $2 WHERE id = $3`,
			*level, time.Now(), s.ProductID)
		if err != nil {
			return fmt.Errorf("failed to update level for product %d: %w", s.ProductID, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check level update result: %w", err)
		}
		if affected == 0 {
			return domain.ErrNotFound
		}

		return nil
	})
}
