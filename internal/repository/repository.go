// internal/repository/repository.go
package repository

import (
	"context"

	"github.com/pantrytrack/backend/internal/domain"
)

// ProductRepository is the storage collaborator for products. The
// analytics engine never touches a database handle directly; it is
// handed one of these.
type ProductRepository interface {
	// GetOrCreate returns the product named p.Name, creating it from p
	// when absent. The boolean reports whether a new row was created.
	GetOrCreate(ctx context.Context, p *domain.Product) (*domain.Product, bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByName(ctx context.Context, name string) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Product, error)
}

// SnapshotRepository is the storage collaborator for the append-only
// snapshot log. Snapshots are never deleted here; the only permitted
// mutation is flagging one as ignored.
type SnapshotRepository interface {
	Create(ctx context.Context, s *domain.InventorySnapshot) error
	// ListByProduct returns all snapshots for a product, newest first.
	ListByProduct(ctx context.Context, productID int64) ([]*domain.InventorySnapshot, error)
	MarkIgnored(ctx context.Context, snapshotID int64) error
}

// ReadingRepository persists one observed inventory reading: the
// snapshot row plus, when level is non-nil, the product's current
// count. Both writes commit together, so the snapshot log can never
// disagree with the on-hand level it moved.
type ReadingRepository interface {
	ApplyReading(ctx context.Context, s *domain.InventorySnapshot, level *int) error
}
