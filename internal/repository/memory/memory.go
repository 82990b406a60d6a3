// internal/repository/memory/memory.go
//
// In-memory implementations of the storage collaborators. They keep the
// same semantics as the postgres repositories (newest-first snapshot
// ordering, ErrNotFound on misses, monotonic ignored flag) so the
// analytics engine can run against either.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pantrytrack/backend/internal/domain"
	"github.com/pantrytrack/backend/internal/repository"
)

type ProductRepository struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		nextID:   1,
		products: make(map[int64]*domain.Product),
	}
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) GetOrCreate(ctx context.Context, p *domain.Product) (*domain.Product, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.products {
		if existing.Name == p.Name {
			cp := *existing
			return &cp, false, nil
		}
	}

	created := *p
	created.ID = r.nextID
	r.nextID++
	if created.LastUpdated.IsZero() {
		created.LastUpdated = time.Now()
	}
	r.products[created.ID] = &created

	cp := created
	return &cp, true, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepository) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		cp := *p
		products = append(products, &cp)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

type SnapshotRepository struct {
	mu        sync.RWMutex
	nextID    int64
	snapshots map[int64]*domain.InventorySnapshot
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{
		nextID:    1,
		snapshots: make(map[int64]*domain.InventorySnapshot),
	}
}

var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)

func (r *SnapshotRepository) Create(ctx context.Context, s *domain.InventorySnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = r.nextID
	r.nextID++
	cp := *s
	r.snapshots[cp.ID] = &cp
	return nil
}

func (r *SnapshotRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.InventorySnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.InventorySnapshot
	for _, s := range r.snapshots {
		if s.ProductID == productID {
			cp := *s
			result = append(result, &cp)
		}
	}

	// Newest first; insertion order breaks timestamp ties like the
	// postgres ORDER BY timestamp DESC, id DESC.
	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].ID > result[j].ID
		}
		return result[i].Timestamp.After(result[j].Timestamp)
	})

	return result, nil
}

func (r *SnapshotRepository) MarkIgnored(ctx context.Context, snapshotID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.snapshots[snapshotID]
	if !ok {
		return domain.ErrNotFound
	}
	s.Ignored = true
	return nil
}

// ReadingRepository pairs the two stores so a reading lands in both or
// neither, matching the transactional postgres implementation.
type ReadingRepository struct {
	products  *ProductRepository
	snapshots *SnapshotRepository
}

func NewReadingRepository(products *ProductRepository, snapshots *SnapshotRepository) *ReadingRepository {
	return &ReadingRepository{products: products, snapshots: snapshots}
}

var _ repository.ReadingRepository = (*ReadingRepository)(nil)

func (r *ReadingRepository) ApplyReading(ctx context.Context, s *domain.InventorySnapshot, level *int) error {
	if level != nil {
		// Check the product first so a miss leaves no orphan snapshot.
		if _, err := r.products.GetByID(ctx, s.ProductID); err != nil {
			return err
		}
	}

	if err := r.snapshots.Create(ctx, s); err != nil {
		return err
	}

	if level == nil {
		return nil
	}

	p, err := r.products.GetByID(ctx, s.ProductID)
	if err != nil {
		return err
	}
	p.Inventory = *level
	p.LastUpdated = time.Now()
	return r.products.Update(ctx, p)
}
