// internal/repository/postgres/product_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pantrytrack/backend/internal/domain"
	"github.com/pantrytrack/backend/internal/repository"
)

type productRepository struct {
	db *DB
}

func NewProductRepository(db *DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetOrCreate(ctx context.Context, p *domain.Product) (*domain.Product, bool, error) {
	// Try the fast path first; only insert when the name is absent so
	// repeated creates stay idempotent and never reset existing fields.
	existing, err := r.GetByName(ctx, p.Name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	query := `
		INSERT INTO products (name, inventory, price, unit_type, ideal_stock, image_path, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (name) DO NOTHING
		RETURNING id, last_updated
	`

	created := *p
	err = r.db.QueryRowxContext(ctx, query,
		p.Name, p.Inventory, p.Price, p.UnitType, p.IdealStock, p.ImagePath,
	).Scan(&created.ID, &created.LastUpdated)
	if err == sql.ErrNoRows {
		// Lost a race with a concurrent insert; the row exists now.
		existing, err := r.GetByName(ctx, p.Name)
		return existing, false, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create product: %w", err)
	}

	return &created, true, nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, inventory, price, unit_type, ideal_stock, image_path, last_updated, days_left
		FROM products
		WHERE id = $1
	`

	var p domain.Product
	if err := sqlx.GetContext(ctx, r.db, &p, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}

	return &p, nil
}

func (r *productRepository) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	query := `
		SELECT id, name, inventory, price, unit_type, ideal_stock, image_path, last_updated, days_left
		FROM products
		WHERE name = $1
	`

	var p domain.Product
	if err := sqlx.GetContext(ctx, r.db, &p, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %q: %w", name, err)
	}

	return &p, nil
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products
		SET inventory = $2, price = $3, unit_type = $4, ideal_stock = $5,
		    image_path = $6, last_updated = $7, days_left = $8
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.Inventory, p.Price, p.UnitType, p.IdealStock,
		p.ImagePath, p.LastUpdated, p.DaysLeft,
	)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	// Snapshots are kept for audit; the product row alone goes away.
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, name, inventory, price, unit_type, ideal_stock, image_path, last_updated, days_left
		FROM products
		ORDER BY name
	`

	var products []*domain.Product
	if err := sqlx.SelectContext(ctx, r.db, &products, query); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}
