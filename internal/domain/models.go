// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a stocked product and its cached depletion forecast
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Inventory   int             `json:"inventory" db:"inventory"`
	Price       decimal.Decimal `json:"price" db:"price"`
	UnitType    string          `json:"unit_type" db:"unit_type"`
	IdealStock  int             `json:"ideal_stock" db:"ideal_stock"`
	ImagePath   string          `json:"image_path" db:"image_path"`
	LastUpdated time.Time       `json:"last_updated" db:"last_updated"`
	// DaysLeft is the cached depletion forecast. nil means unknown or
	// not measurably depleting.
	DaysLeft *float64 `json:"days_left" db:"days_left"`
}

// InventorySnapshot is a point-in-time reading of a product's on-hand
// level. Immutable once recorded, except for the Ignored flag which only
// ever transitions false to true.
type InventorySnapshot struct {
	ID        int64     `json:"id" db:"id"`
	ProductID int64     `json:"product_id" db:"product_id"`
	Inventory int       `json:"inventory" db:"inventory"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Ignored   bool      `json:"ignored" db:"ignored"`
}

// IngestRow is a single record from an imported inventory count sheet
type IngestRow struct {
	ProductName string
	Quantity    int
	Timestamp   time.Time
}

// IngestResult summarizes one imported count sheet
type IngestResult struct {
	FileName    string    `json:"file_name"`
	TotalRows   int       `json:"total_rows"`
	SkippedRows int       `json:"skipped_rows"`
	NewProducts int       `json:"new_products"`
	ProcessedAt time.Time `json:"processed_at"`
}
