// internal/forecast/engine.go
package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/pantrytrack/backend/internal/domain"
	"github.com/pantrytrack/backend/internal/repository"
)

const (
	// noiseWindow is the span under which a snapshot is treated as an
	// immediate correction of the one before it.
	noiseWindow = 45 * time.Second

	// usageEpsilon is the rate below which a product counts as not
	// measurably depleting.
	usageEpsilon = 1e-4

	secondsPerDay = 86400.0
)

// Engine computes consumption rates and depletion forecasts from the
// per-product snapshot log. It owns no state beyond the injected
// storage collaborator.
type Engine struct {
	snapshots repository.SnapshotRepository
}

func NewEngine(snapshots repository.SnapshotRepository) *Engine {
	return &Engine{snapshots: snapshots}
}

// Record appends a snapshot of the product's current level, stamped
// now. Levels are taken verbatim; negative and unchanged values are
// legal readings.
func (e *Engine) Record(ctx context.Context, productID int64, level int) (*domain.InventorySnapshot, error) {
	s := &domain.InventorySnapshot{
		ProductID: productID,
		Inventory: level,
		Timestamp: time.Now(),
	}
	if err := e.snapshots.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}
	return s, nil
}

// History returns the product's snapshots newest first, after running
// the noise filter over them and persisting any ignored flags it set.
func (e *Engine) History(ctx context.Context, productID int64) ([]*domain.InventorySnapshot, error) {
	snapshots, err := e.snapshots.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot history: %w", err)
	}

	if err := e.filterNoise(ctx, snapshots); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// filterNoise walks the newest-first sequence pairwise and flags the
// older snapshot of any pair captured less than noiseWindow apart: a
// reading overwritten almost immediately was most likely a data-entry
// correction, so the newer value wins. Only adjacent pairs are
// compared; a chain of close snapshots is not collapsed transitively.
// Re-running the filter on already-flagged snapshots is a no-op.
func (e *Engine) filterNoise(ctx context.Context, snapshots []*domain.InventorySnapshot) error {
	for i := 0; i+1 < len(snapshots); i++ {
		curr, prev := snapshots[i], snapshots[i+1]

		// Strictly less than: a gap of exactly the window survives.
		if curr.Timestamp.Sub(prev.Timestamp) >= noiseWindow {
			continue
		}

		if !prev.Ignored {
			if err := e.snapshots.MarkIgnored(ctx, prev.ID); err != nil {
				return fmt.Errorf("failed to flag snapshot %d: %w", prev.ID, err)
			}
			prev.Ignored = true
		}
	}
	return nil
}

// UsagePerDay estimates the product's average daily consumption from
// its filtered history. Each adjacent pair of snapshots where the level
// strictly decreased contributes one equally-weighted sample; pairs
// touching an ignored snapshot and restock gaps (level flat or rising)
// contribute nothing. Returns nil when no sample exists.
//
// Per-pair averaging, rather than a single total-span rate, keeps the
// estimate stable under irregular sampling and mixed stretches of
// consumption and restocking. Downstream output depends on this exact
// weighting.
func (e *Engine) UsagePerDay(ctx context.Context, p *domain.Product) (*float64, error) {
	history, err := e.History(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	var samples []float64
	for i := 0; i+1 < len(history); i++ {
		curr, prev := history[i], history[i+1]

		if curr.Ignored || prev.Ignored {
			continue
		}
		if prev.Inventory <= curr.Inventory {
			// Restock, not consumption; no sample.
			continue
		}

		deltaUnits := float64(prev.Inventory - curr.Inventory)
		deltaDays := curr.Timestamp.Sub(prev.Timestamp).Seconds() / secondsPerDay
		samples = append(samples, deltaUnits/deltaDays)
	}

	if len(samples) == 0 {
		return nil, nil
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))
	return &mean, nil
}

// DaysUntilOut forecasts how many days remain until the product's
// inventory reaches zero. When dailyUsage is nil it is computed from
// the history. Returns nil when the rate is unknown or below
// usageEpsilon in magnitude (flat or growing stock). The quotient is
// not clamped: a negative rate yields a negative forecast, which the
// ranking treats by its own rule.
func (e *Engine) DaysUntilOut(ctx context.Context, p *domain.Product, dailyUsage *float64) (*float64, error) {
	if dailyUsage == nil {
		usage, err := e.UsagePerDay(ctx, p)
		if err != nil {
			return nil, err
		}
		dailyUsage = usage
	}

	if dailyUsage == nil || abs(*dailyUsage) < usageEpsilon {
		return nil, nil
	}

	days := float64(p.Inventory) / *dailyUsage
	return &days, nil
}

// FillForecastForAll recomputes the forecast for every product and
// caches numeric results on DaysLeft. A nil result leaves the previous
// value in place: this is a fill-forward, and a stale forecast beats
// none for the ranking consumer.
func (e *Engine) FillForecastForAll(ctx context.Context, products []*domain.Product) error {
	for _, p := range products {
		days, err := e.DaysUntilOut(ctx, p, nil)
		if err != nil {
			return fmt.Errorf("failed to forecast product %q: %w", p.Name, err)
		}
		if days != nil {
			p.DaysLeft = days
		}
	}
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
