// internal/forecast/ranking.go
package forecast

import (
	"math"
	"sort"

	"github.com/pantrytrack/backend/internal/domain"
)

// unknownDays orders products with no forecast after every real one.
// It is a comparison detail only and never appears as a DaysLeft value.
const unknownDays = math.MaxFloat64

// UrgencyRank orders products most-urgent first: ascending by cached
// DaysLeft, products without a forecast last. The sort is stable, so
// ties and unknowns keep their input order. The input slice is not
// modified.
func UrgencyRank(products []*domain.Product) []*domain.Product {
	ranked := make([]*domain.Product, len(products))
	copy(ranked, products)

	sort.SliceStable(ranked, func(i, j int) bool {
		return daysOrUnknown(ranked[i]) < daysOrUnknown(ranked[j])
	})

	return ranked
}

func daysOrUnknown(p *domain.Product) float64 {
	if p.DaysLeft == nil {
		return unknownDays
	}
	return *p.DaysLeft
}
