package forecast

import (
	"testing"

	"github.com/pantrytrack/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func days(v float64) *float64 {
	return &v
}

func TestUrgencyRankUnknownsSortLast(t *testing.T) {
	products := []*domain.Product{
		{Name: "flour", DaysLeft: days(5)},
		{Name: "salt"},
		{Name: "rice", DaysLeft: days(1)},
		{Name: "sugar"},
	}

	ranked := UrgencyRank(products)

	names := make([]string, len(ranked))
	for i, p := range ranked {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"rice", "flour", "salt", "sugar"}, names)
}

func TestUrgencyRankTiesKeepInputOrder(t *testing.T) {
	products := []*domain.Product{
		{Name: "beans", DaysLeft: days(2)},
		{Name: "oats", DaysLeft: days(2)},
		{Name: "rice", DaysLeft: days(2)},
	}

	ranked := UrgencyRank(products)

	require.Len(t, ranked, 3)
	assert.Equal(t, "beans", ranked[0].Name)
	assert.Equal(t, "oats", ranked[1].Name)
	assert.Equal(t, "rice", ranked[2].Name)
}

// Negative forecasts are real values and sort ahead of everything.
func TestUrgencyRankNegativeForecastSortsFirst(t *testing.T) {
	products := []*domain.Product{
		{Name: "flour", DaysLeft: days(5)},
		{Name: "rice", DaysLeft: days(-2)},
	}

	ranked := UrgencyRank(products)
	assert.Equal(t, "rice", ranked[0].Name)
}

func TestUrgencyRankDoesNotModifyInput(t *testing.T) {
	products := []*domain.Product{
		{Name: "flour", DaysLeft: days(5)},
		{Name: "rice", DaysLeft: days(1)},
	}

	_ = UrgencyRank(products)

	assert.Equal(t, "flour", products[0].Name)
	assert.Equal(t, "rice", products[1].Name)
}

func TestUrgencyRankEmpty(t *testing.T) {
	assert.Empty(t, UrgencyRank(nil))
}

// The sentinel used to push unknowns last must never surface as a
// DaysLeft value.
func TestUrgencyRankLeavesUnknownsNil(t *testing.T) {
	products := []*domain.Product{{Name: "salt"}}

	ranked := UrgencyRank(products)
	require.Len(t, ranked, 1)
	assert.Nil(t, ranked[0].DaysLeft)
}
