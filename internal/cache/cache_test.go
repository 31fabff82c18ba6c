package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightdesk/flightdesk/internal/models"
)

func TestGenerateKey(t *testing.T) {
	criteria := models.SearchCriteria{
		Origin:      "BOM",
		Destination: "GOX",
		TripDate:    "2025-11-20",
		Travellers:  2,
	}

	// Equal criteria always hash to the same key, so a shared search link
	// lands on the same cache entry.
	assert.Equal(t, generateKey(criteria), generateKey(criteria))
	assert.Contains(t, generateKey(criteria), "flight:")

	other := criteria
	other.Travellers = 3
	assert.NotEqual(t, generateKey(criteria), generateKey(other))
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	ctx := context.Background()
	criteria := models.SearchCriteria{Origin: "DEL", Destination: "BOM", TripDate: "2025-11-20", Travellers: 1}

	require.NoError(t, c.Set(ctx, criteria, []models.Flight{{ID: "f1"}}))
	_, found := c.Get(ctx, criteria)
	assert.False(t, found)
	assert.NoError(t, c.Close())
}
