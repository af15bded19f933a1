package catalog

import (
	"math"
	"testing"
	"time"

	"campusbite/models"

	"github.com/stretchr/testify/assert"
)

func TestRepairFoodItemFillsDefaults(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	item := models.FoodItem{ID: "f1", Name: "Shiro", Price: 80, Rating: math.NaN(), CreatedAt: created}

	repaired, patch := RepairFoodItem(item)

	assert.Equal(t, 0.0, repaired.Rating)
	assert.True(t, repaired.IsAvailable())
	assert.Equal(t, models.DefaultCategory, repaired.Category)
	assert.Equal(t, models.DefaultDescription, repaired.Description)
	assert.Equal(t, created, repaired.PostDate)
	assert.False(t, patch.Empty())
	assert.Equal(t, "unknown", *patch.Category)
	assert.True(t, *patch.Available)

	// The input is not modified.
	assert.Nil(t, item.Available)
	assert.Empty(t, item.Category)
}

func TestRepairFoodItemIsIdempotent(t *testing.T) {
	item := models.FoodItem{ID: "f1", Name: "Tibs", Price: 120, Rating: 7, CreatedAt: time.Now()}

	once, _ := RepairFoodItem(item)
	twice, patch := RepairFoodItem(once)

	assert.True(t, patch.Empty())
	assert.Equal(t, once, twice)
}

func TestRepairFoodItemKeepsExplicitValues(t *testing.T) {
	item := models.FoodItem{
		ID:          "f1",
		Description: "Spicy",
		Category:    "dinner",
		Available:   models.Bool(false),
		Rating:      4.5,
		PostDate:    time.Now(),
	}
	repaired, patch := RepairFoodItem(item)
	assert.True(t, patch.Empty())
	assert.False(t, repaired.IsAvailable())
	assert.Equal(t, 4.5, repaired.Rating)
}
