package catalog

import (
	"math"

	"campusbite/backend"
	"campusbite/models"
)

// RepairFoodItem fills the optional fields a stored item may lack. It
// returns the repaired copy and a patch holding only what changed; repairing
// an already repaired item yields an empty patch.
func RepairFoodItem(item models.FoodItem) (models.FoodItem, backend.FoodPatch) {
	var patch backend.FoodPatch

	if math.IsNaN(item.Rating) || item.Rating < 0 || item.Rating > 5 {
		item.Rating = 0
		patch.Rating = &item.Rating
	}
	if item.Available == nil {
		item.Available = models.Bool(true)
		patch.Available = item.Available
	}
	if item.Category == "" {
		item.Category = models.DefaultCategory
		patch.Category = &item.Category
	}
	if item.Description == "" {
		item.Description = models.DefaultDescription
		patch.Description = &item.Description
	}
	if item.PostDate.IsZero() && !item.CreatedAt.IsZero() {
		item.PostDate = item.CreatedAt
		patch.PostDate = &item.PostDate
	}
	return item, patch
}
