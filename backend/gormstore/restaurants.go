package gormstore

import (
	"context"
	"errors"

	"campusbite/backend"
	"campusbite/models"

	"gorm.io/gorm"
)

type RestaurantRepository struct {
	db *gorm.DB
}

// Create fails with a conflict when the owner already has a restaurant.
func (r *RestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	if restaurant.ID == "" {
		restaurant.ID = backend.NewID()
	}
	err := r.db.WithContext(ctx).Omit("FoodItems").Create(restaurant).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return backend.Conflict("restaurant for owner %s already exists", restaurant.OwnerUserID)
	}
	return translate(err, "restaurant", restaurant.ID)
}

func (r *RestaurantRepository) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.db.WithContext(ctx).First(&restaurant, "id = ?", id).Error; err != nil {
		return nil, translate(err, "restaurant", id)
	}
	return &restaurant, nil
}

// FindByOwner returns the owner's restaurants, oldest first.
func (r *RestaurantRepository) FindByOwner(ctx context.Context, ownerUserID string) ([]*models.Restaurant, error) {
	var restaurants []*models.Restaurant
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("created_at asc").
		Find(&restaurants).Error
	return restaurants, err
}
