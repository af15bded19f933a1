package gormstore

import (
	"context"
	"time"

	"campusbite/backend"
	"campusbite/models"

	"gorm.io/gorm"
)

type FoodRepository struct {
	db *gorm.DB
}

func (r *FoodRepository) Create(ctx context.Context, item *models.FoodItem) error {
	if item.ID == "" {
		item.ID = backend.NewID()
	}
	if item.PostDate.IsZero() {
		item.PostDate = time.Now()
	}
	return translate(r.db.WithContext(ctx).Create(item).Error, "food item", item.ID)
}

func (r *FoodRepository) Get(ctx context.Context, id string) (*models.FoodItem, error) {
	var item models.FoodItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, "food item", id)
	}
	return &item, nil
}

func (r *FoodRepository) List(ctx context.Context, opts backend.ListOptions) ([]*models.FoodItem, error) {
	var items []*models.FoodItem
	q := r.db.WithContext(ctx).Order("created_at desc")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *FoodRepository) ListByRestaurant(ctx context.Context, restaurantID string, limit int) ([]*models.FoodItem, error) {
	var items []*models.FoodItem
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at desc").
		Limit(limitOrDefault(limit, 100)).
		Find(&items).Error
	return items, err
}

func (r *FoodRepository) Update(ctx context.Context, id string, patch backend.FoodPatch) (*models.FoodItem, error) {
	item, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyFoodPatch(item, patch)
	// Save writes every column so the json-serialized owner list is encoded.
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, translate(err, "food item", id)
	}
	return item, nil
}

func applyFoodPatch(item *models.FoodItem, p backend.FoodPatch) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
	if p.RestaurantID != nil {
		item.RestaurantID = *p.RestaurantID
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Rating != nil {
		item.Rating = *p.Rating
	}
	if p.Available != nil {
		item.Available = models.Bool(*p.Available)
	}
	if p.OwnerUserIDs != nil {
		item.OwnerUserIDs = p.OwnerUserIDs
	}
	if p.PostDate != nil {
		item.PostDate = *p.PostDate
	}
}
