package gormstore

import (
	"context"

	"campusbite/backend"
	"campusbite/models"

	"gorm.io/gorm"
)

type DeliveryRepository struct {
	db *gorm.DB
}

func (r *DeliveryRepository) Create(ctx context.Context, delivery *models.Delivery) error {
	if delivery.ID == "" {
		delivery.ID = backend.NewID()
	}
	return translate(r.db.WithContext(ctx).Create(delivery).Error, "delivery", delivery.ID)
}

func (r *DeliveryRepository) Get(ctx context.Context, id string) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.WithContext(ctx).First(&delivery, "id = ?", id).Error; err != nil {
		return nil, translate(err, "delivery", id)
	}
	return &delivery, nil
}

func (r *DeliveryRepository) ListByDeliveryPerson(ctx context.Context, deliveryPersonID string, limit int) ([]*models.Delivery, error) {
	var deliveries []*models.Delivery
	err := r.db.WithContext(ctx).
		Where("delivery_person_id = ?", deliveryPersonID).
		Order("created_at desc").
		Limit(limitOrDefault(limit, 100)).
		Find(&deliveries).Error
	return deliveries, err
}
