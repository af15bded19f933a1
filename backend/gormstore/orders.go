package gormstore

import (
	"context"
	"time"

	"campusbite/backend"
	"campusbite/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

// Create stores the order together with its initial history entry.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = backend.NewID()
	}
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("StatusHistory").Create(order).Error; err != nil {
			return translate(err, "order", order.ID)
		}
		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  order.Status,
			ChangedBy: order.CustomerUserID,
			Note:      "Order placed",
		}
		return tx.Create(&history).Error
	})
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "order", id)
	}
	return &order, nil
}

func (r *OrderRepository) ListByRestaurant(ctx context.Context, restaurantID string, limit int) ([]*models.Order, error) {
	var orders []*models.Order
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at desc").
		Limit(limitOrDefault(limit, 100)).
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerUserID string, limit int) ([]*models.Order, error) {
	var orders []*models.Order
	err := r.db.WithContext(ctx).
		Where("customer_user_id = ?", customerUserID).
		Order("created_at desc").
		Limit(limitOrDefault(limit, 100)).
		Find(&orders).Error
	return orders, err
}

// Transition is a compare-and-set on the status column. Two callers racing
// on the same order cannot both move it out of t.From.
func (r *OrderRepository) Transition(ctx context.Context, id string, t backend.Transition) (*models.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     t.To,
			"updated_at": time.Now(),
		}
		if t.DeliveryPersonID != "" {
			updates["delivery_person_id"] = t.DeliveryPersonID
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, t.From).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.Order
			if err := tx.Select("id", "status").First(&current, "id = ?", id).Error; err != nil {
				return translate(err, "order", id)
			}
			return backend.Conflict("order %s is %s, expected %s", id, current.Status, t.From)
		}

		history := models.OrderStatusHistory{
			OrderID:    id,
			FromStatus: t.From,
			ToStatus:   t.To,
			ChangedBy:  t.ChangedBy,
			Note:       t.Note,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}
