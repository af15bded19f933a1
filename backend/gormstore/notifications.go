package gormstore

import (
	"context"

	"campusbite/backend"
	"campusbite/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = backend.NewID()
	}
	return translate(r.db.WithContext(ctx).Create(n).Error, "notification", n.ID)
}

func (r *NotificationRepository) Get(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, translate(err, "notification", id)
	}
	return &n, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	var list []*models.Notification
	err := r.db.WithContext(ctx).
		Where("target_user_id = ?", userID).
		Order("created_at desc").
		Limit(limitOrDefault(limit, 100)).
		Find(&list).Error
	return list, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return backend.NotFound("notification %s not found", id)
	}
	return nil
}
