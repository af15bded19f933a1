package gormstore

import (
	"context"

	"campusbite/backend"
	"campusbite/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = backend.NewID()
	}
	return translate(r.db.WithContext(ctx).Create(user).Error, "user", user.ID)
}

func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user", id)
	}
	return &user, nil
}

func (r *UserRepository) FindByAccount(ctx context.Context, accountID string) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at asc").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) ListByRole(ctx context.Context, role models.UserRole, limit int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("username asc").
		Limit(limitOrDefault(limit, 100)).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(ctx context.Context, id string, patch backend.UserPatch) (*models.User, error) {
	user, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.AvatarURL != nil {
		user.AvatarURL = *patch.AvatarURL
	}
	if patch.Language != nil {
		user.Language = *patch.Language
	}
	if patch.IsPublic != nil {
		user.IsPublic = *patch.IsPublic
	}
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, translate(err, "user", id)
	}
	return user, nil
}
