package repository

import (
	"context"
	"errors"
	"fmt"

	"oralscan-backend/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "find user by email")
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "find user")
	}
	return &user, nil
}

func (r *UserRepository) UpdateName(ctx context.Context, id uint64, name string) error {
	return r.updateColumn(ctx, id, "name", name)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return r.updateColumn(ctx, id, "password_hash", hash)
}

func (r *UserRepository) UpdateFCMToken(ctx context.Context, id uint64, token string) error {
	return r.updateColumn(ctx, id, "fcm_token", token)
}

// DeviceToken satisfies notify.TokenLookup.
func (r *UserRepository) DeviceToken(ctx context.Context, id uint64) (string, error) {
	var token string
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Pluck("fcm_token", &token).Error
	if err != nil {
		return "", fmt.Errorf("device token: %w", err)
	}
	return token, nil
}

func (r *UserRepository) updateColumn(ctx context.Context, id uint64, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("update user %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports 0 for unchanged values, so confirm the row exists.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func translate(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
