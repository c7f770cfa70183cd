package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"todo-app/internal/errs"
	"todo-app/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByExternalID looks a user up by the identity provider's subject.
func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, errs.NotFound("user.find", "user not found")
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

// Create inserts a new user. A second user for the same external id is a conflict.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return errs.Conflict("user.create", "user profile already exists")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateProfile replaces the editable profile fields of an existing user.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	res := r.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"username": user.Username,
		"email":    user.Email,
	})
	if res.Error != nil {
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("user.update", "user profile not found")
	}
	return r.db.WithContext(ctx).First(user, "id = ?", user.ID).Error
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
