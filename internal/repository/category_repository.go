package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todo-app/internal/errs"
	"todo-app/internal/model"
)

// CategoryRepository manages the shared task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	switch {
	case err == nil:
		return &category, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, errs.NotFound("category.get", "category not found")
	default:
		return nil, fmt.Errorf("find category: %w", err)
	}
}

func (r *CategoryRepository) Create(ctx context.Context, name, color string) (*model.Category, error) {
	category := model.Category{Name: name, Color: color}
	if err := r.db.WithContext(ctx).Create(&category).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflict("category.create", "category with this name already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

// Delete removes a category. Tasks that referenced it keep existing with no category.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("detach tasks from category: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&model.Category{})
		if res.Error != nil {
			return fmt.Errorf("delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("category.delete", "category not found")
		}
		return nil
	})
}

// EnsureDefaults inserts every category whose name does not exist yet and
// returns how many were added.
func (r *CategoryRepository) EnsureDefaults(ctx context.Context, defaults []model.Category) (int, error) {
	added := 0
	for _, def := range defaults {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Category{}).Where("name = ?", def.Name).Count(&count).Error; err != nil {
			return added, fmt.Errorf("count category: %w", err)
		}
		if count > 0 {
			continue
		}
		if _, err := r.Create(ctx, def.Name, def.Color); err != nil {
			if errs.Is(err, errs.EConflict) {
				continue
			}
			return added, err
		}
		added++
	}
	return added, nil
}
