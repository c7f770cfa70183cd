package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todo-app/internal/errs"
	"todo-app/internal/model"
)

// TagRepository manages per-user tags.
type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name_key ASC, name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// FindByName matches name case-insensitively within the user's tags.
func (r *TagRepository) FindByName(ctx context.Context, userID uuid.UUID, name string) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).Where("user_id = ? AND name_key = ?", userID, model.TagKey(name)).First(&tag).Error
	switch {
	case err == nil:
		return &tag, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, errs.NotFound("tag.find", "tag not found")
	default:
		return nil, fmt.Errorf("find tag: %w", err)
	}
}

// Create adds a tag and reports a conflict when the user already has one
// with the same name in any casing.
func (r *TagRepository) Create(ctx context.Context, userID uuid.UUID, name string) (*model.Tag, error) {
	_, err := r.FindByName(ctx, userID, name)
	switch {
	case err == nil:
		return nil, errs.Conflict("tag.create", "tag with this name already exists")
	case !errs.Is(err, errs.ENotFound):
		return nil, err
	}

	tag := model.Tag{UserID: userID, Name: strings.TrimSpace(name)}
	if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflict("tag.create", "tag with this name already exists")
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return &tag, nil
}

// GetOrCreate returns the user's tag with the given name, creating it if
// needed. Losing an insert race to a concurrent caller is resolved by
// reading the winner's row.
func (r *TagRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	tag, err := r.FindByName(ctx, userID, name)
	switch {
	case err == nil:
		return tag, nil
	case !errs.Is(err, errs.ENotFound):
		return nil, err
	}

	created := model.Tag{UserID: userID, Name: name}
	err = r.db.WithContext(ctx).Create(&created).Error
	switch {
	case err == nil:
		return &created, nil
	case isUniqueViolation(err):
		tag, err := r.FindByName(ctx, userID, name)
		if err != nil {
			return nil, fmt.Errorf("refetch tag after conflict: %w", err)
		}
		return tag, nil
	default:
		return nil, fmt.Errorf("create tag: %w", err)
	}
}

// GetOrCreateMany resolves a list of raw names to tags. Blank names are
// skipped and names equal after trimming and case folding collapse into the
// first occurrence, so the result keeps first-seen order.
func (r *TagRepository) GetOrCreateMany(ctx context.Context, userID uuid.UUID, names []string) ([]model.Tag, error) {
	seen := make(map[string]struct{}, len(names))
	tags := make([]model.Tag, 0, len(names))
	for _, raw := range names {
		key := model.TagKey(raw)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		tag, err := r.GetOrCreate(ctx, userID, raw)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}
