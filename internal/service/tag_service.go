package service

import (
	"context"

	"github.com/google/uuid"

	"todo-app/internal/model"
	"todo-app/internal/repository"
)

type TagInput struct {
	Name string `json:"name" validate:"required,notblank,tagname"`
}

// TagService exposes the caller's tag vocabulary.
type TagService struct {
	tagRepo *repository.TagRepository
}

func NewTagService(tagRepo *repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

func (s *TagService) List(ctx context.Context, userID uuid.UUID) ([]model.Tag, error) {
	return s.tagRepo.ListByUser(ctx, userID)
}

// Create adds an explicit tag. Unlike reconciliation it refuses a name the
// user already has in any casing.
func (s *TagService) Create(ctx context.Context, userID uuid.UUID, input TagInput) (*model.Tag, error) {
	if err := validateInput("tag.create", input); err != nil {
		return nil, err
	}
	return s.tagRepo.Create(ctx, userID, input.Name)
}
