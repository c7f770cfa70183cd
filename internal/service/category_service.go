package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"todo-app/internal/model"
	"todo-app/internal/repository"
)

// DefaultCategories are inserted on first start when the table lacks them.
var DefaultCategories = []model.Category{
	{Name: "Work", Color: "#1f77b4"},
	{Name: "Personal", Color: "#2ca02c"},
	{Name: "Shopping", Color: "#ff7f0e"},
	{Name: "Health", Color: "#d62728"},
	{Name: "Learning", Color: "#9467bd"},
}

type CategoryInput struct {
	Name  string `json:"name" validate:"required,notblank,max=100"`
	Color string `json:"color" validate:"omitempty,hexcolor,len=7"`
}

// CategoryService manages the shared category list.
type CategoryService struct {
	repo   *repository.CategoryRepository
	logger *zap.Logger
}

func NewCategoryService(repo *repository.CategoryRepository, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{repo: repo, logger: logger}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*model.Category, error) {
	if err := validateInput("category.create", input); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, strings.TrimSpace(input.Name), strings.ToLower(input.Color))
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// EnsureDefaults seeds the given categories, skipping names that exist.
func (s *CategoryService) EnsureDefaults(ctx context.Context, defaults []model.Category) error {
	added, err := s.repo.EnsureDefaults(ctx, defaults)
	if err != nil {
		return err
	}
	if added > 0 {
		s.logger.Info("Seeded categories", zap.Int("added", added))
	}
	return nil
}
