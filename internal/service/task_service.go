package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"todo-app/internal/model"
	"todo-app/internal/repository"
)

// TaskInput carries the writable fields of a task for create and update.
type TaskInput struct {
	Title       string     `json:"title" validate:"required,notblank,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	DueDate     *time.Time `json:"dueDate"`
	CategoryID  *uuid.UUID `json:"categoryId"`
	Priority    string     `json:"priority"`
	Tags        []string   `json:"tags" validate:"dive,tagname"`
}

// validate checks the input and returns the parsed priority.
func (in TaskInput) validate(op string) (model.Priority, error) {
	priority, perr := model.ParsePriority(in.Priority)
	if perr != nil {
		perr = &fieldErr{field: "priority", err: perr}
	}
	if err := validateInput(op, in, perr); err != nil {
		return "", err
	}
	return priority, nil
}

func (in TaskInput) task(userID uuid.UUID, priority model.Priority) model.Task {
	var desc *string
	if in.Description != nil {
		d := *in.Description
		desc = &d
	}
	var due *time.Time
	if in.DueDate != nil {
		d := in.DueDate.UTC()
		due = &d
	}
	return model.Task{
		UserID:      userID,
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Description: desc,
		DueDate:     due,
		Priority:    priority,
	}
}

type fieldErr struct {
	field string
	err   error
}

func (e *fieldErr) Error() string { return e.field + ": " + strings.TrimPrefix(e.err.Error(), e.field+" ") }

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo *repository.TaskRepository
	tagRepo  *repository.TagRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, tagRepo *repository.TagRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, tagRepo: tagRepo}
}

func (s *TaskService) List(ctx context.Context, userID uuid.UUID, filter repository.TaskFilter) ([]model.TaskDetails, error) {
	return s.taskRepo.List(ctx, userID, filter)
}

func (s *TaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*model.TaskDetails, error) {
	return s.taskRepo.FindByID(ctx, userID, taskID)
}

// Create validates the input, reconciles its tags and stores the task.
// The category id is stored as given; it is not checked for existence.
func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, input TaskInput) (*model.TaskDetails, error) {
	priority, err := input.validate("task.create")
	if err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.GetOrCreateMany(ctx, userID, input.Tags)
	if err != nil {
		return nil, err
	}

	task := input.task(userID, priority)
	return s.taskRepo.Create(ctx, &task, tags)
}

// Update replaces every editable field and the tag set of an owned task.
func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, input TaskInput) (*model.TaskDetails, error) {
	priority, err := input.validate("task.update")
	if err != nil {
		return nil, err
	}

	if _, err := s.taskRepo.FindByID(ctx, userID, taskID); err != nil {
		return nil, err
	}

	tags, err := s.tagRepo.GetOrCreateMany(ctx, userID, input.Tags)
	if err != nil {
		return nil, err
	}

	task := input.task(userID, priority)
	task.ID = taskID
	return s.taskRepo.Update(ctx, &task, tags)
}

// SetStatus toggles the completion flag without touching anything else.
func (s *TaskService) SetStatus(ctx context.Context, userID, taskID uuid.UUID, completed bool) (*model.TaskDetails, error) {
	return s.taskRepo.SetCompleted(ctx, userID, taskID, completed)
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	return s.taskRepo.Delete(ctx, userID, taskID)
}
