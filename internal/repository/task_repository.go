package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todo-app/internal/errs"
	"todo-app/internal/model"
)

// TaskFilter narrows a task listing. Zero values disable a filter.
type TaskFilter struct {
	Category    string
	Tag         string
	IsCompleted *bool
}

// TaskRepository handles CRUD for tasks. Every method is scoped to the owning user.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns the user's tasks matching every set filter, newest first.
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]model.TaskDetails, error) {
	db := r.db.WithContext(ctx)
	query := db.Model(&model.Task{}).Where("tasks.user_id = ?", userID)

	if filter.Category != "" {
		query = query.Joins("JOIN categories ON categories.id = tasks.category_id").
			Where("LOWER(categories.name) = ?", strings.ToLower(filter.Category))
	}
	if filter.Tag != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM task_tags JOIN tags ON tags.id = task_tags.tag_id WHERE task_tags.task_id = tasks.id AND tags.name_key = ?)",
			model.TagKey(filter.Tag),
		)
	}
	if filter.IsCompleted != nil {
		query = query.Where("tasks.is_completed = ?", *filter.IsCompleted)
	}

	var tasks []model.Task
	if err := query.Select("tasks.*").Order("tasks.created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return r.withRelations(db, tasks)
}

// FindByID returns the task only when it belongs to userID. A task owned by
// someone else is reported exactly like a missing one.
func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uuid.UUID) (*model.TaskDetails, error) {
	return r.findByID(r.db.WithContext(ctx), userID, taskID)
}

// Create stores the task together with its tag links in one transaction.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task, tags []model.Tag) (*model.TaskDetails, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task.IsCompleted = false
		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return linkTags(tx, task.ID, task.UserID, tags)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, task.UserID, task.ID)
}

// Update replaces the editable fields and the whole tag set of an existing
// task. The completion flag is left as is.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task, tags []model.Tag) (*model.TaskDetails, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Task{}).
			Where("id = ? AND user_id = ?", task.ID, task.UserID).
			Updates(map[string]interface{}{
				"title":       task.Title,
				"description": task.Description,
				"due_date":    task.DueDate,
				"category_id": task.CategoryID,
				"priority":    task.Priority,
			})
		if res.Error != nil {
			return fmt.Errorf("update task: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("task.update", "task not found")
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.TaskTag{}).Error; err != nil {
			return fmt.Errorf("clear task tags: %w", err)
		}
		return linkTags(tx, task.ID, task.UserID, tags)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, task.UserID, task.ID)
}

// SetCompleted flips only the completion flag (and updated_at).
func (r *TaskRepository) SetCompleted(ctx context.Context, userID, taskID uuid.UUID, completed bool) (*model.TaskDetails, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Update("is_completed", completed)
	if res.Error != nil {
		return nil, fmt.Errorf("update task status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errs.NotFound("task.status", "task not found")
	}
	return r.FindByID(ctx, userID, taskID)
}

// Delete removes a task for the given user. Its tag links go with it through
// the task_tags foreign key.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", taskID, userID).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("task.delete", "task not found")
	}
	return nil
}

// ListOpen returns unfinished tasks, earliest due date first, undated last.
func (r *TaskRepository) ListOpen(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND is_completed = ?", userID, false).
		Order("due_date IS NULL, due_date ASC, created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) findByID(db *gorm.DB, userID, taskID uuid.UUID) (*model.TaskDetails, error) {
	var task model.Task
	err := db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, errs.NotFound("task.get", "task not found")
	default:
		return nil, fmt.Errorf("find task: %w", err)
	}

	details, err := r.withRelations(db, []model.Task{task})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// withRelations resolves categories and tags for tasks with one query each.
func (r *TaskRepository) withRelations(db *gorm.DB, tasks []model.Task) ([]model.TaskDetails, error) {
	details := make([]model.TaskDetails, len(tasks))
	if len(tasks) == 0 {
		return details, nil
	}

	taskIDs := make([]uuid.UUID, 0, len(tasks))
	var categoryIDs []uuid.UUID
	seenCategory := make(map[uuid.UUID]struct{})
	for _, task := range tasks {
		taskIDs = append(taskIDs, task.ID)
		if task.CategoryID == nil {
			continue
		}
		if _, ok := seenCategory[*task.CategoryID]; !ok {
			seenCategory[*task.CategoryID] = struct{}{}
			categoryIDs = append(categoryIDs, *task.CategoryID)
		}
	}

	categories := make(map[uuid.UUID]model.Category)
	if len(categoryIDs) > 0 {
		var rows []model.Category
		if err := db.Where("id IN ?", categoryIDs).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load categories: %w", err)
		}
		for _, c := range rows {
			categories[c.ID] = c
		}
	}

	var links []model.TaskTag
	if err := db.Where("task_id IN ?", taskIDs).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("load task tags: %w", err)
	}
	tagsByTask := make(map[uuid.UUID][]model.Tag)
	if len(links) > 0 {
		tagIDs := make([]uuid.UUID, 0, len(links))
		for _, l := range links {
			tagIDs = append(tagIDs, l.TagID)
		}
		var tags []model.Tag
		if err := db.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
			return nil, fmt.Errorf("load tags: %w", err)
		}
		byID := make(map[uuid.UUID]model.Tag, len(tags))
		for _, t := range tags {
			byID[t.ID] = t
		}
		for _, l := range links {
			if t, ok := byID[l.TagID]; ok {
				tagsByTask[l.TaskID] = append(tagsByTask[l.TaskID], t)
			}
		}
	}

	for i, task := range tasks {
		details[i].Task = task
		if task.CategoryID != nil {
			if c, ok := categories[*task.CategoryID]; ok {
				details[i].Category = &c
			}
		}
		tags := tagsByTask[task.ID]
		sort.SliceStable(tags, func(a, b int) bool { return tags[a].NameKey < tags[b].NameKey })
		details[i].Tags = tags
	}
	return details, nil
}

// linkTags inserts the join rows. Tags of another user are rejected.
func linkTags(tx *gorm.DB, taskID, userID uuid.UUID, tags []model.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	now := tx.NowFunc()
	links := make([]model.TaskTag, 0, len(tags))
	seen := make(map[uuid.UUID]struct{}, len(tags))
	for _, tag := range tags {
		if tag.UserID != userID {
			return fmt.Errorf("link tag %s: owned by another user", tag.ID)
		}
		if _, ok := seen[tag.ID]; ok {
			continue
		}
		seen[tag.ID] = struct{}{}
		links = append(links, model.TaskTag{TaskID: taskID, TagID: tag.ID, CreatedAt: now})
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("link task tags: %w", err)
	}
	return nil
}

