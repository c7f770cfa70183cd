package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"todo-app/internal/model"
	"todo-app/internal/repository"
)

// dueSoonWindow is how far ahead an open task counts as due soon.
const dueSoonWindow = 48 * time.Hour

// Digest summarises one user's open work at a point in time.
type Digest struct {
	UserID        uuid.UUID
	Open          int
	Overdue       int
	DueSoon       int
	OverdueTitles []string
}

// ReminderService builds overdue digests for periodic reports.
type ReminderService struct {
	taskRepo *repository.TaskRepository
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewReminderService(taskRepo *repository.TaskRepository, userRepo *repository.UserRepository, logger *zap.Logger) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{taskRepo: taskRepo, userRepo: userRepo, logger: logger}
}

func (s *ReminderService) Digest(ctx context.Context, userID uuid.UUID, now time.Time) (Digest, error) {
	tasks, err := s.taskRepo.ListOpen(ctx, userID)
	if err != nil {
		return Digest{}, err
	}
	return buildDigest(userID, tasks, now), nil
}

// DigestAll logs a digest line for every user with open tasks. A failure for
// one user does not stop the others.
func (s *ReminderService) DigestAll(ctx context.Context, now time.Time) error {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var result *multierror.Error
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		d, err := s.Digest(ctx, user.ID, now)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("digest for %s: %w", user.ID, err))
			continue
		}
		if d.Open == 0 {
			continue
		}
		s.logger.Info("Task digest",
			zap.String("user_id", user.ID.String()),
			zap.String("username", user.Username),
			zap.Int("open", d.Open),
			zap.Int("overdue", d.Overdue),
			zap.Int("due_soon", d.DueSoon),
			zap.Strings("overdue_titles", d.OverdueTitles),
		)
	}
	return result.ErrorOrNil()
}

// buildDigest expects tasks ordered by due date, undated last.
func buildDigest(userID uuid.UUID, tasks []model.Task, now time.Time) Digest {
	d := Digest{UserID: userID, OverdueTitles: []string{}}
	for _, task := range tasks {
		if task.IsCompleted {
			continue
		}
		d.Open++
		if task.DueDate == nil {
			continue
		}
		switch due := task.DueDate.UTC(); {
		case now.After(due):
			d.Overdue++
			d.OverdueTitles = append(d.OverdueTitles, task.Title)
		case due.Sub(now) <= dueSoonWindow:
			d.DueSoon++
		}
	}
	return d
}
