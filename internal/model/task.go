package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ParsePriority accepts any casing of Low, Medium or High. An empty value
// means Medium.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("priority must be one of Low, Medium, High")
}

// Task is a single TODO item owned by one user.
type Task struct {
	ID          uuid.UUID  `gorm:"type:varchar(36);primaryKey"`
	UserID      uuid.UUID  `gorm:"type:varchar(36);not null;index"`
	CategoryID  *uuid.UUID `gorm:"type:varchar(36);index"`
	Title       string     `gorm:"size:255;not null"`
	Description *string    `gorm:"size:1000"`
	DueDate     *time.Time
	IsCompleted bool      `gorm:"not null;default:false"`
	Priority    Priority  `gorm:"size:10;not null"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TaskDetails is a task with its category and tags resolved.
type TaskDetails struct {
	Task
	Category *Category
	Tags     []Tag
}
