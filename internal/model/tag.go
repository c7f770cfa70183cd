package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is a per-user label. NameKey holds the normalized name and backs the
// case-insensitive (user_id, name) unique index.
type Tag struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_tags_user_name_key"`
	Name      string    `gorm:"size:50;not null"`
	NameKey   string    `gorm:"size:50;not null;uniqueIndex:idx_tags_user_name_key"`
	CreatedAt time.Time
}

func (t *Tag) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Tag) BeforeSave(*gorm.DB) error {
	t.NameKey = TagKey(t.Name)
	return nil
}

// TaskTag links a task to one of its owner's tags. The link goes away with
// either parent.
type TaskTag struct {
	TaskID    uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	TagID     uuid.UUID `gorm:"type:varchar(36);primaryKey;index"`
	CreatedAt time.Time

	Task *Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Tag  *Tag  `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
}

// TagKey normalizes a tag name for comparison.
func TagKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
