package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is shared reference data; it is not owned by any user.
type Category struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	Name      string    `gorm:"size:100;not null;uniqueIndex"`
	Color     string    `gorm:"size:7;not null"`
	CreatedAt time.Time
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
