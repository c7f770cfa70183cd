package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the internal record for an identity issued by the external provider.
type User struct {
	ID         uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	ExternalID string    `gorm:"size:255;not null;uniqueIndex"`
	Username   string    `gorm:"size:100;not null"`
	Email      string    `gorm:"size:255;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
