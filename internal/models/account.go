package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is the identity provider's credential record. Profile data lives
// in UserProfile; the account only knows how to authenticate someone.
type Account struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Phone         string         `gorm:"size:32;index" json:"phone"`
	PasswordHash  string         `json:"-"`
	DisplayName   string         `gorm:"size:255" json:"display_name"`
	PhotoURL      string         `gorm:"size:1024" json:"photo_url"`
	GoogleSubject *string        `gorm:"size:255;uniqueIndex" json:"-"`
	AuthProvider  string         `gorm:"size:50;default:'password'" json:"auth_provider"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Account) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
