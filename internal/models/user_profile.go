package models

import "time"

const (
	RoleUser          = "user"
	RoleSunriseMember = "sunrise_member"
)

// UserProfile is the per-user document in the "users" collection, keyed by
// the identity provider's subject id.
type UserProfile struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Email       string    `gorm:"size:255" json:"email"`
	DisplayName string    `gorm:"size:255" json:"displayName"`
	Phone       string    `gorm:"size:32" json:"phone"`
	Role        string    `gorm:"size:32;not null;default:'user'" json:"role"`
	ClubID      *string   `gorm:"size:64" json:"clubId"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLogin   time.Time `gorm:"index" json:"lastLogin"`
	Pinned      bool      `gorm:"default:false" json:"pinned"`
	Preferences string    `gorm:"type:text" json:"preferences"`
}

func (UserProfile) TableName() string { return "users" }
