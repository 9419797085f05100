package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RolePolice  Role = "POLICE"
	RoleAdmin   Role = "ADMIN"
)

// IsStaff reports whether the role may triage reports filed by others.
func (r Role) IsStaff() bool {
	return r == RolePolice || r == RoleAdmin
}

func (r Role) Valid() bool {
	return r == RoleCitizen || r == RolePolice || r == RoleAdmin
}

type User struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email      string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password   string         `gorm:"not null" json:"-"`
	Name       string         `gorm:"not null;size:100" json:"name"`
	Surname    string         `gorm:"not null;size:100" json:"surname"`
	NationalID string         `gorm:"not null;size:20;uniqueIndex" json:"national_id"`
	Phone      *string        `gorm:"size:30" json:"phone,omitempty"`
	Role       Role           `gorm:"size:20;not null;default:'CITIZEN'" json:"role"`
	IsActive   bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleCitizen
	}
	return nil
}
