package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleMember UserRole = "MEMBER"
	RoleAdmin  UserRole = "ADMIN"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string         `gorm:"size:100" json:"-"`
	Role         UserRole       `gorm:"size:20;default:'MEMBER'" json:"role"`
	Token          string       `gorm:"index;size:64" json:"-"` // SHA-256 hash of the API token
	TokenCreatedAt *time.Time   `json:"-"`
	Bio          string         `gorm:"size:500" json:"bio,omitempty"`
	AvatarURL    string         `gorm:"size:2048" json:"avatar_url,omitempty"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	FailedLoginCount int        `json:"-"`
	LockedUntil  *time.Time     `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
