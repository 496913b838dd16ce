package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & Staff Tables
// ============================================================

// Role values for User.Role
const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleEmployee = "EMPLOYEE"
)

// User represents users table. Staff members (role EMPLOYEE/MANAGER) carry
// the branch/desk assignment and availability flags directly on this table.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Username       string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email          string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password       string         `gorm:"size:255;not null" json:"-"`
	FullName       string         `gorm:"size:100" json:"full_name"`
	Role           string         `gorm:"size:20;default:'EMPLOYEE'" json:"role"`
	BranchID       *uint          `gorm:"index" json:"branch_id"`
	AssignedDeskID *uint          `gorm:"index" json:"assigned_desk_id"`
	IsAvailable    bool           `gorm:"default:false" json:"is_available"`
	IsWorking      bool           `gorm:"default:false" json:"is_working"`
	IsOnBreak      bool           `gorm:"default:false" json:"is_on_break"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Role           string    `json:"role"`
	BranchID       *uint     `json:"branch_id,omitempty"`
	AssignedDeskID *uint     `json:"assigned_desk_id,omitempty"`
	IsAvailable    bool      `json:"is_available"`
	IsWorking      bool      `json:"is_working"`
	IsOnBreak      bool      `json:"is_on_break"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FullName:       u.FullName,
		Role:           u.Role,
		BranchID:       u.BranchID,
		AssignedDeskID: u.AssignedDeskID,
		IsAvailable:    u.IsAvailable,
		IsWorking:      u.IsWorking,
		IsOnBreak:      u.IsOnBreak,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// AutoMigrate runs migrations for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Branch{},
		&Service{},
		&SubService{},
		&Desk{},
		&SequenceSeries{},
		&Token{},
		&ShiftLog{},
	)
}
