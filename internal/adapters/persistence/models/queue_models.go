package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Queue System Tables
// ============================================================

type Branch struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Address   *string        `gorm:"size:255" json:"address"`
	Phone     *string        `gorm:"size:20" json:"phone"`
	OpenTime  *string        `gorm:"size:10;default:'08:30'" json:"open_time"`
	CloseTime *string        `gorm:"size:10;default:'16:30'" json:"close_time"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Services  []Service      `gorm:"many2many:branch_services" json:"services,omitempty"`
}

func (Branch) TableName() string {
	return "branches"
}

type Service struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Code         string       `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name         string       `gorm:"size:100;not null" json:"name"`
	Description  string       `gorm:"type:text" json:"description"`
	DisplayOrder int          `gorm:"default:0" json:"display_order"`
	IsActive     bool         `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
	SubServices  []SubService `gorm:"foreignKey:ServiceID" json:"sub_services,omitempty"`
}

func (Service) TableName() string {
	return "services"
}

type SubService struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ServiceID    uint      `gorm:"not null;index" json:"service_id"`
	Code         string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Service      Service   `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

func (SubService) TableName() string {
	return "sub_services"
}

// Desk status values
const (
	DeskStatusActive   = "ACTIVE"
	DeskStatusInactive = "INACTIVE"
)

// Desk is a physical service point within a branch. Its capability set is
// the union of assigned Services (covering all of their sub-services) and
// directly assigned SubServices. Employees hold a back-reference to the desk
// (users.assigned_desk_id); the desk does not own them.
type Desk struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	BranchID    uint         `gorm:"not null;index" json:"branch_id"`
	DeskNumber  int          `gorm:"not null" json:"desk_number"`
	Name        string       `gorm:"size:50" json:"name"`
	Status      string       `gorm:"size:10;default:'ACTIVE'" json:"status"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
	Branch      Branch       `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Services    []Service    `gorm:"many2many:desk_services" json:"services,omitempty"`
	SubServices []SubService `gorm:"many2many:desk_sub_services" json:"sub_services,omitempty"`
}

func (Desk) TableName() string {
	return "desks"
}

// SequenceSeries is the numbering range for one (branch, service) pair.
// At most one active series per pair; current_number is monotonically
// non-decreasing while active and bounded by end_at.
type SequenceSeries struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	BranchID      uint      `gorm:"not null;index:idx_series_branch_service" json:"branch_id"`
	ServiceID     uint      `gorm:"not null;index:idx_series_branch_service" json:"service_id"`
	Prefix        string    `gorm:"size:5;not null" json:"prefix"`
	StartFrom     int       `gorm:"not null;default:1" json:"start_from"`
	EndAt         int       `gorm:"not null;default:999" json:"end_at"`
	CurrentNumber int       `gorm:"not null;default:0" json:"current_number"`
	Active        bool      `gorm:"default:false;index" json:"active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Branch        Branch    `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Service       Service   `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

func (SequenceSeries) TableName() string {
	return "sequence_series"
}

// Token is one customer's queue ticket. Desk and employee are bound eagerly
// at creation; serve-next re-binds assigned_to_id to the claiming employee.
type Token struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	DisplayNumber  string      `gorm:"size:20;not null;index" json:"display_number"`
	SequenceNumber int         `gorm:"not null" json:"sequence_number"`
	Status         string      `gorm:"size:15;default:'PENDING';index" json:"status"`
	BranchID       uint        `gorm:"not null;index" json:"branch_id"`
	ServiceID      uint        `gorm:"not null;index" json:"service_id"`
	SubServiceID   uint        `gorm:"not null;index" json:"sub_service_id"`
	DeskID         *uint       `gorm:"index" json:"desk_id"`
	AssignedToID   *uint       `gorm:"index" json:"assigned_to_id"`
	StartedAt      *time.Time  `json:"started_at"`
	CompletedAt    *time.Time  `json:"completed_at"`
	CreatedAt      time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	Branch         Branch      `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Service        Service     `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	SubService     SubService  `gorm:"foreignKey:SubServiceID" json:"sub_service,omitempty"`
	Desk           *Desk       `gorm:"foreignKey:DeskID" json:"desk,omitempty"`
	AssignedTo     *User       `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
}

func (Token) TableName() string {
	return "tokens"
}

// Shift log events
const (
	ShiftEventCheckIn    = "CHECK_IN"
	ShiftEventCheckOut   = "CHECK_OUT"
	ShiftEventBreakStart = "BREAK_START"
	ShiftEventBreakEnd   = "BREAK_END"
)

// ShiftLog records employee shift events. The desk operator channel derives
// per-employee working/break status from these entries.
type ShiftLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	DeskID    *uint     `gorm:"index" json:"desk_id"`
	Event     string    `gorm:"size:15;not null" json:"event"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ShiftLog) TableName() string {
	return "shift_logs"
}
