package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminTag marks an employee allowed to open an admin session with their PIN.
const AdminTag = "Admin"

// Employee is a clock-in principal identified by a 4-digit PIN.
type Employee struct {
	ID        string      `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string      `json:"name" gorm:"type:varchar(255);not null"`
	PIN       string      `json:"pin" gorm:"type:varchar(4);uniqueIndex;not null"`
	Tags      StringArray `json:"tags" gorm:"type:json"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Admin is a username/password account. It never goes through the employee
// deletion path.
type Admin struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is a server-side admin session keyed by the cookie token.
type Session struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Token     string    `json:"-" gorm:"type:varchar(500);uniqueIndex;not null"`
	Subject   string    `json:"subject" gorm:"type:varchar(255)"`
	Admin     bool      `json:"admin" gorm:"not null;default:false"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Actor      string    `json:"actor" gorm:"type:varchar(255);index"`
	Action     string    `json:"action" gorm:"type:varchar(50);not null"` // login, logout, create, delete, clock_out, ...
	Resource   string    `json:"resource" gorm:"type:varchar(100)"`       // employee, record, admin
	ResourceID string    `json:"resource_id" gorm:"type:varchar(255)"`
	Details    string    `json:"details" gorm:"type:text"`
	IPAddress  string    `json:"ip_address" gorm:"type:varchar(45)"`
	UserAgent  string    `json:"user_agent" gorm:"type:varchar(500)"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}
