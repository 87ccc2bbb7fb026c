package models

import "time"

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleAgent    = "agent"
	RoleSurveyor = "surveyor"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"size:150;not null" json:"fullName"`
	Email        string    `gorm:"size:150;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:30;not null;default:'agent'" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:30;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Permissions []string  `gorm:"type:text;serializer:json" json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Settings is a singleton row (ID 1).
type Settings struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CompanyName       string    `gorm:"size:150" json:"companyName"`
	Currency          string    `gorm:"size:10;not null;default:'INR'" json:"currency"`
	RenewalWindowDays int       `gorm:"not null;default:30" json:"renewalWindowDays"`
	SupportEmail      string    `gorm:"size:150" json:"supportEmail"`
	ClaimAutoAssign   bool      `gorm:"not null;default:false" json:"claimAutoAssign"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (Settings) TableName() string { return "settings" }
