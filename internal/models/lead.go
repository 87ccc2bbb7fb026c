package models

import "time"

type LeadSource struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Lead struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	LeadNumber      string    `gorm:"size:20;not null;uniqueIndex" json:"leadNumber"`
	SourceID        *uint     `gorm:"index" json:"sourceId"`
	FirstName       string    `gorm:"size:100;not null" json:"firstName"`
	LastName        string    `gorm:"size:100" json:"lastName"`
	Email           string    `gorm:"size:150" json:"email"`
	Phone           string    `gorm:"size:30" json:"phone"`
	Status          string    `gorm:"size:30;not null;default:'new';index" json:"status"`
	Priority        string    `gorm:"size:20;not null;default:'medium'" json:"priority"`
	AssignedTo      *uint     `gorm:"index" json:"assignedTo"`
	ProductCategory string    `gorm:"size:50" json:"productCategory"`
	ProductSubtype  string    `gorm:"size:50" json:"productSubtype"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	Source *LeadSource `gorm:"foreignKey:SourceID" json:"source,omitempty"`
}
