package models

import "time"

type PolicyHolder struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Email     string    `gorm:"size:150" json:"email"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Address   string    `gorm:"size:255" json:"address"`
	IDNumber  string    `gorm:"size:50" json:"idNumber"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Vehicle struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Registration   string    `gorm:"size:30;not null;index" json:"registration"`
	Make           string    `gorm:"size:80" json:"make"`
	Model          string    `gorm:"size:80" json:"model"`
	Year           int       `json:"year"`
	PolicyHolderID *uint     `gorm:"index" json:"policyHolderId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Policy status is free text; "active" is the default.
type Policy struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PolicyNumber   string    `gorm:"size:50;not null;uniqueIndex" json:"policyNumber"`
	PolicyHolderID uint      `gorm:"not null;index" json:"policyHolderId"`
	VehicleID      *uint     `gorm:"index" json:"vehicleId"`
	PolicyType     string    `gorm:"size:50" json:"policyType"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `gorm:"index" json:"endDate"`
	Premium        float64   `gorm:"not null;default:0" json:"premium"`
	CoverageAmount float64   `gorm:"not null;default:0" json:"coverageAmount"`
	Status         string    `gorm:"size:30;not null;default:'active';index" json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	PolicyHolder *PolicyHolder `gorm:"foreignKey:PolicyHolderID" json:"policyHolder,omitempty"`
	Vehicle      *Vehicle      `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
}

type Surveyor struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:150;not null" json:"name"`
	Email           string    `gorm:"size:150" json:"email"`
	Phone           string    `gorm:"size:30" json:"phone"`
	Specialization  string    `gorm:"size:100" json:"specialization"`
	LicenseNumber   string    `gorm:"size:50" json:"licenseNumber"`
	YearsExperience int       `gorm:"not null;default:0" json:"yearsExperience"`
	Address         string    `gorm:"size:255" json:"address"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
