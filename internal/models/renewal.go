package models

import "time"

const (
	RenewalStatusPending   = "pending"
	RenewalStatusOverdue   = "overdue"
	RenewalStatusConverted = "converted"
	RenewalStatusLost      = "lost"
)

// PolicyRenewal tracks the renewal of an expiring policy, separately from the policy itself.
type PolicyRenewal struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	PolicyID         uint      `gorm:"not null;index" json:"policyId"`
	RenewalDate      time.Time `gorm:"not null;index" json:"renewalDate"`
	Status           string    `gorm:"size:30;not null;default:'pending';index" json:"status"`
	AssignedTo       *uint     `gorm:"index" json:"assignedTo"`
	RenewalPremium   *float64  `json:"renewalPremium"`
	OriginalPremium  float64   `gorm:"not null;default:0" json:"originalPremium"`
	ContactCount     int       `gorm:"not null;default:0" json:"contactCount"`
	RenewalNotes     string    `gorm:"type:text" json:"renewalNotes"`
	ConversionStatus string    `gorm:"size:30" json:"conversionStatus"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	Policy *Policy `gorm:"foreignKey:PolicyID" json:"policy,omitempty"`
}

// RenewalActivity is an append-only follow-up log entry.
type RenewalActivity struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	RenewalID        uint       `gorm:"not null;index" json:"renewalId"`
	ActivityType     string     `gorm:"size:30;not null" json:"activityType"`
	Subject          string     `gorm:"size:255" json:"subject"`
	Description      string     `gorm:"type:text" json:"description"`
	NextFollowUpDate *time.Time `json:"nextFollowUpDate"`
	ActivityDate     time.Time  `gorm:"not null" json:"activityDate"`
	CreatedBy        *uint      `json:"createdBy"`
}

type RenewalStatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RenewalID uint      `gorm:"not null;index" json:"renewalId"`
	OldStatus string    `gorm:"size:30" json:"oldStatus"`
	NewStatus string    `gorm:"size:30;not null" json:"newStatus"`
	ChangedBy *uint     `json:"changedBy"`
	ChangedAt time.Time `gorm:"not null" json:"changedAt"`
}

func (RenewalStatusHistory) TableName() string { return "renewal_status_history" }
