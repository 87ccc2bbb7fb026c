package models

import "time"

// Claim status values. The claim lifecycle only documents these four.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
	ClaimStatusSurveyed = "surveyed"
)

// Survey status values.
const (
	SurveyStatusPending    = "pending"
	SurveyStatusInProgress = "in_progress"
	SurveyStatusCompleted  = "completed"
)

// Claim is a policyholder's request for compensation, tied to one policy and one incident.
type Claim struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	ClaimNumber         string    `gorm:"size:20;not null;uniqueIndex" json:"claimNumber"`
	PolicyID            uint      `gorm:"not null;index" json:"policyId"`
	IncidentDate        time.Time `gorm:"not null" json:"incidentDate"`
	ReportDate          time.Time `gorm:"not null" json:"reportDate"`
	IncidentLocation    string    `gorm:"size:255" json:"incidentLocation"`
	IncidentDescription string    `gorm:"type:text;not null" json:"incidentDescription"`
	DamageDescription   string    `gorm:"type:text" json:"damageDescription"`
	EstimatedAmount     float64   `gorm:"not null;default:0" json:"estimatedAmount"`
	ApprovedAmount      *float64  `json:"approvedAmount"`
	Status              string    `gorm:"size:30;not null;default:'pending';index" json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// ClaimSurveyorAssignment links a claim to the surveyor currently responsible for it.
// claim_id is unique: a claim has at most one current assignment.
type ClaimSurveyorAssignment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClaimID    uint      `gorm:"not null;uniqueIndex" json:"claimId"`
	SurveyorID uint      `gorm:"not null;index" json:"surveyorId"`
	AssignedAt time.Time `gorm:"not null" json:"assignedAt"`

	Surveyor *Surveyor `gorm:"foreignKey:SurveyorID" json:"surveyor,omitempty"`
}

func (ClaimSurveyorAssignment) TableName() string { return "claim_surveyors" }

// ClaimSurvey is the surveyor's damage assessment, one per claim.
type ClaimSurvey struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClaimID    uint      `gorm:"not null;uniqueIndex" json:"claimId"`
	SurveyorID uint      `gorm:"not null;index" json:"surveyorId"`
	SurveyDate time.Time `gorm:"not null" json:"surveyDate"`
	Location   string    `gorm:"size:255" json:"location"`
	Report     string    `gorm:"type:text" json:"report"`
	Amount     *float64  `json:"amount"`
	Status     string    `gorm:"size:30;not null;default:'pending'" json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Document holds upload metadata only. FilePath is synthetic; no bytes are stored.
type Document struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ClaimID      uint      `gorm:"not null;index" json:"claimId"`
	DocumentType string    `gorm:"size:50;not null" json:"documentType"`
	FileName     string    `gorm:"size:255;not null" json:"fileName"`
	FilePath     string    `gorm:"size:500;not null" json:"filePath"`
	FileSize     int64     `gorm:"not null;default:0" json:"fileSize"`
	MimeType     string    `gorm:"size:100" json:"mimeType"`
	UploadDate   time.Time `gorm:"not null" json:"uploadDate"`
}

// ClaimNote is append-only.
type ClaimNote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClaimID   uint      `gorm:"not null;index" json:"claimId"`
	NoteText  string    `gorm:"type:text;not null" json:"noteText"`
	CreatedBy string    `gorm:"size:150" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Payment is read-only through the API.
type Payment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ClaimID       uint      `gorm:"not null;index" json:"claimId"`
	PaymentAmount float64   `gorm:"not null;default:0" json:"paymentAmount"`
	PaymentDate   time.Time `json:"paymentDate"`
	PaymentMethod string    `gorm:"size:50" json:"paymentMethod"`
	Status        string    `gorm:"size:30;not null;default:'pending'" json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}
