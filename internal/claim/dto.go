package claim

import "github.com/claimdesk/claims-crm/internal/models"

type createClaimRequest struct {
	PolicyID            uint    `json:"policyId" validate:"required"`
	IncidentDate        string  `json:"incidentDate" validate:"required"`
	ReportDate          string  `json:"reportDate" validate:"required"`
	IncidentLocation    string  `json:"incidentLocation" validate:"max=255"`
	IncidentDescription string  `json:"incidentDescription" validate:"required"`
	DamageDescription   string  `json:"damageDescription"`
	EstimatedAmount     float64 `json:"estimatedAmount" validate:"gte=0"`
}

type updateStatusRequest struct {
	Status         string   `json:"status" validate:"required,oneof=pending approved rejected surveyed"`
	ApprovedAmount *float64 `json:"approvedAmount" validate:"omitempty,gte=0"`
}

type assignSurveyorRequest struct {
	SurveyorID uint `json:"surveyorId" validate:"required"`
}

type surveyRequest struct {
	SurveyorID uint     `json:"surveyorId" validate:"required"`
	SurveyDate string   `json:"surveyDate" validate:"required"`
	Location   string   `json:"location" validate:"max=255"`
	Report     string   `json:"report"`
	Amount     *float64 `json:"amount" validate:"omitempty,gte=0"`
	Status     string   `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
}

type documentRequest struct {
	DocumentType string `json:"documentType" validate:"required,max=50"`
	FileName     string `json:"fileName" validate:"required,max=200"`
	FileSize     int64  `json:"fileSize" validate:"gte=0"`
	MimeType     string `json:"mimeType" validate:"max=100"`
}

type noteRequest struct {
	NoteText string `json:"noteText" validate:"required"`
}

// Detail is the claim aggregate returned by GET /api/claims/{id}. Every
// collection is rendered as an array, empty when there are no rows.
type Detail struct {
	Claim     models.Claim         `json:"claim"`
	Documents []models.Document    `json:"documents"`
	Notes     []models.ClaimNote   `json:"notes"`
	Survey    []models.ClaimSurvey `json:"survey"`
	Payments  []models.Payment     `json:"payments"`
}
