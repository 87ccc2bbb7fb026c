package renewal

import "github.com/claimdesk/claims-crm/internal/models"

type createRenewalRequest struct {
	PolicyID       uint     `json:"policyId" validate:"required"`
	RenewalDate    *string  `json:"renewalDate"`
	RenewalPremium *float64 `json:"renewalPremium" validate:"omitempty,gte=0"`
	AssignedTo     *uint    `json:"assignedTo"`
	RenewalNotes   string   `json:"renewalNotes"`
}

type assignRequest struct {
	UserID *uint `json:"userId"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending overdue converted lost"`
}

type activityRequest struct {
	ActivityType     string  `json:"activityType" validate:"required,oneof=call email meeting whatsapp note follow_up"`
	Subject          string  `json:"subject" validate:"max=255"`
	Description      string  `json:"description"`
	NextFollowUpDate *string `json:"nextFollowUpDate"`
	ActivityDate     *string `json:"activityDate"`
}

// Detail is a renewal together with its status trail and activities.
type Detail struct {
	Renewal    models.PolicyRenewal          `json:"renewal"`
	History    []models.RenewalStatusHistory `json:"history"`
	Activities []models.RenewalActivity      `json:"activities"`
}
