package policy

type holderRequest struct {
	Name     string `json:"name" validate:"required,max=150"`
	Email    string `json:"email" validate:"omitempty,email,max=150"`
	Phone    string `json:"phone" validate:"max=30"`
	Address  string `json:"address" validate:"max=255"`
	IDNumber string `json:"idNumber" validate:"max=50"`
}

type vehicleRequest struct {
	Registration   string `json:"registration" validate:"required,max=30"`
	Make           string `json:"make" validate:"max=80"`
	Model          string `json:"model" validate:"max=80"`
	Year           int    `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	PolicyHolderID *uint  `json:"policyHolderId"`
}

type policyRequest struct {
	PolicyNumber   string  `json:"policyNumber" validate:"required,max=50"`
	PolicyHolderID uint    `json:"policyHolderId" validate:"required"`
	VehicleID      *uint   `json:"vehicleId"`
	PolicyType     string  `json:"policyType" validate:"max=50"`
	StartDate      string  `json:"startDate" validate:"required"`
	EndDate        string  `json:"endDate" validate:"required"`
	Premium        float64 `json:"premium" validate:"gte=0"`
	CoverageAmount float64 `json:"coverageAmount" validate:"gte=0"`
	Status         string  `json:"status" validate:"max=30"`
}
