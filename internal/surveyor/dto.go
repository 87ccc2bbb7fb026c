package surveyor

type surveyorRequest struct {
	Name            string `json:"name" validate:"required,max=150"`
	Email           string `json:"email" validate:"omitempty,email,max=150"`
	Phone           string `json:"phone" validate:"max=30"`
	Specialization  string `json:"specialization" validate:"max=100"`
	LicenseNumber   string `json:"licenseNumber" validate:"max=50"`
	YearsExperience int    `json:"yearsExperience" validate:"gte=0"`
	Address         string `json:"address" validate:"max=255"`
}
