package user

type createUserRequest struct {
	FullName string `json:"fullName" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email,max=150"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin manager agent surveyor"`
	IsActive *bool  `json:"isActive"`
}

// updateUserRequest leaves the password untouched when it is empty.
type updateUserRequest struct {
	FullName string `json:"fullName" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email,max=150"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin manager agent surveyor"`
	IsActive *bool  `json:"isActive"`
}

type settingsRequest struct {
	CompanyName       string `json:"companyName" validate:"max=150"`
	Currency          string `json:"currency" validate:"required,len=3"`
	RenewalWindowDays int    `json:"renewalWindowDays" validate:"gte=1,lte=365"`
	SupportEmail      string `json:"supportEmail" validate:"omitempty,email,max=150"`
	ClaimAutoAssign   bool   `json:"claimAutoAssign"`
}
