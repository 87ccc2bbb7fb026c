package lead

type leadRequest struct {
	SourceID        *uint  `json:"sourceId"`
	FirstName       string `json:"firstName" validate:"required,max=100"`
	LastName        string `json:"lastName" validate:"max=100"`
	Email           string `json:"email" validate:"omitempty,email,max=150"`
	Phone           string `json:"phone" validate:"max=30"`
	Status          string `json:"status" validate:"omitempty,oneof=new contacted qualified proposal converted lost"`
	Priority        string `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo      *uint  `json:"assignedTo"`
	ProductCategory string `json:"productCategory"`
	ProductSubtype  string `json:"productSubtype"`
	Notes           string `json:"notes"`
}

type sourceRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
	IsActive    *bool  `json:"isActive"`
}
