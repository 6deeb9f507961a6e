package model

type Patient struct {
	Base
	IdentificationNumber string `json:"identificationNumber"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	DateOfBirth          string `json:"dateOfBirth"`
	Address              string `json:"address"`
}

type PatientRequest struct {
	IdentificationNumber string `json:"identificationNumber" validate:"required"`
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"omitempty,loose_email"`
	Phone                string `json:"phone"`
	DateOfBirth          string `json:"dateOfBirth" validate:"omitempty,date"`
	Address              string `json:"address"`
}

func (r PatientRequest) Apply(p *Patient) {
	p.IdentificationNumber = r.IdentificationNumber
	p.Name = r.Name
	p.Email = r.Email
	p.Phone = r.Phone
	p.DateOfBirth = r.DateOfBirth
	p.Address = r.Address
}
