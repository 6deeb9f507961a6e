package model

type MedicalStaff struct {
	Base
	IdentificationNumber string `json:"identificationNumber"`
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	SpecialtyID          string `json:"specialtyId"`
}

type MedicalStaffRequest struct {
	IdentificationNumber string `json:"identificationNumber" validate:"required"`
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"omitempty,loose_email"`
	Phone                string `json:"phone"`
	SpecialtyID          string `json:"specialtyId" validate:"required"`
}

func (r MedicalStaffRequest) Apply(m *MedicalStaff) {
	m.IdentificationNumber = r.IdentificationNumber
	m.Name = r.Name
	m.Email = r.Email
	m.Phone = r.Phone
	m.SpecialtyID = r.SpecialtyID
}

type Specialty struct {
	Base
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SpecialtyRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}
