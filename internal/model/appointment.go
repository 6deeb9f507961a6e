package model

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	Base
	PatientID      string            `json:"patientId"`
	MedicalStaffID string            `json:"medicalStaffId"`
	SpecialtyID    string            `json:"specialtyId"`
	Date           string            `json:"date"`
	Time           string            `json:"time"`
	Status         AppointmentStatus `json:"status"`
	Notes          string            `json:"notes,omitempty"`
	EmailSent      *bool             `json:"emailSent,omitempty"`
}

// SameSlot reports whether both appointments target the same practitioner,
// date and time.
func (a Appointment) SameSlot(staffID, date, clock string) bool {
	return a.MedicalStaffID == staffID && a.Date == date && a.Time == clock
}

type CreateAppointmentRequest struct {
	PatientID      string `json:"patientId"`
	MedicalStaffID string `json:"medicalStaffId" validate:"required"`
	SpecialtyID    string `json:"specialtyId" validate:"required"`
	Date           string `json:"date" validate:"required,date"`
	Time           string `json:"time" validate:"required,clock"`
	Notes          string `json:"notes" validate:"max=2000"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// AppointmentView adds the patient cancellation predicate to listings.
type AppointmentView struct {
	Appointment
	CanCancel bool `json:"canCancel"`
}

// AppointmentPeriod splits listings at today's midnight.
type AppointmentPeriod string

const (
	PeriodAll      AppointmentPeriod = ""
	PeriodUpcoming AppointmentPeriod = "upcoming"
	PeriodHistory  AppointmentPeriod = "history"
)

type AppointmentFilters struct {
	PatientID      string            `form:"patientId"`
	MedicalStaffID string            `form:"medicalStaffId"`
	SpecialtyID    string            `form:"specialtyId"`
	Status         AppointmentStatus `form:"status"`
	Date           string            `form:"date"`
	Period         AppointmentPeriod `form:"period"`
}
