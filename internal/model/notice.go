package model

// AppointmentNotice carries what a confirmation notice needs to say.
type AppointmentNotice struct {
	AppointmentID string `json:"appointmentId"`
	PatientName   string `json:"patientName"`
	StaffName     string `json:"staffName"`
	SpecialtyName string `json:"specialtyName"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

// Event types published on the broker.
const (
	EventAppointmentBooked    = "appointment.booked"
	EventAppointmentCancelled = "appointment.cancelled"
	EventAppointmentCompleted = "appointment.completed"
	EventNoticeRequested      = "notice.requested"
)

type DashboardStats struct {
	Patients              int `json:"patients"`
	MedicalStaff          int `json:"medicalStaff"`
	Specialties           int `json:"specialties"`
	ActiveWorkShifts      int `json:"activeWorkShifts"`
	Appointments          int `json:"appointments"`
	ScheduledAppointments int `json:"scheduledAppointments"`
	AppointmentsToday     int `json:"appointmentsToday"`
}
