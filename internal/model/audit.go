package model

const (
	// Action types
	AuditActionCreate   = "create"
	AuditActionUpdate   = "update"
	AuditActionDelete   = "delete"
	AuditActionCancel   = "cancel"
	AuditActionComplete = "complete"
	AuditActionLogin    = "login"
	AuditActionLogout   = "logout"
	AuditActionRegister = "register"

	// Entity types
	AuditEntityUser         = "user"
	AuditEntityPatient      = "patient"
	AuditEntityStaff        = "medical_staff"
	AuditEntitySpecialty    = "specialty"
	AuditEntityAppointment  = "appointment"
	AuditEntityWorkShift    = "work_shift"
	AuditEntityWorkSchedule = "work_schedule"
	AuditEntityConsultation = "medical_consultation"
	AuditEntityHistory      = "medical_history"
	AuditEntityExam         = "medical_exam"
)
