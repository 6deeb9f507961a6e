package model

type VitalSigns struct {
	BloodPressure    string `json:"bloodPressure"`
	HeartRate        string `json:"heartRate"`
	Temperature      string `json:"temperature"`
	RespiratoryRate  string `json:"respiratoryRate"`
	Weight           string `json:"weight"`
	Height           string `json:"height"`
	OxygenSaturation string `json:"oxygenSaturation,omitempty"`
}

type MedicalConsultation struct {
	Base
	PatientID           string     `json:"patientId"`
	MedicalStaffID      string     `json:"medicalStaffId"`
	AppointmentID       string     `json:"appointmentId,omitempty"`
	Date                string     `json:"date"`
	Time                string     `json:"time"`
	ChiefComplaint      string     `json:"chiefComplaint"`
	CurrentIllness      string     `json:"currentIllness"`
	VitalSigns          VitalSigns `json:"vitalSigns"`
	PhysicalExamination string     `json:"physicalExamination"`
}

type ConsultationRequest struct {
	PatientID           string     `json:"patientId" validate:"required"`
	MedicalStaffID      string     `json:"medicalStaffId"`
	AppointmentID       string     `json:"appointmentId"`
	ChiefComplaint      string     `json:"chiefComplaint" validate:"required"`
	CurrentIllness      string     `json:"currentIllness" validate:"required"`
	VitalSigns          VitalSigns `json:"vitalSigns"`
	PhysicalExamination string     `json:"physicalExamination"`
}

// MedicalHistory is kept once per patient.
type MedicalHistory struct {
	Base
	PatientID          string `json:"patientId"`
	PersonalHistory    string `json:"personalHistory"`
	FamilyHistory      string `json:"familyHistory"`
	Allergies          string `json:"allergies"`
	CurrentMedications string `json:"currentMedications"`
	SurgicalHistory    string `json:"surgicalHistory"`
	SocialHistory      string `json:"socialHistory"`
}

type MedicalHistoryRequest struct {
	PersonalHistory    string `json:"personalHistory"`
	FamilyHistory      string `json:"familyHistory"`
	Allergies          string `json:"allergies"`
	CurrentMedications string `json:"currentMedications"`
	SurgicalHistory    string `json:"surgicalHistory"`
	SocialHistory      string `json:"socialHistory"`
}

func (r MedicalHistoryRequest) Apply(h *MedicalHistory) {
	h.PersonalHistory = r.PersonalHistory
	h.FamilyHistory = r.FamilyHistory
	h.Allergies = r.Allergies
	h.CurrentMedications = r.CurrentMedications
	h.SurgicalHistory = r.SurgicalHistory
	h.SocialHistory = r.SocialHistory
}

type MedicalExam struct {
	Base
	ConsultationID string `json:"consultationId"`
	ExamType       string `json:"examType"`
	ExamName       string `json:"examName"`
	Results        string `json:"results"`
	Interpretation string `json:"interpretation"`
	Date           string `json:"date"`
}

type MedicalExamRequest struct {
	ConsultationID string `json:"consultationId" validate:"required"`
	ExamType       string `json:"examType" validate:"required"`
	ExamName       string `json:"examName" validate:"required"`
	Results        string `json:"results"`
	Interpretation string `json:"interpretation"`
	Date           string `json:"date" validate:"required,date"`
}
