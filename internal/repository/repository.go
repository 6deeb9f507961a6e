package repository

import (
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/store"
)

// Repositories groups every collection under one key prefix.
type Repositories struct {
	Users         *Collection[model.User]
	Sessions      *Collection[model.Session]
	Patients      *Collection[model.Patient]
	MedicalStaff  *Collection[model.MedicalStaff]
	Specialties   *Collection[model.Specialty]
	WorkShifts    *Collection[model.WorkShift]
	WorkSchedules *Collection[model.WorkSchedule]
	Appointments  *Collection[model.Appointment]
	Consultations *Collection[model.MedicalConsultation]
	Histories     *Collection[model.MedicalHistory]
	Exams         *Collection[model.MedicalExam]
}

func New(s store.Store, prefix string) *Repositories {
	key := func(name string) string { return prefix + name }

	return &Repositories{
		Users:         NewCollection[model.User](s, key(store.KeyUsers)),
		Sessions:      NewCollection[model.Session](s, key(store.KeySessions)),
		Patients:      NewCollection[model.Patient](s, key(store.KeyPatients)),
		MedicalStaff:  NewCollection[model.MedicalStaff](s, key(store.KeyMedicalStaff)),
		Specialties:   NewCollection[model.Specialty](s, key(store.KeySpecialties)),
		WorkShifts:    NewCollection[model.WorkShift](s, key(store.KeyWorkShifts)),
		WorkSchedules: NewCollection[model.WorkSchedule](s, key(store.KeyWorkSchedules)),
		Appointments:  NewCollection[model.Appointment](s, key(store.KeyAppointments)),
		Consultations: NewCollection[model.MedicalConsultation](s, key(store.KeyConsultations)),
		Histories:     NewCollection[model.MedicalHistory](s, key(store.KeyHistories)),
		Exams:         NewCollection[model.MedicalExam](s, key(store.KeyExams)),
	}
}
