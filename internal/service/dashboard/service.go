package dashboard

import (
	"context"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

type Service struct {
	repos *repository.Repositories
	now   func() time.Time
	loc   *time.Location
}

func NewService(repos *repository.Repositories, now func() time.Time, loc *time.Location) *Service {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{repos: repos, now: now, loc: loc}
}

// Stats counts the clinic's records. "Today" is the current date in the
// clinic's location.
func (s *Service) Stats(ctx context.Context) (*model.DashboardStats, error) {
	var stats model.DashboardStats

	patients, err := s.repos.Patients.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	staff, err := s.repos.MedicalStaff.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	specialties, err := s.repos.Specialties.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	shifts, err := s.repos.WorkShifts.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	appointments, err := s.repos.Appointments.All(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	stats.Patients = len(patients)
	stats.MedicalStaff = len(staff)
	stats.Specialties = len(specialties)
	stats.Appointments = len(appointments)
	for _, ws := range shifts {
		if ws.IsActive {
			stats.ActiveWorkShifts++
		}
	}

	today := s.now().In(s.loc).Format(validator.DateLayout)
	for _, a := range appointments {
		if a.Status == model.AppointmentStatusScheduled {
			stats.ScheduledAppointments++
		}
		if a.Date == today {
			stats.AppointmentsToday++
		}
	}
	return &stats, nil
}
