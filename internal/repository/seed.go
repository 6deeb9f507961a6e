package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// SeedCredentials are the passwords of the three built-in accounts.
type SeedCredentials struct {
	AdminPassword   string
	PatientPassword string
	StaffPassword   string
}

// Hasher turns a plaintext password into its stored form.
type Hasher interface {
	Hash(password string) (string, error)
}

// Seed writes default data for every collection key that is absent. Keys
// that already hold a value are left alone, even when empty.
func (r *Repositories) Seed(ctx context.Context, creds SeedCredentials, hasher Hasher, now time.Time, logger *zerolog.Logger) error {
	users, err := defaultUsers(creds, hasher, now)
	if err != nil {
		return err
	}

	steps := []struct {
		key  string
		seed func() error
	}{
		{r.Users.Key(), seedIfAbsent(ctx, r.Users, users)},
		{r.Specialties.Key(), seedIfAbsent(ctx, r.Specialties, defaultSpecialties(now))},
		{r.Patients.Key(), seedIfAbsent(ctx, r.Patients, defaultPatients(now))},
		{r.MedicalStaff.Key(), seedIfAbsent(ctx, r.MedicalStaff, defaultStaff(now))},
		{r.WorkShifts.Key(), seedIfAbsent(ctx, r.WorkShifts, defaultShifts(now))},
		{r.WorkSchedules.Key(), seedIfAbsent(ctx, r.WorkSchedules, []model.WorkSchedule{})},
		{r.Appointments.Key(), seedIfAbsent(ctx, r.Appointments, []model.Appointment{})},
	}

	for _, step := range steps {
		if err := step.seed(); err != nil {
			return fmt.Errorf("failed to seed %s: %w", step.key, err)
		}
		if logger != nil {
			logger.Debug().Str("key", step.key).Msg("seed checked")
		}
	}
	return nil
}

func seedIfAbsent[T Identifiable](ctx context.Context, c *Collection[T], items []T) func() error {
	return func() error {
		ok, err := c.Exists(ctx)
		if err != nil || ok {
			return err
		}
		return c.Replace(ctx, items)
	}
}

func defaultUsers(creds SeedCredentials, hasher Hasher, now time.Time) ([]model.User, error) {
	accounts := []struct {
		user     model.User
		password string
	}{
		{model.User{ID: "1", Username: "admin", Role: model.RoleAdmin, Name: "Dr. María González", Email: "admin@hospital.com"}, creds.AdminPassword},
		{model.User{ID: "2", Username: "cliente", Role: model.RolePatient, Name: "Juan Carlos Pérez", Email: "cliente@email.com"}, creds.PatientPassword},
		{model.User{ID: "3", Username: "medico", Role: model.RoleMedicalStaff, Name: "Dr. Ana Rodríguez", Email: "medico@hospital.com", MedicalStaffID: "1"}, creds.StaffPassword},
	}

	users := make([]model.User, 0, len(accounts))
	for _, a := range accounts {
		hash, err := hasher.Hash(a.password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", a.user.Username, err)
		}
		u := a.user
		u.PasswordHash = hash
		u.CreatedAt = now
		users = append(users, u)
	}
	return users, nil
}

func base(id string, now time.Time) model.Base {
	return model.Base{ID: id, CreatedAt: now, UpdatedAt: now}
}

func defaultSpecialties(now time.Time) []model.Specialty {
	return []model.Specialty{
		{Base: base("1", now), Name: "Cardiología", Description: "Especialidad médica que se encarga del estudio, diagnóstico y tratamiento de las enfermedades del corazón"},
		{Base: base("2", now), Name: "Pediatría", Description: "Especialidad médica que estudia al niño y sus enfermedades"},
		{Base: base("3", now), Name: "Dermatología", Description: "Especialidad médica que se encarga del estudio de la piel y sus enfermedades"},
	}
}

func defaultPatients(now time.Time) []model.Patient {
	return []model.Patient{{
		Base:                 base("1", now),
		IdentificationNumber: "12345678A",
		Name:                 "Juan Carlos Pérez",
		Email:                "cliente@email.com",
		Phone:                "+34 666 123 456",
		DateOfBirth:          "1985-03-15",
		Address:              "Calle Mayor 123, Madrid",
	}}
}

func defaultStaff(now time.Time) []model.MedicalStaff {
	return []model.MedicalStaff{{
		Base:                 base("1", now),
		IdentificationNumber: "87654321B",
		Name:                 "Dr. Ana Rodríguez",
		Email:                "medico@hospital.com",
		Phone:                "+34 666 789 012",
		SpecialtyID:          "1",
	}}
}

func defaultShifts(now time.Time) []model.WorkShift {
	return []model.WorkShift{
		{Base: base("1", now), Name: "Turno Mañana", StartTime: "08:00", EndTime: "15:00", Description: "Turno de mañana para consultas regulares", IsActive: true},
		{Base: base("2", now), Name: "Turno Tarde", StartTime: "15:00", EndTime: "22:00", Description: "Turno de tarde para consultas y urgencias", IsActive: true},
	}
}
