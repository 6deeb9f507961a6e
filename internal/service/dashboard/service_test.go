package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/store"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

func TestStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	repos := repository.New(store.NewMemory(), store.DefaultPrefix)
	require.NoError(t, repos.Seed(ctx, repository.SeedCredentials{
		AdminPassword: "admin123", PatientPassword: "cliente123", StaffPassword: "medico123",
	}, security.NewBcryptHasher(bcrypt.MinCost), now, nil))

	require.NoError(t, repos.Appointments.Replace(ctx, []model.Appointment{
		{Base: model.Base{ID: "a"}, Date: "2025-06-02", Time: "10:00", Status: model.AppointmentStatusScheduled},
		{Base: model.Base{ID: "b"}, Date: "2025-06-02", Time: "11:00", Status: model.AppointmentStatusCancelled},
		{Base: model.Base{ID: "c"}, Date: "2025-06-01", Time: "11:00", Status: model.AppointmentStatusCompleted},
		{Base: model.Base{ID: "d"}, Date: "2025-07-01", Time: "11:00", Status: model.AppointmentStatusScheduled},
	}))

	// 23:30 UTC is already the 2nd two hours east
	svc := NewService(repos, func() time.Time { return now }, time.FixedZone("UTC+2", 2*60*60))
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, model.DashboardStats{
		Patients:              1,
		MedicalStaff:          1,
		Specialties:           3,
		ActiveWorkShifts:      2,
		Appointments:          4,
		ScheduledAppointments: 2,
		AppointmentsToday:     2,
	}, *stats)
}
