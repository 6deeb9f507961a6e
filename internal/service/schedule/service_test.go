package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/store"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

var admin = model.Session{ID: "s1", UserID: "1", Role: model.RoleAdmin}

func newService(t *testing.T) (*Service, *repository.Repositories) {
	t.Helper()
	ctx := context.Background()
	repos := repository.New(store.NewMemory(), store.DefaultPrefix)
	require.NoError(t, repos.MedicalStaff.Replace(ctx, []model.MedicalStaff{
		{Base: model.Base{ID: "p"}, Name: "Dr. P"},
		{Base: model.Base{ID: "q"}, Name: "Dr. Q"},
	}))
	require.NoError(t, repos.WorkShifts.Replace(ctx, []model.WorkShift{
		{Base: model.Base{ID: "morning"}, StartTime: "08:00", EndTime: "15:00"},
		{Base: model.Base{ID: "evening"}, StartTime: "15:00", EndTime: "22:00"},
	}))
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return NewService(repos, nil, func() time.Time { return now }), repos
}

func request(staff, shift string, day int) *model.WorkScheduleRequest {
	return &model.WorkScheduleRequest{MedicalStaffID: staff, WorkShiftID: shift, DayOfWeek: &day}
}

func TestCreate_RejectsSecondRowForSameStaffAndDay(t *testing.T) {
	svc, repos := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, admin, request("p", "morning", 1))
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	// a different shift does not make the day free again
	_, err = svc.Create(ctx, admin, request("p", "evening", 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateSchedule)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrConflict))

	_, err = svc.Create(ctx, admin, request("p", "evening", 2))
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, request("q", "morning", 1))
	require.NoError(t, err)

	all, err := repos.WorkSchedules.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, &model.WorkScheduleRequest{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	_, err = svc.Create(ctx, admin, request("p", "morning", 7))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	_, err = svc.Create(ctx, admin, request("p", "morning", -1))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	_, err = svc.Create(ctx, admin, request("nobody", "morning", 1))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))

	_, err = svc.Create(ctx, admin, request("p", "night", 1))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))

	// Sunday is a valid day
	_, err = svc.Create(ctx, admin, request("p", "morning", 0))
	assert.NoError(t, err)
}

func TestUpdate_SameRowMayKeepItsDay(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	monday, err := svc.Create(ctx, admin, request("p", "morning", 1))
	require.NoError(t, err)
	tuesday, err := svc.Create(ctx, admin, request("p", "morning", 2))
	require.NoError(t, err)

	inactive := false
	req := request("p", "evening", 1)
	req.IsActive = &inactive
	updated, err := svc.Update(ctx, admin, monday.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "evening", updated.WorkShiftID)
	assert.False(t, updated.IsActive)

	_, err = svc.Update(ctx, admin, tuesday.ID, request("p", "morning", 1))
	assert.ErrorIs(t, err, ErrDuplicateSchedule)

	_, err = svc.Update(ctx, admin, "missing", request("q", "morning", 1))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}

func TestListGetDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	friday, err := svc.Create(ctx, admin, request("p", "morning", 5))
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, request("p", "morning", 1))
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, request("q", "morning", 3))
	require.NoError(t, err)

	list, err := svc.List(ctx, "p")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].DayOfWeek)
	assert.Equal(t, 5, list[1].DayOfWeek)

	got, err := svc.Get(ctx, friday.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.DayOfWeek)

	require.NoError(t, svc.Delete(ctx, admin, friday.ID))
	_, err = svc.Get(ctx, friday.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
	assert.True(t, apperrors.HasCode(svc.Delete(ctx, admin, friday.ID), apperrors.ErrNotFound))

	// the freed day can be assigned again
	_, err = svc.Create(ctx, admin, request("p", "evening", 5))
	assert.NoError(t, err)
}

func TestHasDuplicate(t *testing.T) {
	rows := []model.WorkSchedule{{Base: model.Base{ID: "a"}, MedicalStaffID: "p", DayOfWeek: 3}}
	assert.True(t, HasDuplicate(rows, "p", 3, ""))
	assert.False(t, HasDuplicate(rows, "p", 3, "a"))
	assert.False(t, HasDuplicate(rows, "p", 4, ""))
	assert.False(t, HasDuplicate(rows, "q", 3, ""))
}
