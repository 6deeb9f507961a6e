package shift

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/store"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

var admin = model.Session{ID: "s1", UserID: "1", Role: model.RoleAdmin}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repository.New(store.NewMemory(), store.DefaultPrefix), nil, nil)

	morning, err := svc.Create(ctx, admin, &model.WorkShiftRequest{Name: "Turno Mañana", StartTime: "08:00", EndTime: "15:00"})
	require.NoError(t, err)
	assert.True(t, morning.IsActive)

	off := false
	night, err := svc.Create(ctx, admin, &model.WorkShiftRequest{Name: "Noche", StartTime: "9:00", EndTime: "21:30", IsActive: &off})
	require.NoError(t, err)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	updated, err := svc.Update(ctx, admin, night.ID, &model.WorkShiftRequest{Name: "Noche", StartTime: "20:00", EndTime: "23:59"})
	require.NoError(t, err)
	assert.Equal(t, "20:00", updated.StartTime)
	assert.False(t, updated.IsActive, "isActive is kept when omitted")

	require.NoError(t, svc.Delete(ctx, admin, morning.ID))
	_, err = svc.Get(ctx, morning.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repository.New(store.NewMemory(), store.DefaultPrefix), nil, nil)

	tests := []struct {
		name string
		req  model.WorkShiftRequest
	}{
		{"missing fields", model.WorkShiftRequest{}},
		{"bad format", model.WorkShiftRequest{Name: "x", StartTime: "8am", EndTime: "15:00"}},
		{"end before start", model.WorkShiftRequest{Name: "x", StartTime: "15:00", EndTime: "08:00"}},
		{"empty range", model.WorkShiftRequest{Name: "x", StartTime: "15:00", EndTime: "15:00"}},
		{"unpadded compare", model.WorkShiftRequest{Name: "x", StartTime: "15:00", EndTime: "9:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, admin, &tt.req)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
		})
	}

	_, err := svc.Update(ctx, admin, "missing", &model.WorkShiftRequest{Name: "x", StartTime: "08:00", EndTime: "09:00"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}
