package patient

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

func newService() *Service {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return NewService(repository.New(store.NewMemory(), store.DefaultPrefix), nil, func() time.Time { return now })
}

func TestCreate_IdentificationNumberIsUnique(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	p, err := svc.Create(ctx, admin, &model.PatientRequest{IdentificationNumber: "12345678A", Name: "Juan Carlos Pérez", Email: "cliente@email.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	_, err = svc.Create(ctx, admin, &model.PatientRequest{IdentificationNumber: "12345678A", Name: "Otro"})
	assert.ErrorIs(t, err, ErrDuplicateIdentification)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrConflict))

	other, err := svc.Create(ctx, admin, &model.PatientRequest{IdentificationNumber: "99999999Z", Name: "Lucía"})
	require.NoError(t, err)

	// keeping its own number is fine, taking someone else's is not
	_, err = svc.Update(ctx, admin, p.ID, &model.PatientRequest{IdentificationNumber: "12345678A", Name: "Juan C. Pérez"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, admin, other.ID, &model.PatientRequest{IdentificationNumber: "12345678A", Name: "Lucía"})
	assert.ErrorIs(t, err, ErrDuplicateIdentification)
}

func TestCreate_Validation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, &model.PatientRequest{})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Len(t, appErr.Fields, 2)

	_, err = svc.Create(ctx, admin, &model.PatientRequest{IdentificationNumber: "1", Name: "x", Email: "not-an-email"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	_, err = svc.Create(ctx, admin, &model.PatientRequest{IdentificationNumber: "1", Name: "x", DateOfBirth: "15/03/1985"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestListAndDelete(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, r := range []model.PatientRequest{
		{IdentificationNumber: "3", Name: "Zoe"},
		{IdentificationNumber: "1", Name: "Ana", Email: "ana@mail.com"},
		{IdentificationNumber: "2", Name: "Mario"},
	} {
		r := r
		_, err := svc.Create(ctx, admin, &r)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Ana", all[0].Name)

	found, err := svc.List(ctx, "MAIL.com")
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, svc.Delete(ctx, admin, found[0].ID))
	_, err = svc.Get(ctx, found[0].ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
	assert.True(t, apperrors.HasCode(svc.Delete(ctx, admin, found[0].ID), apperrors.ErrNotFound))
}
