package specialty

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

func TestService(t *testing.T) {
	ctx := context.Background()
	admin := model.Session{UserID: "1", Role: model.RoleAdmin}
	svc := NewService(repository.New(store.NewMemory(), store.DefaultPrefix), nil, nil)

	_, err := svc.Create(ctx, admin, &model.SpecialtyRequest{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	card, err := svc.Create(ctx, admin, &model.SpecialtyRequest{Name: "Cardiología"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, &model.SpecialtyRequest{Name: "Alergología"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alergología", list[0].Name)

	updated, err := svc.Update(ctx, admin, card.ID, &model.SpecialtyRequest{Name: "Cardiología", Description: "Corazón"})
	require.NoError(t, err)
	assert.Equal(t, "Corazón", updated.Description)

	got, err := svc.Get(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corazón", got.Description)

	require.NoError(t, svc.Delete(ctx, admin, card.ID))
	_, err = svc.Update(ctx, admin, card.ID, &model.SpecialtyRequest{Name: "x"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}
