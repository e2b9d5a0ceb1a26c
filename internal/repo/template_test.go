package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlindvall/korjournal/internal/domain"
	"github.com/mlindvall/korjournal/internal/repo"
)

func TestTemplateRepo_CRUD(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewTemplateRepo(tx)
	ctx := context.Background()

	userID := uuid.New()
	dist := 18.0

	created, err := r.Create(ctx, domain.TripTemplate{
		UserID:            userID,
		Name:              "Commute",
		DefaultPurpose:    "Office commute",
		Business:          true,
		DefaultDistanceKm: &dist,
		DefaultVehicleReg: "ABC123",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Commute", created.Name)
	require.NotNil(t, created.DefaultDistanceKm)
	assert.InDelta(t, 18.0, *created.DefaultDistanceKm, 0.001)

	created.DefaultPurpose = "Office commute, northern route"
	updated, err := r.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Office commute, northern route", updated.DefaultPurpose)

	list, err := r.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, r.Delete(ctx, userID, created.ID))
	_, err = r.GetByID(ctx, userID, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTemplateRepo_Create_DuplicateName(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewTemplateRepo(tx)
	ctx := context.Background()

	userID := uuid.New()
	tpl := domain.TripTemplate{UserID: userID, Name: "Commute", Business: true}

	_, err := r.Create(ctx, tpl)
	require.NoError(t, err)

	_, err = r.Create(ctx, tpl)
	assert.ErrorIs(t, err, domain.ErrValidation, "per-user name uniqueness")

	// Same name under a different user is fine.
	other := tpl
	other.UserID = uuid.New()
	_, err = r.Create(ctx, other)
	assert.NoError(t, err)
}

func TestTemplateRepo_ScopedToUser(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewTemplateRepo(tx)
	ctx := context.Background()

	created, err := r.Create(ctx, domain.TripTemplate{UserID: uuid.New(), Name: "Commute", Business: true})
	require.NoError(t, err)

	_, err = r.GetByID(ctx, uuid.New(), created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "other users must not see the template")
}
