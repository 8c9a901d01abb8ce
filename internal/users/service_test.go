package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinebr/loja-api/pkg/db/dbtest"
	"github.com/vitrinebr/loja-api/pkg/db/models"
	"github.com/vitrinebr/loja-api/pkg/enums"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func mustCreate(t *testing.T, repo *Repository, role enums.UserRole) *models.User {
	t.Helper()
	u, err := repo.Create(context.Background(), CreateUserDTO{
		Name:         "Maria Souza",
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

func strPtr(s string) *string { return &s }

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	u := mustCreate(t, repo, enums.UserRoleCustomer)

	updated, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdate{
		Name: strPtr("  Maria S. Souza "),
		CPF:  strPtr("529.982.247-25"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria S. Souza", updated.Name)
	require.NotNil(t, updated.CPF)
	assert.Equal(t, "52998224725", *updated.CPF)
	assert.Nil(t, updated.Phone)
}

func TestUpdateProfileRejectsInvalidCPF(t *testing.T) {
	svc, repo := newTestService(t)
	u := mustCreate(t, repo, enums.UserRoleCustomer)

	_, err := svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{CPF: strPtr("111.111.111-11"), Name: strPtr(" ")})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	details := pkgerrors.As(err).Details().(map[string]any)
	assert.Contains(t, details, "cpf")
	assert.Contains(t, details, "name")
}

func TestChangeRoleAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	admin := mustCreate(t, repo, enums.UserRoleAdmin)
	customer := mustCreate(t, repo, enums.UserRoleCustomer)

	promoted, err := svc.ChangeRole(ctx, admin.ID, customer.ID, enums.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, promoted.Role)

	_, err = svc.ChangeRole(ctx, admin.ID, admin.ID, enums.UserRoleCustomer)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	_, err = svc.ChangeRole(ctx, admin.ID, customer.ID, enums.UserRole("root"))
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(svc.Delete(ctx, admin.ID, admin.ID)))
	require.NoError(t, svc.Delete(ctx, admin.ID, customer.ID))
	_, err = svc.Get(ctx, customer.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(svc.Delete(ctx, admin.ID, customer.ID)))
}

func TestListByRole(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	mustCreate(t, repo, enums.UserRoleAdmin)
	for i := 0; i < 3; i++ {
		mustCreate(t, repo, enums.UserRoleCustomer)
	}

	role := enums.UserRoleCustomer
	page, next, err := svc.List(ctx, pagination.Params{Limit: 2}, &role)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotEmpty(t, next)

	rest, next, err := svc.List(ctx, pagination.Params{Limit: 2, Cursor: next}, &role)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Empty(t, next)

	all, _, err := svc.List(ctx, pagination.Params{}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
