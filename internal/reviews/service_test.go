package reviews

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vitrinebr/loja-api/pkg/db/dbtest"
	"github.com/vitrinebr/loja-api/pkg/db/models"
	"github.com/vitrinebr/loja-api/pkg/enums"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/pagination"
)

type stubProducts map[int64]*models.Product

func (s stubProducts) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func mustCreateUser(t *testing.T, conn *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{
		Name:         "Cliente Teste",
		Email:        fmt.Sprintf("cliente_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Role:         enums.UserRoleCustomer,
	}
	require.NoError(t, conn.Create(u).Error)
	return u
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), stubProducts{
		1: {ID: 1, Name: "Mochila", Price: decimal.NewFromInt(100), IsActive: true},
		2: {ID: 2, Name: "Antiga", Price: decimal.NewFromInt(100), IsActive: false},
	})
	require.NoError(t, err)
	return svc, conn
}

func TestCreateAndSummarize(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)

	for _, rating := range []int{5, 4, 4} {
		u := mustCreateUser(t, conn)
		_, err := svc.Create(ctx, u.ID, 1, CreateInput{Rating: rating, Title: "Muito boa", Comment: "Recomendo"})
		require.NoError(t, err)
	}

	summary, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Count)
	assert.Equal(t, "4.33", summary.Average.StringFixed(2))

	empty, err := svc.Summary(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Count)
	assert.True(t, empty.Average.IsZero())
}

func TestCreateRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)
	u := mustCreateUser(t, conn)

	_, err := svc.Create(ctx, u.ID, 1, CreateInput{Rating: 5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, u.ID, 1, CreateInput{Rating: 3})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)
	u := mustCreateUser(t, conn)

	_, err := svc.Create(ctx, u.ID, 1, CreateInput{Rating: 6})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	_, err = svc.Create(ctx, u.ID, 2, CreateInput{Rating: 4})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
	_, err = svc.Create(ctx, uuid.Nil, 1, CreateInput{Rating: 4})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestDeleteRequiresAuthorOrAdmin(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)
	author := mustCreateUser(t, conn)
	review, err := svc.Create(ctx, author.ID, 1, CreateInput{Rating: 2})
	require.NoError(t, err)

	err = svc.Delete(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleCustomer}, review.ID)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	require.NoError(t, svc.Delete(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, review.ID))
	err = svc.Delete(ctx, Actor{UserID: author.ID}, review.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestListIncludesAuthors(t *testing.T) {
	ctx := context.Background()
	svc, conn := newTestService(t)
	for i := 0; i < 3; i++ {
		u := mustCreateUser(t, conn)
		_, err := svc.Create(ctx, u.ID, 1, CreateInput{Rating: 5})
		require.NoError(t, err)
	}

	rows, next, err := svc.List(ctx, 1, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.NotEmpty(t, next)
	require.NotNil(t, rows[0].User)
	assert.Equal(t, "Cliente Teste", rows[0].User.Name)

	rest, next, err := svc.List(ctx, 1, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
	assert.Empty(t, next)
}
