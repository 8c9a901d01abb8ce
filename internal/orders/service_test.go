package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinebr/loja-api/pkg/db"
	"github.com/vitrinebr/loja-api/pkg/db/dbtest"
	"github.com/vitrinebr/loja-api/pkg/enums"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/pagination"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), db.NewFromGorm(conn))
	require.NoError(t, err)
	return svc
}

func testDraft(userID uuid.UUID) Draft {
	return Draft{
		UserID:          userID,
		Buyer:           Buyer{Name: " Ana Souza ", Email: "Ana@Example.com", CPF: "12345678909", Phone: "11999990000"},
		ShippingAddress: testAddress(),
		ShippingMethod:  enums.ShippingMethodStandard,
		PaymentMethod:   enums.PaymentMethodPix,
		Items: []DraftItem{
			{ProductID: 7, Name: "Mochila", UnitPrice: decimal.RequireFromString("249.90"), Quantity: 1},
		},
		Subtotal:     decimal.RequireFromString("249.90"),
		ShippingCost: decimal.RequireFromString("30.00"),
		Discount:     decimal.RequireFromString("12.495"),
		Total:        decimal.RequireFromString("267.405"),
	}
}

func TestServiceCreatePersistsPendingOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	userID := uuid.New()

	order, err := svc.Create(ctx, testDraft(userID))
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, "ana@example.com", order.BuyerEmail)
	assert.Equal(t, "Ana Souza", order.BuyerName)
	assert.Equal(t, 1, order.Installments)

	got, err := svc.GetForUser(ctx, order.ID, userID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("267.405")))
}

func TestServiceCreateValidatesDraft(t *testing.T) {
	svc := newTestService(t)
	draft := testDraft(uuid.New())
	draft.Items = nil
	_, err := svc.Create(context.Background(), draft)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	draft = testDraft(uuid.Nil)
	_, err = svc.Create(context.Background(), draft)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestServiceGetForOtherUserIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	order, err := svc.Create(ctx, testDraft(uuid.New()))
	require.NoError(t, err)

	_, err = svc.GetForUser(ctx, order.ID, uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestServiceUpdateStatusTransitions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	order, err := svc.Create(ctx, testDraft(uuid.New()))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, enums.OrderStatusDelivered)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	for _, next := range []enums.OrderStatus{enums.OrderStatusPaid, enums.OrderStatusShipped, enums.OrderStatusDelivered} {
		updated, err := svc.UpdateStatus(ctx, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	_, err = svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCanceled)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))

	_, err = svc.UpdateStatus(ctx, order.ID, enums.OrderStatus("lost"))
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestServiceAttachPayment(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	order, err := svc.Create(ctx, testDraft(uuid.New()))
	require.NoError(t, err)

	require.NoError(t, svc.AttachPayment(ctx, order.ID, PaymentReference{Kind: PaymentKindPreference, Reference: "pref_1", URL: "https://mp.test/init"}))
	got, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://mp.test/init", *got.PaymentURL)

	err = svc.AttachPayment(ctx, uuid.New(), PaymentReference{Kind: PaymentKindPix, Reference: "1"})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	err = svc.AttachPayment(ctx, order.ID, PaymentReference{})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestServiceListRejectsBadCursor(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.ListForUser(context.Background(), uuid.New(), pagination.Params{Cursor: "%%%"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}
