package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrinebr/loja-api/pkg/db/models"
	"github.com/vitrinebr/loja-api/pkg/enums"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes order persistence and lifecycle operations.
type Service interface {
	Create(ctx context.Context, draft Draft) (*models.Order, error)
	AttachPayment(ctx context.Context, orderID uuid.UUID, ref PaymentReference) error
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, string, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the orders service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Create persists a pending order and its items in one transaction.
func (s *service) Create(ctx context.Context, draft Draft) (*models.Order, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:          draft.UserID,
		Status:          enums.OrderStatusPending,
		PaymentMethod:   draft.PaymentMethod,
		ShippingMethod:  draft.ShippingMethod,
		Installments:    draft.Installments,
		BuyerName:       strings.TrimSpace(draft.Buyer.Name),
		BuyerEmail:      strings.ToLower(strings.TrimSpace(draft.Buyer.Email)),
		BuyerCPF:        strings.TrimSpace(draft.Buyer.CPF),
		ShippingAddress: draft.ShippingAddress,
		Subtotal:        draft.Subtotal,
		ShippingCost:    draft.ShippingCost,
		Discount:        draft.Discount,
		Total:           draft.Total,
		Items:           make([]models.OrderItem, 0, len(draft.Items)),
	}
	if order.Installments < 1 {
		order.Installments = 1
	}
	if phone := strings.TrimSpace(draft.Buyer.Phone); phone != "" {
		order.BuyerPhone = &phone
	}
	for _, item := range draft.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		})
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		created, err = s.repo.WithTx(tx).Create(ctx, order)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	return created, nil
}

func validateDraft(draft Draft) error {
	switch {
	case draft.UserID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	case len(draft.Items) == 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	case !draft.ShippingMethod.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping method")
	case !draft.PaymentMethod.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	case draft.Total.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "order total must be non-negative")
	}
	return nil
}

func (s *service) AttachPayment(ctx context.Context, orderID uuid.UUID, ref PaymentReference) error {
	if strings.TrimSpace(ref.Reference) == "" || strings.TrimSpace(ref.Kind) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}
	if err := s.repo.UpdatePayment(ctx, orderID, ref); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attach payment")
	}
	return nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	if userID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return s.List(ctx, params, ListFilters{UserID: &userID})
}

func (s *service) GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByIDForUser(ctx, orderID, userID)
	return mapFindError(order, err)
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, string, error) {
	rows, next, err := s.repo.List(ctx, params, filters)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, "", err
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return rows, next, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	return mapFindError(order, err)
}

// UpdateStatus applies a back-office transition. Moves outside the order
// lifecycle, or racing another update, fail with STATE_CONFLICT.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order cannot move from %s to %s", order.Status, next)).
			WithDetails(map[string]any{"current_status": order.Status, "requested_status": next})
	}
	ok, err := s.repo.UpdateStatus(ctx, orderID, order.Status, next)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}
	order.Status = next
	return order, nil
}

func mapFindError(order *models.Order, err error) (*models.Order, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}
