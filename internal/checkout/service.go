package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vitrinebr/loja-api/internal/cart"
	"github.com/vitrinebr/loja-api/internal/orders"
	"github.com/vitrinebr/loja-api/pkg/config"
	"github.com/vitrinebr/loja-api/pkg/db/models"
	"github.com/vitrinebr/loja-api/pkg/enums"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/logger"
	"github.com/vitrinebr/loja-api/pkg/mercadopago"
	"github.com/vitrinebr/loja-api/pkg/metrics"
	"github.com/vitrinebr/loja-api/pkg/types"
)

type cartLoader interface {
	Get(ctx context.Context, sessionID string) (*cart.Store, error)
	Clear(ctx context.Context, sessionID string) error
}

type orderWriter interface {
	Create(ctx context.Context, draft orders.Draft) (*models.Order, error)
	AttachPayment(ctx context.Context, orderID uuid.UUID, ref orders.PaymentReference) error
}

type paymentGateway interface {
	CreatePreference(ctx context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error)
	CreatePixPayment(ctx context.Context, req mercadopago.PixRequest) (*mercadopago.PixPayment, error)
	Sandbox() bool
}

// Service prices carts and turns them into paid-for orders.
type Service interface {
	Quote(ctx context.Context, sessionID string, shipping enums.ShippingMethod, payment enums.PaymentMethod) (Totals, error)
	Submit(ctx context.Context, input SubmitInput) (*Result, error)
}

// SubmitInput is the buyer's checkout form.
type SubmitInput struct {
	UserID          uuid.UUID
	CartSession     string
	Buyer           orders.Buyer
	ShippingAddress types.Address
	ShippingMethod  enums.ShippingMethod
	PaymentMethod   enums.PaymentMethod
	Installments    int
}

// PixDetails is what the buyer needs to complete a PIX payment.
type PixDetails struct {
	QRCode       string
	QRCodeBase64 string
	TicketURL    string
	ExpiresAt    *time.Time
}

// Payment describes the gateway object created for the order.
type Payment struct {
	Kind        string
	Reference   string
	Amount      decimal.Decimal
	RedirectURL string
	Pix         *PixDetails
}

// Result is returned by a successful submission.
type Result struct {
	Order   *models.Order
	Totals  Totals
	Payment Payment
}

type service struct {
	carts   cartLoader
	orders  orderWriter
	gateway paymentGateway
	cfg     config.CheckoutConfig
	metrics *metrics.Storefront
	logg    *logger.Logger
}

// NewService builds the checkout service.
func NewService(carts cartLoader, orderSvc orderWriter, gateway paymentGateway, cfg config.CheckoutConfig, m *metrics.Storefront, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if cfg.MaxInstallments < 1 {
		cfg.MaxInstallments = 1
	}
	return &service{
		carts:   carts,
		orders:  orderSvc,
		gateway: gateway,
		cfg:     cfg,
		metrics: m,
		logg:    logg,
	}, nil
}

func (s *service) Quote(ctx context.Context, sessionID string, shipping enums.ShippingMethod, payment enums.PaymentMethod) (Totals, error) {
	store, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return Totals{}, err
	}
	return ComputeTotals(store.Items(), shipping, payment)
}

// Submit prices the cart, records a pending order and opens the payment with
// the gateway. Gateway failures leave the order pending and the cart intact so
// the buyer can resubmit.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*Result, error) {
	result, err := s.submit(ctx, input)
	outcome := metrics.OutcomeSuccess
	switch code := pkgerrors.CodeOf(err); {
	case err == nil:
	case code == pkgerrors.CodeDependency || code == pkgerrors.CodeInternal:
		outcome = metrics.OutcomeFailure
	default:
		outcome = metrics.OutcomeRejected
	}
	s.metrics.ObserveCheckout(input.PaymentMethod.String(), outcome)
	return result, err
}

func (s *service) submit(ctx context.Context, input SubmitInput) (*Result, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	store, err := s.carts.Get(ctx, input.CartSession)
	if err != nil {
		return nil, err
	}
	totals, err := ComputeTotals(store.Items(), input.ShippingMethod, input.PaymentMethod)
	if err != nil {
		return nil, err
	}
	installments, err := s.installments(input)
	if err != nil {
		return nil, err
	}
	address, err := validateAddress(input.ShippingAddress)
	if err != nil {
		return nil, err
	}

	draft := orders.Draft{
		UserID:          input.UserID,
		Buyer:           input.Buyer,
		ShippingAddress: address,
		ShippingMethod:  input.ShippingMethod,
		PaymentMethod:   input.PaymentMethod,
		Installments:    installments,
		Items:           make([]orders.DraftItem, 0, len(totals.Items)),
		Subtotal:        totals.Subtotal,
		ShippingCost:    totals.ShippingCost,
		Discount:        totals.Discount,
		Total:           totals.Total,
	}
	for _, it := range totals.Items {
		draft.Items = append(draft.Items, orders.DraftItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			ImageURL:  it.ImageURL,
		})
	}

	order, err := s.orders.Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, order.ID.String())
	}
	s.metrics.ObserveOrderTotal(totals.Payable())

	payment, err := s.openPayment(ctx, order, totals, input, installments)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "payment gateway rejected checkout", err)
		}
		return nil, err
	}

	if err := s.orders.AttachPayment(ctx, order.ID, orders.PaymentReference{
		Kind:      payment.Kind,
		Reference: payment.Reference,
		URL:       payment.RedirectURL,
	}); err != nil {
		return nil, err
	}
	kind, ref := payment.Kind, payment.Reference
	order.PaymentKind = &kind
	order.PaymentReference = &ref
	if payment.RedirectURL != "" {
		url := payment.RedirectURL
		order.PaymentURL = &url
	}

	if err := s.carts.Clear(ctx, input.CartSession); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "checkout completed but cart could not be cleared")
	}

	return &Result{Order: order, Totals: totals, Payment: payment}, nil
}

func (s *service) installments(input SubmitInput) (int, error) {
	n := input.Installments
	if n <= 0 {
		return 1, nil
	}
	if n > 1 && !input.PaymentMethod.AllowsInstallments() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "installments are only available for credit card payments").
			WithDetails(map[string]any{"payment_method": input.PaymentMethod})
	}
	if n > s.cfg.MaxInstallments {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("installments cannot exceed %d", s.cfg.MaxInstallments)).
			WithDetails(map[string]any{"max_installments": s.cfg.MaxInstallments})
	}
	return n, nil
}

func validateAddress(addr types.Address) (types.Address, error) {
	normalized := addr.Normalize()
	if err := normalized.Validate(); err != nil {
		return types.Address{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}
	return normalized, nil
}

func (s *service) openPayment(ctx context.Context, order *models.Order, totals Totals, input SubmitInput, installments int) (Payment, error) {
	payer := mercadopago.Payer{
		Name:  input.Buyer.Name,
		Email: input.Buyer.Email,
		CPF:   input.Buyer.CPF,
		Phone: input.Buyer.Phone,
	}
	ref := order.ID.String()

	if input.PaymentMethod.IsInstant() {
		pix, err := s.gateway.CreatePixPayment(ctx, mercadopago.PixRequest{
			ExternalReference: ref,
			Amount:            totals.Payable(),
			Description:       "Pedido " + ref,
			Payer:             payer,
		})
		if err != nil {
			return Payment{}, gatewayError(err)
		}
		return Payment{
			Kind:        orders.PaymentKindPix,
			Reference:   pix.ID,
			Amount:      totals.Payable(),
			RedirectURL: pix.TicketURL,
			Pix: &PixDetails{
				QRCode:       pix.QRCode,
				QRCodeBase64: pix.QRCodeBase64,
				TicketURL:    pix.TicketURL,
				ExpiresAt:    pix.ExpiresAt,
			},
		}, nil
	}

	pref, err := s.gateway.CreatePreference(ctx, mercadopago.PreferenceRequest{
		ExternalReference: ref,
		Items:             preferenceItems(totals),
		ShippingCost:      totals.ShippingCost,
		Payer:             payer,
		BackURLs: mercadopago.BackURLs{
			Success: s.cfg.SuccessURL,
			Failure: s.cfg.FailureURL,
			Pending: s.cfg.PendingURL,
		},
		MaxInstallments:      maxInstallmentsFor(input.PaymentMethod, installments, s.cfg.MaxInstallments),
		ExcludedPaymentTypes: excludedPaymentTypes(input.PaymentMethod),
	})
	if err != nil {
		return Payment{}, gatewayError(err)
	}
	return Payment{
		Kind:        orders.PaymentKindPreference,
		Reference:   pref.ID,
		Amount:      totals.Payable(),
		RedirectURL: pref.CheckoutURL(s.gateway.Sandbox()),
	}, nil
}

// preferenceItems lists the cart lines. A discounted order is sent as a single
// line carrying the discounted merchandise value so the gateway charges Total.
func preferenceItems(totals Totals) []mercadopago.Item {
	if totals.Discount.IsPositive() {
		return []mercadopago.Item{{
			ID:        "order",
			Title:     "Pedido " + strconv.Itoa(len(totals.Items)) + " itens",
			Quantity:  1,
			UnitPrice: totals.Subtotal.Sub(totals.Discount),
		}}
	}
	items := make([]mercadopago.Item, 0, len(totals.Items))
	for _, it := range totals.Items {
		items = append(items, mercadopago.Item{
			ID:          strconv.FormatInt(it.ProductID, 10),
			Title:       it.Name,
			Description: it.ShortDescription(cart.ShortDescriptionLimit),
			PictureURL:  it.ImageURL,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return items
}

func maxInstallmentsFor(method enums.PaymentMethod, chosen, max int) int {
	if !method.AllowsInstallments() {
		return 1
	}
	if chosen > 1 {
		return chosen
	}
	return max
}

// excludedPaymentTypes narrows the hosted checkout to the method the buyer picked.
func excludedPaymentTypes(method enums.PaymentMethod) []string {
	switch method {
	case enums.PaymentMethodCreditCard:
		return []string{"debit_card", "ticket", "bank_transfer", "atm"}
	case enums.PaymentMethodDebitCard:
		return []string{"credit_card", "ticket", "bank_transfer", "atm"}
	case enums.PaymentMethodBoleto:
		return []string{"credit_card", "debit_card", "bank_transfer", "atm"}
	default:
		return nil
	}
}

func gatewayError(err error) error {
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeDependency {
		return typed
	}
	msg := strings.TrimSpace(err.Error())
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway error: "+msg)
}
