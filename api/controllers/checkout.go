package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/vitrinebr/loja-api/api/responses"
	"github.com/vitrinebr/loja-api/api/validators"
	checkoutsvc "github.com/vitrinebr/loja-api/internal/checkout"
	"github.com/vitrinebr/loja-api/internal/orders"
	"github.com/vitrinebr/loja-api/pkg/enums"
	"github.com/vitrinebr/loja-api/pkg/logger"
	"github.com/vitrinebr/loja-api/pkg/types"
)

type checkoutBuyerRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
	CPF   string `json:"cpf" validate:"required,cpf"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}

type checkoutSubmitRequest struct {
	Buyer           checkoutBuyerRequest `json:"buyer"`
	ShippingAddress types.Address        `json:"shipping_address"`
	ShippingMethod  string               `json:"shipping_method"`
	PaymentMethod   string               `json:"payment_method"`
	Installments    int                  `json:"installments" validate:"omitempty,min=1"`
}

type pixView struct {
	QRCode       string     `json:"qr_code"`
	QRCodeBase64 string     `json:"qr_code_base64,omitempty"`
	TicketURL    string     `json:"ticket_url,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

type paymentView struct {
	Kind        string   `json:"kind"`
	Reference   string   `json:"reference"`
	Amount      money    `json:"amount"`
	RedirectURL string   `json:"redirect_url,omitempty"`
	Pix         *pixView `json:"pix,omitempty"`
}

type checkoutResultView struct {
	Order   orderView   `json:"order"`
	Totals  totalsView  `json:"totals"`
	Payment paymentView `json:"payment"`
}

type checkoutOptionsView struct {
	Shipping        []shippingOptionView `json:"shipping"`
	Payment         []paymentOptionView  `json:"payment"`
	MaxInstallments int                  `json:"max_installments"`
}

// CheckoutOptions lists the delivery tiers and payment methods.
func CheckoutOptions(maxInstallments int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := checkoutOptionsView{MaxInstallments: maxInstallments}
		for _, opt := range checkoutsvc.ShippingOptions() {
			view.Shipping = append(view.Shipping, newShippingOptionView(opt))
		}
		for _, opt := range checkoutsvc.PaymentOptions() {
			view.Payment = append(view.Payment, paymentOptionView{
				Method:          opt.Method,
				Label:           opt.Label,
				DiscountPercent: opt.DiscountPercent.String(),
				Installments:    opt.Installments,
			})
		}
		responses.WriteSuccess(w, view)
	}
}

// CheckoutQuote prices the current cart without side effects.
func CheckoutQuote(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := requireCartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q := r.URL.Query()
		shipping := enums.ShippingMethod(strings.TrimSpace(q.Get("shipping")))
		payment := enums.PaymentMethod(strings.TrimSpace(q.Get("payment")))

		totals, err := svc.Quote(r.Context(), sessionID, shipping, payment)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTotalsView(totals))
	}
}

// CheckoutSubmit turns the cart into a pending order and opens its payment.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sessionID, err := requireCartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req checkoutSubmitRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), checkoutsvc.SubmitInput{
			UserID:      userID,
			CartSession: sessionID,
			Buyer: orders.Buyer{
				Name:  strings.TrimSpace(req.Buyer.Name),
				Email: strings.ToLower(strings.TrimSpace(req.Buyer.Email)),
				CPF:   types.NormalizeCPF(req.Buyer.CPF),
				Phone: strings.TrimSpace(req.Buyer.Phone),
			},
			ShippingAddress: req.ShippingAddress,
			ShippingMethod:  enums.ShippingMethod(strings.TrimSpace(req.ShippingMethod)),
			PaymentMethod:   enums.PaymentMethod(strings.TrimSpace(req.PaymentMethod)),
			Installments:    req.Installments,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResultView(result))
	}
}

func newCheckoutResultView(res *checkoutsvc.Result) checkoutResultView {
	payment := paymentView{
		Kind:        res.Payment.Kind,
		Reference:   res.Payment.Reference,
		Amount:      newMoney(res.Payment.Amount),
		RedirectURL: res.Payment.RedirectURL,
	}
	if pix := res.Payment.Pix; pix != nil {
		payment.Pix = &pixView{
			QRCode:       pix.QRCode,
			QRCodeBase64: pix.QRCodeBase64,
			TicketURL:    pix.TicketURL,
			ExpiresAt:    pix.ExpiresAt,
		}
	}
	var order orderView
	if res.Order != nil {
		order = newOrderView(res.Order)
	}
	return checkoutResultView{Order: order, Totals: newTotalsView(res.Totals), Payment: payment}
}
