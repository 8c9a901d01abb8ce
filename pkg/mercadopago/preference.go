package mercadopago

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vitrinebr/loja-api/pkg/enums"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/pricing"
)

// Item is one line of a hosted checkout preference.
type Item struct {
	ID          string
	Title       string
	Description string
	PictureURL  string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Payer identifies the buyer for the gateway.
type Payer struct {
	Name  string
	Email string
	CPF   string
	Phone string
}

// BackURLs are the storefront pages the hosted checkout returns to.
type BackURLs struct {
	Success string
	Failure string
	Pending string
}

// PreferenceRequest describes a hosted checkout session.
type PreferenceRequest struct {
	ExternalReference    string
	Items                []Item
	ShippingCost         decimal.Decimal
	Payer                Payer
	BackURLs             BackURLs
	MaxInstallments      int
	ExcludedPaymentTypes []string
}

// Preference is the hosted checkout created by the gateway.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// CheckoutURL picks the redirect link for the environment.
func (p Preference) CheckoutURL(sandbox bool) string {
	if sandbox && p.SandboxInitPoint != "" {
		return p.SandboxInitPoint
	}
	return p.InitPoint
}

type preferenceItemPayload struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	PictureURL  string         `json:"picture_url,omitempty"`
	Quantity    int            `json:"quantity"`
	CurrencyID  enums.Currency `json:"currency_id"`
	UnitPrice   json.Number    `json:"unit_price"`
}

type preferencePayload struct {
	Items             []preferenceItemPayload `json:"items"`
	Payer             payerPayload            `json:"payer"`
	BackURLs          backURLsPayload         `json:"back_urls"`
	AutoReturn        string                  `json:"auto_return,omitempty"`
	ExternalReference string                  `json:"external_reference"`
	Shipments         *shipmentsPayload       `json:"shipments,omitempty"`
	PaymentMethods    paymentMethodsPayload   `json:"payment_methods"`
}

type payerPayload struct {
	Name           string                 `json:"name,omitempty"`
	Email          string                 `json:"email"`
	Identification *identificationPayload `json:"identification,omitempty"`
	Phone          *phonePayload          `json:"phone,omitempty"`
}

type identificationPayload struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type phonePayload struct {
	Number string `json:"number"`
}

type backURLsPayload struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type shipmentsPayload struct {
	Cost json.Number `json:"cost"`
	Mode string      `json:"mode"`
}

type paymentMethodsPayload struct {
	Installments         int           `json:"installments,omitempty"`
	ExcludedPaymentTypes []typePayload `json:"excluded_payment_types,omitempty"`
}

type typePayload struct {
	ID string `json:"id"`
}

// CreatePreference opens a hosted checkout for the order.
func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	if strings.TrimSpace(req.ExternalReference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external reference is required")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "preference requires at least one item")
	}

	payload := preferencePayload{
		Items: make([]preferenceItemPayload, 0, len(req.Items)),
		Payer: newPayerPayload(req.Payer),
		BackURLs: backURLsPayload{
			Success: req.BackURLs.Success,
			Failure: req.BackURLs.Failure,
			Pending: req.BackURLs.Pending,
		},
		ExternalReference: req.ExternalReference,
		PaymentMethods: paymentMethodsPayload{
			Installments: req.MaxInstallments,
		},
	}
	if req.BackURLs.Success != "" {
		payload.AutoReturn = "approved"
	}
	for _, item := range req.Items {
		payload.Items = append(payload.Items, preferenceItemPayload{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			PictureURL:  item.PictureURL,
			Quantity:    item.Quantity,
			CurrencyID:  enums.CurrencyBRL,
			UnitPrice:   amountNumber(item.UnitPrice),
		})
	}
	if req.ShippingCost.IsPositive() {
		payload.Shipments = &shipmentsPayload{Cost: amountNumber(req.ShippingCost), Mode: "not_specified"}
	}
	for _, t := range req.ExcludedPaymentTypes {
		payload.PaymentMethods.ExcludedPaymentTypes = append(payload.PaymentMethods.ExcludedPaymentTypes, typePayload{ID: t})
	}

	raw, err := c.post(ctx, opCreatePreference, "/checkout/preferences", payload, nil)
	if err != nil {
		return nil, err
	}

	var pref Preference
	if err := json.Unmarshal(raw, &pref); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode preference response")
	}
	if pref.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "preference response missing id")
	}
	return &pref, nil
}

func newPayerPayload(p Payer) payerPayload {
	out := payerPayload{Name: p.Name, Email: p.Email}
	if digits := onlyDigits(p.CPF); digits != "" {
		out.Identification = &identificationPayload{Type: "CPF", Number: digits}
	}
	if digits := onlyDigits(p.Phone); digits != "" {
		out.Phone = &phonePayload{Number: digits}
	}
	return out
}

// amountNumber renders the payable amount sent over the wire.
func amountNumber(amount decimal.Decimal) json.Number {
	return json.Number(pricing.ExactString(pricing.Round(amount)))
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
