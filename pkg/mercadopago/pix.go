package mercadopago

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
)

// PixRequest describes an instant PIX charge.
type PixRequest struct {
	ExternalReference string
	Amount            decimal.Decimal
	Description       string
	Payer             Payer
}

// PixPayment carries the data the buyer needs to pay.
type PixPayment struct {
	ID           string
	Status       string
	QRCode       string
	QRCodeBase64 string
	TicketURL    string
	ExpiresAt    *time.Time
}

type pixPayload struct {
	TransactionAmount json.Number  `json:"transaction_amount"`
	Description       string       `json:"description"`
	PaymentMethodID   string       `json:"payment_method_id"`
	ExternalReference string       `json:"external_reference"`
	Payer             pixPayerBody `json:"payer"`
}

type pixPayerBody struct {
	Email          string                 `json:"email"`
	FirstName      string                 `json:"first_name,omitempty"`
	LastName       string                 `json:"last_name,omitempty"`
	Identification *identificationPayload `json:"identification,omitempty"`
}

type pixResponse struct {
	ID                 int64      `json:"id"`
	Status             string     `json:"status"`
	DateOfExpiration   *time.Time `json:"date_of_expiration"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

// CreatePixPayment issues a PIX charge. The external reference doubles as the
// idempotency key so a resubmitted order never creates a second charge.
func (c *Client) CreatePixPayment(ctx context.Context, req PixRequest) (*PixPayment, error) {
	ref := strings.TrimSpace(req.ExternalReference)
	if ref == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external reference is required")
	}
	if !req.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pix amount must be positive")
	}
	if strings.TrimSpace(req.Payer.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payer email is required")
	}

	first, last := splitName(req.Payer.Name)
	payload := pixPayload{
		TransactionAmount: amountNumber(req.Amount),
		Description:       req.Description,
		PaymentMethodID:   "pix",
		ExternalReference: ref,
		Payer: pixPayerBody{
			Email:     req.Payer.Email,
			FirstName: first,
			LastName:  last,
		},
	}
	if digits := onlyDigits(req.Payer.CPF); digits != "" {
		payload.Payer.Identification = &identificationPayload{Type: "CPF", Number: digits}
	}

	raw, err := c.post(ctx, opCreatePixPayment, "/v1/payments", payload, map[string]string{
		"X-Idempotency-Key": ref,
	})
	if err != nil {
		return nil, err
	}

	var resp pixResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode pix payment response")
	}
	if resp.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pix payment response missing id")
	}

	data := resp.PointOfInteraction.TransactionData
	return &PixPayment{
		ID:           strconv.FormatInt(resp.ID, 10),
		Status:       resp.Status,
		QRCode:       data.QRCode,
		QRCodeBase64: data.QRCodeBase64,
		TicketURL:    data.TicketURL,
		ExpiresAt:    resp.DateOfExpiration,
	}, nil
}

func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}
