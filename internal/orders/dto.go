package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vitrinebr/loja-api/pkg/enums"
	"github.com/vitrinebr/loja-api/pkg/types"
)

// Payment kinds recorded once the gateway accepted the order.
const (
	PaymentKindPreference = "preference"
	PaymentKindPix        = "pix"
)

// Buyer carries the contact data captured at checkout.
type Buyer struct {
	Name  string
	Email string
	CPF   string
	Phone string
}

// DraftItem is one priced line of a draft.
type DraftItem struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	ImageURL  string
}

// Draft is the priced checkout submitted for persistence.
type Draft struct {
	UserID          uuid.UUID
	Buyer           Buyer
	ShippingAddress types.Address
	ShippingMethod  enums.ShippingMethod
	PaymentMethod   enums.PaymentMethod
	Installments    int
	Items           []DraftItem
	Subtotal        decimal.Decimal
	ShippingCost    decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
}

// PaymentReference links an order to the gateway object paying for it.
type PaymentReference struct {
	Kind      string
	Reference string
	URL       string
}

// ListFilters narrow the back-office listing.
type ListFilters struct {
	Status *enums.OrderStatus
	UserID *uuid.UUID
}
