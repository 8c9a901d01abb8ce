package checkout

import (
	stdErrors "errors"

	"github.com/shopspring/decimal"

	"github.com/vitrinebr/loja-api/internal/cart"
	"github.com/vitrinebr/loja-api/pkg/enums"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/pricing"
)

var (
	ErrEmptyCart        = stdErrors.New("cart is empty")
	ErrMissingSelection = stdErrors.New("shipping or payment method not selected")
)

// Totals is the priced breakdown of a checkout. Every amount is exact; Payable
// is the only rounded value.
type Totals struct {
	Items           []cart.Item
	Shipping        ShippingOption
	PaymentMethod   enums.PaymentMethod
	DiscountPercent decimal.Decimal
	Subtotal        decimal.Decimal
	ShippingCost    decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
}

// Payable is Total rounded to cents, the amount charged to the buyer.
func (t Totals) Payable() decimal.Decimal {
	return pricing.Round(t.Total)
}

// ComputeTotals prices items for the chosen shipping and payment methods.
// It has no side effects and fails before any external call could happen.
func ComputeTotals(items []cart.Item, shipping enums.ShippingMethod, payment enums.PaymentMethod) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, pkgerrors.Wrap(pkgerrors.CodeEmptyCart, ErrEmptyCart, "cart is empty")
	}

	var missing []string
	option, ok := ShippingOptionFor(shipping)
	if !ok {
		missing = append(missing, "shipping_method")
	}
	if !payment.IsValid() {
		missing = append(missing, "payment_method")
	}
	if len(missing) > 0 {
		return Totals{}, pkgerrors.Wrap(pkgerrors.CodeMissingSelection, ErrMissingSelection, "select shipping and payment methods").
			WithDetails(map[string]any{"missing": missing})
	}

	store := cart.NewStore(items...)
	subtotal := store.Total()
	percent := DiscountPercent(payment)
	discount, err := pricing.PercentOf(subtotal, percent)
	if err != nil {
		return Totals{}, err
	}

	return Totals{
		Items:           store.Items(),
		Shipping:        option,
		PaymentMethod:   payment,
		DiscountPercent: percent,
		Subtotal:        subtotal,
		ShippingCost:    option.Price,
		Discount:        discount,
		Total:           subtotal.Add(option.Price).Sub(discount),
	}, nil
}
