package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/vitrinebr/loja-api/pkg/enums"
)

// ShippingOption is a delivery tier with a fixed price and a window in business days.
type ShippingOption struct {
	Method  enums.ShippingMethod
	Label   string
	Price   decimal.Decimal
	MinDays int
	MaxDays int
}

// PaymentOption describes a payment method offered at checkout.
type PaymentOption struct {
	Method          enums.PaymentMethod
	Label           string
	DiscountPercent decimal.Decimal
	Installments    bool
}

var shippingTable = map[enums.ShippingMethod]ShippingOption{
	enums.ShippingMethodEconomic: {Method: enums.ShippingMethodEconomic, Label: "Econômica", Price: decimal.RequireFromString("20.00"), MinDays: 7, MaxDays: 12},
	enums.ShippingMethodStandard: {Method: enums.ShippingMethodStandard, Label: "Padrão", Price: decimal.RequireFromString("30.00"), MinDays: 4, MaxDays: 7},
	enums.ShippingMethodExpress:  {Method: enums.ShippingMethodExpress, Label: "Expressa", Price: decimal.RequireFromString("50.00"), MinDays: 1, MaxDays: 2},
}

var paymentLabels = map[enums.PaymentMethod]string{
	enums.PaymentMethodCreditCard:  "Cartão de crédito",
	enums.PaymentMethodDebitCard:   "Cartão de débito",
	enums.PaymentMethodPix:         "PIX",
	enums.PaymentMethodBoleto:      "Boleto bancário",
	enums.PaymentMethodMercadoPago: "Mercado Pago",
}

// pixDiscountPercent applies to the merchandise subtotal only.
var pixDiscountPercent = decimal.NewFromInt(5)

// ShippingOptions lists the delivery tiers cheapest first.
func ShippingOptions() []ShippingOption {
	methods := enums.ShippingMethods()
	out := make([]ShippingOption, 0, len(methods))
	for _, m := range methods {
		out = append(out, shippingTable[m])
	}
	return out
}

// ShippingOptionFor looks up a delivery tier.
func ShippingOptionFor(method enums.ShippingMethod) (ShippingOption, bool) {
	opt, ok := shippingTable[method]
	return opt, ok
}

// DiscountPercent returns the discount granted to a payment method.
func DiscountPercent(method enums.PaymentMethod) decimal.Decimal {
	if method == enums.PaymentMethodPix {
		return pixDiscountPercent
	}
	return decimal.Zero
}

// PaymentOptions lists the payment methods in display order.
func PaymentOptions() []PaymentOption {
	methods := enums.PaymentMethods()
	out := make([]PaymentOption, 0, len(methods))
	for _, m := range methods {
		out = append(out, PaymentOption{
			Method:          m,
			Label:           paymentLabels[m],
			DiscountPercent: DiscountPercent(m),
			Installments:    m.AllowsInstallments(),
		})
	}
	return out
}
