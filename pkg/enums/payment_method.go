package enums

import "fmt"

// PaymentMethod describes how a buyer intends to settle an order.
type PaymentMethod string

const (
	PaymentMethodCreditCard  PaymentMethod = "credit_card"
	PaymentMethodDebitCard   PaymentMethod = "debit_card"
	PaymentMethodPix         PaymentMethod = "pix"
	PaymentMethodBoleto      PaymentMethod = "boleto"
	PaymentMethodMercadoPago PaymentMethod = "mercado_pago"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCreditCard,
	PaymentMethodDebitCard,
	PaymentMethodPix,
	PaymentMethodBoleto,
	PaymentMethodMercadoPago,
}

// PaymentMethods returns the supported methods in display order.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(validPaymentMethods))
	copy(out, validPaymentMethods)
	return out
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsInstant reports whether the method settles through a PIX charge instead of a hosted checkout.
func (p PaymentMethod) IsInstant() bool {
	return p == PaymentMethodPix
}

// AllowsInstallments reports whether the buyer may split the payment.
func (p PaymentMethod) AllowsInstallments() bool {
	return p == PaymentMethodCreditCard || p == PaymentMethodMercadoPago
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
