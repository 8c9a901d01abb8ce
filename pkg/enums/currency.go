package enums

import (
	"fmt"
	"strings"
)

// Currency is an ISO 4217 code accepted by the payment gateway.
type Currency string

const CurrencyBRL Currency = "BRL"

var validCurrencies = []Currency{CurrencyBRL}

func (c Currency) String() string {
	return string(c)
}

func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrency accepts the code in any case.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if strings.EqualFold(string(candidate), strings.TrimSpace(value)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
