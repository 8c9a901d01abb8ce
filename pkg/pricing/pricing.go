// Package pricing formats BRL amounts and derives installment and discount values.
//
// Amounts are fixed-point decimals end to end. The only rounding rule is Round:
// half away from zero to two places, applied at display time and when an amount
// leaves the system as a payable value.
package pricing

import (
	stdErrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
)

const (
	currencySymbol = "R$"
	displayPlaces  = 2
)

var (
	ErrInvalidAmount = stdErrors.New("invalid amount")
	ErrInvalidCount  = stdErrors.New("invalid installment count")

	hundred = decimal.NewFromInt(100)

	displayPattern = regexp.MustCompile(`^R\$[\s\x{00A0}]?(\d{1,3}(?:\.\d{3})*|\d+)(?:,(\d+))?$`)
)

func invalidAmount(format string, args ...any) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidAmount, fmt.Sprintf(format, args...))
}

// ParseAmount parses a machine decimal string such as "1999.90".
func ParseAmount(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, invalidAmount("amount is required")
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, invalidAmount("amount %q is not a decimal", raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, invalidAmount("amount %q must not be negative", raw)
	}
	return amount, nil
}

// MustParse is ParseAmount for literals known to be valid.
func MustParse(raw string) decimal.Decimal {
	amount, err := ParseAmount(raw)
	if err != nil {
		panic(err)
	}
	return amount
}

// Round applies half-up rounding to two decimal places.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(displayPlaces)
}

// FormatCurrency renders amount in pt-BR: R$ 1.999,90.
func FormatCurrency(amount decimal.Decimal) string {
	rounded := Round(amount)
	negative := rounded.IsNegative()
	if negative {
		rounded = rounded.Neg()
	}

	fixed := rounded.StringFixed(displayPlaces)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(currencySymbol)
	b.WriteByte(' ')
	b.WriteString(groupThousands(whole))
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	var b strings.Builder
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ParseCurrency reads back a value rendered by FormatCurrency.
func ParseCurrency(display string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(display)
	m := displayPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return decimal.Zero, invalidAmount("amount %q is not a BRL value", display)
	}
	machine := strings.ReplaceAll(m[1], ".", "")
	if m[2] != "" {
		machine += "." + m[2]
	}
	return ParseAmount(machine)
}

// ComputeInstallment splits total into count equal parts without rounding.
func ComputeInstallment(total decimal.Decimal, count int) (decimal.Decimal, error) {
	if count <= 0 {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidCount, fmt.Sprintf("installment count must be positive, got %d", count))
	}
	if total.IsNegative() {
		return decimal.Zero, invalidAmount("total %s must not be negative", total.String())
	}
	return total.Div(decimal.NewFromInt(int64(count))), nil
}

// FormatInstallments renders "10x de R$ 199,99".
func FormatInstallments(total decimal.Decimal, count int) (string, error) {
	each, err := ComputeInstallment(total, count)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%dx de %s", count, FormatCurrency(each)), nil
}

// PercentOf returns amount × percent/100.
func PercentOf(amount, percent decimal.Decimal) (decimal.Decimal, error) {
	if err := checkDiscountInputs(amount, percent); err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(percent).Div(hundred), nil
}

// ApplyPercentageDiscount returns amount × (1 − percent/100).
func ApplyPercentageDiscount(amount, percent decimal.Decimal) (decimal.Decimal, error) {
	off, err := PercentOf(amount, percent)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Sub(off), nil
}

func checkDiscountInputs(amount, percent decimal.Decimal) error {
	if amount.IsNegative() {
		return invalidAmount("amount %s must not be negative", amount.String())
	}
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return invalidAmount("percent %s must be between 0 and 100", percent.String())
	}
	return nil
}

// ExactString renders amount unrounded with at least two fraction digits.
func ExactString(amount decimal.Decimal) string {
	s := amount.String()
	_, frac, _ := strings.Cut(s, ".")
	if len(frac) < displayPlaces {
		return amount.StringFixed(displayPlaces)
	}
	return s
}
