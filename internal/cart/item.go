package cart

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ShortDescriptionLimit is the rune budget for descriptions shown in cart listings.
const ShortDescriptionLimit = 120

// Item is a product line in a cart. ProductID identifies the line.
type Item struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"image_url"`
	Description string          `json:"description,omitempty"`
}

// LineTotal is the unit price times quantity, unrounded.
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShortDescription truncates the description to limit runes, marking cuts with an ellipsis.
func (i Item) ShortDescription(limit int) string {
	desc := strings.TrimSpace(i.Description)
	if limit <= 0 || utf8.RuneCountInString(desc) <= limit {
		return desc
	}
	runes := []rune(desc)
	return strings.TrimRightFunc(string(runes[:limit]), isSpace) + "…"
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}
