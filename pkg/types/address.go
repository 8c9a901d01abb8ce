package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	cepPattern = regexp.MustCompile(`^\d{5}-?\d{3}$`)

	brazilianStates = map[string]struct{}{
		"AC": {}, "AL": {}, "AP": {}, "AM": {}, "BA": {}, "CE": {}, "DF": {}, "ES": {}, "GO": {},
		"MA": {}, "MT": {}, "MS": {}, "MG": {}, "PA": {}, "PB": {}, "PR": {}, "PE": {}, "PI": {},
		"RJ": {}, "RN": {}, "RS": {}, "RO": {}, "RR": {}, "SC": {}, "SP": {}, "SE": {}, "TO": {},
	}
)

// Address is a Brazilian delivery address stored as a JSON column.
type Address struct {
	PostalCode   string  `json:"postal_code" validate:"required"`
	Street       string  `json:"street" validate:"required"`
	Number       string  `json:"number" validate:"required"`
	Complement   *string `json:"complement,omitempty"`
	Neighborhood string  `json:"neighborhood" validate:"required"`
	City         string  `json:"city" validate:"required"`
	State        string  `json:"state" validate:"required,len=2"`
}

// Normalize trims fields, uppercases the UF and formats the CEP as 00000-000.
func (a Address) Normalize() Address {
	out := Address{
		PostalCode:   strings.TrimSpace(a.PostalCode),
		Street:       strings.TrimSpace(a.Street),
		Number:       strings.TrimSpace(a.Number),
		Neighborhood: strings.TrimSpace(a.Neighborhood),
		City:         strings.TrimSpace(a.City),
		State:        strings.ToUpper(strings.TrimSpace(a.State)),
	}
	if a.Complement != nil {
		if c := strings.TrimSpace(*a.Complement); c != "" {
			out.Complement = &c
		}
	}
	if digits := strings.ReplaceAll(out.PostalCode, "-", ""); len(digits) == 8 {
		out.PostalCode = digits[:5] + "-" + digits[5:]
	}
	return out
}

// Validate checks CEP shape and UF.
func (a Address) Validate() error {
	if !cepPattern.MatchString(a.PostalCode) {
		return fmt.Errorf("address: invalid postal_code %q", a.PostalCode)
	}
	if _, ok := brazilianStates[strings.ToUpper(a.State)]; !ok {
		return fmt.Errorf("address: invalid state %q", a.State)
	}
	for field, value := range map[string]string{
		"street":       a.Street,
		"number":       a.Number,
		"neighborhood": a.Neighborhood,
		"city":         a.City,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("address: missing %s", field)
		}
	}
	return nil
}

// Value marshals Address as JSON.
func (a Address) Value() (driver.Value, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("address: marshal %w", err)
	}
	return string(payload), nil
}

// Scan decodes the JSON column.
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("address: unsupported scan type %T", value)
	}
	if err := json.Unmarshal(raw, a); err != nil {
		return fmt.Errorf("address: decode %w", err)
	}
	return nil
}
