package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/pagination"
)

type signup struct {
	Email string  `json:"email" validate:"required,email"`
	CPF   *string `json:"cpf,omitempty" validate:"omitempty,cpf"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"nope","cpf":"111.111.111-11"}`))
	var dest signup
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := typed.Details().(map[string]string)
	if details["email"] != "must be a valid email" || details["cpf"] != "must be a valid CPF" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.com","extra":1}`))
	var dest signup
	if pkgerrors.CodeOf(DecodeJSONBody(req, &dest)) != pkgerrors.CodeValidation {
		t.Fatalf("expected unknown field to be rejected")
	}
}

func TestDecodeJSONBodyAcceptsValidCPF(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.com","cpf":"529.982.247-25"}`))
	var dest signup
	if err := DecodeJSONBody(req, &dest); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestParsePagination(t *testing.T) {
	params, err := ParsePagination(httptest.NewRequest("GET", "/?limit=5&cursor=abc", nil))
	if err != nil || params.Limit != 5 || params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v err=%v", params, err)
	}
	params, err = ParsePagination(httptest.NewRequest("GET", "/", nil))
	if err != nil || params.Limit != pagination.DefaultLimit {
		t.Fatalf("expected default limit, got %+v err=%v", params, err)
	}
	if _, err := ParsePagination(httptest.NewRequest("GET", "/?limit=500", nil)); err == nil {
		t.Fatalf("expected out of range limit to fail")
	}
}

func TestParsePathParams(t *testing.T) {
	if id, err := ParsePathInt("42", "id"); err != nil || id != 42 {
		t.Fatalf("unexpected %d %v", id, err)
	}
	for _, raw := range []string{"0", "-1", "abc"} {
		if _, err := ParsePathInt(raw, "id"); err == nil {
			t.Fatalf("expected %q to fail", raw)
		}
	}
	if _, err := ParsePathUUID("not-a-uuid", "id"); err == nil {
		t.Fatalf("expected invalid uuid to fail")
	}
}

func TestSanitizeStringCountsRunes(t *testing.T) {
	if got := SanitizeString("  ação rápida  ", 4); got != "ação" {
		t.Fatalf("unexpected %q", got)
	}
}
