package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
)

func decodeBody(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read request body: %v", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return payload
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected token error")
	}
}

func TestCreatePreferenceRequest(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/checkout/preferences" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected authorization %q", got)
		}
		payload = decodeBody(t, r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"pref_123","init_point":"https://mp.test/init","sandbox_init_point":"https://sandbox.mp.test/init"}`))
	}))
	defer srv.Close()

	client, err := NewClient("test-token", WithBaseURL(srv.URL), WithSandbox(true))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	pref, err := client.CreatePreference(context.Background(), PreferenceRequest{
		ExternalReference: "order-1",
		Items: []Item{{
			ID:        "42",
			Title:     "Tênis Corrida",
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("1999.9"),
		}},
		ShippingCost:         decimal.RequireFromString("30"),
		Payer:                Payer{Name: "Ana Souza", Email: "ana@example.com", CPF: "123.456.789-09"},
		BackURLs:             BackURLs{Success: "https://loja.test/ok", Failure: "https://loja.test/falha", Pending: "https://loja.test/pendente"},
		MaxInstallments:      10,
		ExcludedPaymentTypes: []string{"ticket"},
	})
	if err != nil {
		t.Fatalf("create preference: %v", err)
	}
	if pref.ID != "pref_123" {
		t.Fatalf("unexpected preference %+v", pref)
	}
	if got := pref.CheckoutURL(client.Sandbox()); got != "https://sandbox.mp.test/init" {
		t.Fatalf("unexpected checkout url %q", got)
	}

	items := payload["items"].([]any)
	item := items[0].(map[string]any)
	if item["unit_price"].(json.Number).String() != "1999.90" {
		t.Fatalf("unexpected unit_price %v", item["unit_price"])
	}
	if item["currency_id"] != "BRL" {
		t.Fatalf("unexpected currency %v", item["currency_id"])
	}
	if payload["external_reference"] != "order-1" || payload["auto_return"] != "approved" {
		t.Fatalf("unexpected payload %v", payload)
	}
	shipments := payload["shipments"].(map[string]any)
	if shipments["cost"].(json.Number).String() != "30.00" {
		t.Fatalf("unexpected shipping cost %v", shipments["cost"])
	}
	payer := payload["payer"].(map[string]any)
	ident := payer["identification"].(map[string]any)
	if ident["number"] != "12345678909" {
		t.Fatalf("unexpected cpf %v", ident["number"])
	}
}

func TestCreatePreferenceValidation(t *testing.T) {
	client, _ := NewClient("tok")
	_, err := client.CreatePreference(context.Background(), PreferenceRequest{ExternalReference: "x"})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreatePixPaymentRequest(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Idempotency-Key"); got != "order-9" {
			t.Fatalf("unexpected idempotency key %q", got)
		}
		payload = decodeBody(t, r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":998877,"status":"pending","date_of_expiration":"2026-10-15T12:00:00.000-03:00","point_of_interaction":{"transaction_data":{"qr_code":"00020126pix","qr_code_base64":"aW1n","ticket_url":"https://mp.test/ticket"}}}`))
	}))
	defer srv.Close()

	client, err := NewClient("test-token", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	pix, err := client.CreatePixPayment(context.Background(), PixRequest{
		ExternalReference: "order-9",
		Amount:            decimal.RequireFromString("267.405"),
		Description:       "Pedido order-9",
		Payer:             Payer{Name: "Ana Maria Souza", Email: "ana@example.com", CPF: "12345678909"},
	})
	if err != nil {
		t.Fatalf("create pix: %v", err)
	}
	if pix.ID != "998877" || pix.QRCode != "00020126pix" || pix.TicketURL != "https://mp.test/ticket" {
		t.Fatalf("unexpected pix payment %+v", pix)
	}
	if pix.ExpiresAt == nil {
		t.Fatal("expected expiration")
	}
	if payload["transaction_amount"].(json.Number).String() != "267.41" {
		t.Fatalf("unexpected amount %v", payload["transaction_amount"])
	}
	if payload["payment_method_id"] != "pix" {
		t.Fatalf("unexpected method %v", payload["payment_method_id"])
	}
	payer := payload["payer"].(map[string]any)
	if payer["first_name"] != "Ana" || payer["last_name"] != "Maria Souza" {
		t.Fatalf("unexpected payer %v", payer)
	}
}

func TestNonSuccessStatusIsDependencyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid payer"}`))
	}))
	defer srv.Close()

	client, _ := NewClient("tok", WithBaseURL(srv.URL))
	_, err := client.CreatePixPayment(context.Background(), PixRequest{
		ExternalReference: "o1",
		Amount:            decimal.NewFromInt(10),
		Payer:             Payer{Email: "a@b.com"},
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !strings.Contains(pkgerrors.As(err).Message(), "invalid payer") {
		t.Fatalf("expected upstream message, got %q", pkgerrors.As(err).Message())
	}
}

func TestBreakerOpensAfterConsecutiveServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, _ := NewClient("tok", WithBaseURL(srv.URL))
	req := PixRequest{ExternalReference: "o1", Amount: decimal.NewFromInt(10), Payer: Payer{Email: "a@b.com"}}
	for i := 0; i < breakerConsecutiveFailures; i++ {
		if _, err := client.CreatePixPayment(context.Background(), req); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	_, err := client.CreatePixPayment(context.Background(), req)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if got := pkgerrors.As(err).Message(); got != "payment gateway unavailable" {
		t.Fatalf("expected breaker message, got %q", got)
	}
	if got := atomic.LoadInt32(&hits); got != breakerConsecutiveFailures {
		t.Fatalf("expected %d upstream hits, got %d", breakerConsecutiveFailures, got)
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client, _ := NewClient("tok", WithBaseURL(srv.URL))
	req := PixRequest{ExternalReference: "o1", Amount: decimal.NewFromInt(10), Payer: Payer{Email: "a@b.com"}}
	for i := 0; i < breakerConsecutiveFailures+2; i++ {
		_, _ = client.CreatePixPayment(context.Background(), req)
	}
	if got := atomic.LoadInt32(&hits); got != breakerConsecutiveFailures+2 {
		t.Fatalf("expected every call to reach upstream, got %d", got)
	}
}
