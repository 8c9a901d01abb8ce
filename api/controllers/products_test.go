package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	product "github.com/vitrinebr/loja-api/internal/products"
	"github.com/vitrinebr/loja-api/internal/reviews"
	"github.com/vitrinebr/loja-api/pkg/db/models"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/pricing"
)

type stubProductService struct {
	rows        []models.Product
	next        string
	detail      *product.Detail
	err         error
	gotList     product.ListInput
	gotInput    product.Input
	deactivated int64
}

func (s *stubProductService) List(ctx context.Context, input product.ListInput) ([]models.Product, string, error) {
	s.gotList = input
	return s.rows, s.next, s.err
}

func (s *stubProductService) Get(ctx context.Context, id int64) (*product.Detail, error) {
	return s.detail, s.err
}

func (s *stubProductService) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return nil, s.err
}

func (s *stubProductService) Create(ctx context.Context, input product.Input) (*models.Product, error) {
	s.gotInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.Product{ID: 10, Slug: input.Slug, Name: input.Name, Price: input.Price, IsActive: input.Active}, nil
}

func (s *stubProductService) Update(ctx context.Context, id int64, input product.Input) (*models.Product, error) {
	s.gotInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.Product{ID: id, Slug: input.Slug, Name: input.Name, Price: input.Price, IsActive: input.Active}, nil
}

func (s *stubProductService) Deactivate(ctx context.Context, id int64) error {
	s.deactivated = id
	return s.err
}

func TestProductList(t *testing.T) {
	logg := testLogger()
	stub := &stubProductService{
		rows: []models.Product{{ID: 1, Slug: "tenis", Name: "Tênis", Price: pricing.MustParse("1999.90"), IsActive: true}},
		next: "cursor-2",
	}
	req := newRequest(http.MethodGet, "/api/v1/products?category=calcados&q=%20corrida%20&limit=10", requestOpts{})
	rec := serve(ProductList(stub, logg), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.gotList.CategorySlug != "calcados" || stub.gotList.Query != "corrida" || stub.gotList.Params.Limit != 10 {
		t.Fatalf("unexpected list input %+v", stub.gotList)
	}
	if stub.gotList.IncludeInactive {
		t.Fatalf("public listing must hide inactive products")
	}
	var page struct {
		Items      []productView `json:"items"`
		NextCursor string        `json:"next_cursor"`
	}
	decodeData(t, rec, &page)
	if page.NextCursor != "cursor-2" || page.Items[0].Price.Display != "R$ 1.999,90" {
		t.Fatalf("unexpected page %+v", page)
	}

	rec = serve(AdminProductList(stub, logg), newRequest(http.MethodGet, "/api/v1/admin/products", requestOpts{}))
	if rec.Code != http.StatusOK || !stub.gotList.IncludeInactive {
		t.Fatalf("admin listing should include inactive products")
	}

	rec = serve(ProductList(stub, logg), newRequest(http.MethodGet, "/api/v1/products?limit=500", requestOpts{}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for limit out of range, got %d", rec.Code)
	}
}

func TestProductGet(t *testing.T) {
	logg := testLogger()
	price := pricing.MustParse("199.90")
	stub := &stubProductService{detail: &product.Detail{
		Product:      &models.Product{ID: 3, Name: "Mochila", Price: price, IsActive: true},
		Installments: 10,
		Installment:  pricing.MustParse("19.99"),
		PixPrice:     pricing.MustParse("189.905"),
		Rating:       reviews.Summary{Average: decimal.RequireFromString("4.5"), Count: 2},
	}}

	req := newRequest(http.MethodGet, "/api/v1/products/3", requestOpts{params: map[string]string{"productId": "3"}})
	rec := serve(ProductGet(stub, logg), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var view productDetailView
	decodeData(t, rec, &view)
	if view.Installments.Label != "10x de R$ 19,99" {
		t.Fatalf("unexpected installments label %q", view.Installments.Label)
	}
	if view.PixPrice.Display != "R$ 189,91" || view.Rating.Average != "4.50" {
		t.Fatalf("unexpected pix price %+v rating %+v", view.PixPrice, view.Rating)
	}

	req = newRequest(http.MethodGet, "/api/v1/products/0", requestOpts{params: map[string]string{"productId": "0"}})
	if rec := serve(ProductGet(stub, logg), req); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for id 0, got %d", rec.Code)
	}

	missing := &stubProductService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	req = newRequest(http.MethodGet, "/api/v1/products/9", requestOpts{params: map[string]string{"productId": "9"}})
	if rec := serve(ProductGet(missing, logg), req); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAdminProductWrites(t *testing.T) {
	logg := testLogger()

	stub := &stubProductService{}
	body := `{"slug":"mochila","name":"Mochila","price":"199.90","compare_at_price":"249.90","stock":3}`
	rec := serve(AdminProductCreate(stub, logg), newRequest(http.MethodPost, "/api/v1/admin/products", requestOpts{body: body}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !stub.gotInput.Price.Equal(pricing.MustParse("199.90")) || stub.gotInput.CompareAtPrice == nil || !stub.gotInput.Active {
		t.Fatalf("unexpected input %+v", stub.gotInput)
	}

	bad := `{"slug":"mochila","name":"Mochila","price":"-1"}`
	rec = serve(AdminProductCreate(&stubProductService{}, logg), newRequest(http.MethodPost, "/api/v1/admin/products", requestOpts{body: bad}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative price, got %d", rec.Code)
	}

	inactive := `{"slug":"mochila","name":"Mochila","price":"10","active":false}`
	req := newRequest(http.MethodPut, "/api/v1/admin/products/4", requestOpts{body: inactive, params: map[string]string{"productId": "4"}})
	if rec := serve(AdminProductUpdate(stub, logg), req); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.gotInput.Active {
		t.Fatalf("expected active=false to be honored")
	}

	req = newRequest(http.MethodDelete, "/api/v1/admin/products/4", requestOpts{params: map[string]string{"productId": "4"}})
	if rec := serve(AdminProductDelete(stub, logg), req); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if stub.deactivated != 4 {
		t.Fatalf("expected product 4 deactivated, got %d", stub.deactivated)
	}
}
