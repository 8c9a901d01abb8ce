package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vitrinebr/loja-api/api/responses"
	"github.com/vitrinebr/loja-api/api/validators"
	product "github.com/vitrinebr/loja-api/internal/products"
	"github.com/vitrinebr/loja-api/pkg/logger"
	"github.com/vitrinebr/loja-api/pkg/pricing"
)

type productRequest struct {
	Slug           string   `json:"slug" validate:"required,max=120"`
	Name           string   `json:"name" validate:"required,max=200"`
	Description    string   `json:"description"`
	Price          string   `json:"price" validate:"required"`
	CompareAtPrice *string  `json:"compare_at_price,omitempty"`
	ImageURL       string   `json:"image_url" validate:"omitempty,url"`
	Gallery        []string `json:"gallery" validate:"omitempty,dive,url"`
	CategoryID     *int64   `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Stock          int      `json:"stock" validate:"min=0"`
	Active         *bool    `json:"active,omitempty"`
}

func (req productRequest) toInput() (product.Input, error) {
	price, err := pricing.ParseAmount(req.Price)
	if err != nil {
		return product.Input{}, err
	}
	var compareAt *decimal.Decimal
	if req.CompareAtPrice != nil && strings.TrimSpace(*req.CompareAtPrice) != "" {
		parsed, err := pricing.ParseAmount(*req.CompareAtPrice)
		if err != nil {
			return product.Input{}, err
		}
		compareAt = &parsed
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return product.Input{
		Slug:           strings.TrimSpace(req.Slug),
		Name:           strings.TrimSpace(req.Name),
		Description:    strings.TrimSpace(req.Description),
		Price:          price,
		CompareAtPrice: compareAt,
		ImageURL:       strings.TrimSpace(req.ImageURL),
		Gallery:        req.Gallery,
		CategoryID:     req.CategoryID,
		Stock:          req.Stock,
		Active:         active,
	}, nil
}

func listProducts(svc product.Service, logg *logger.Logger, includeInactive bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q := r.URL.Query()
		rows, next, err := svc.List(r.Context(), product.ListInput{
			CategorySlug:    strings.TrimSpace(q.Get("category")),
			Query:           validators.SanitizeString(q.Get("q"), 100),
			IncludeInactive: includeInactive,
			Params:          params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, newProductViews(rows), next)
	}
}

// ProductList is the public catalog listing, newest first.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return listProducts(svc, logg, false)
}

// ProductGet returns a product page with installments, PIX price and rating.
func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathInt(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductDetailView(detail))
	}
}

// AdminProductList includes inactive products.
func AdminProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return listProducts(svc, logg, true)
}

func AdminProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newProductView(created))
	}
}

func AdminProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathInt(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req productRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductView(updated))
	}
}

// AdminProductDelete deactivates the product; orders keep their snapshots.
func AdminProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathInt(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
