package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vitrinebr/loja-api/internal/categories"
	"github.com/vitrinebr/loja-api/internal/checkout"
	"github.com/vitrinebr/loja-api/internal/reviews"
	"github.com/vitrinebr/loja-api/pkg/db"
	"github.com/vitrinebr/loja-api/pkg/db/models"
	"github.com/vitrinebr/loja-api/pkg/enums"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/pagination"
	"github.com/vitrinebr/loja-api/pkg/pricing"
)

const slugConstraint = "products_slug_key"

type repository interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) (*models.Product, error)
	SetActive(ctx context.Context, id int64, active bool) error
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Product, string, error)
}

type categoryResolver interface {
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
}

type ratingSummarizer interface {
	Summary(ctx context.Context, productID int64) (reviews.Summary, error)
}

// ListInput is the public or back-office catalog query.
type ListInput struct {
	CategorySlug    string
	Query           string
	IncludeInactive bool
	Params          pagination.Params
}

// Input carries the writable product fields.
type Input struct {
	Slug           string
	Name           string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	ImageURL       string
	Gallery        []string
	CategoryID     *int64
	Stock          int
	Active         bool
}

// Detail is a product page with its payment conditions.
type Detail struct {
	Product      *models.Product
	Installments int
	Installment  decimal.Decimal
	PixPrice     decimal.Decimal
	Rating       reviews.Summary
}

// InstallmentsLabel renders "10x de R$ 19,99".
func (d Detail) InstallmentsLabel() string {
	label, err := pricing.FormatInstallments(d.Product.Price, d.Installments)
	if err != nil {
		return ""
	}
	return label
}

// Service exposes catalog reads and back-office writes.
type Service interface {
	List(ctx context.Context, input ListInput) ([]models.Product, string, error)
	Get(ctx context.Context, id int64) (*Detail, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, input Input) (*models.Product, error)
	Update(ctx context.Context, id int64, input Input) (*models.Product, error)
	Deactivate(ctx context.Context, id int64) error
}

type service struct {
	repo            repository
	categories      categoryResolver
	ratings         ratingSummarizer
	maxInstallments int
}

// NewService builds the catalog service.
func NewService(repo repository, cats categoryResolver, ratings ratingSummarizer, maxInstallments int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if cats == nil {
		return nil, fmt.Errorf("category resolver required")
	}
	if ratings == nil {
		return nil, fmt.Errorf("rating summarizer required")
	}
	if maxInstallments < 1 {
		return nil, fmt.Errorf("max installments must be at least 1")
	}
	return &service{repo: repo, categories: cats, ratings: ratings, maxInstallments: maxInstallments}, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Product, string, error) {
	filters := ListFilters{Query: input.Query, IncludeInactive: input.IncludeInactive}
	if slug := strings.TrimSpace(input.CategorySlug); slug != "" {
		cat, err := s.categories.GetBySlug(ctx, slug)
		if err != nil {
			return nil, "", err
		}
		filters.CategoryID = &cat.ID
	}

	rows, next, err := s.repo.List(ctx, input.Params, filters)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, "", err
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return rows, next, nil
}

// GetByID returns an active product; inactive ones read as missing.
func (s *service) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "load product")
	}
	if !p.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Detail, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	each, err := pricing.ComputeInstallment(p.Price, s.maxInstallments)
	if err != nil {
		return nil, err
	}
	pix, err := pricing.ApplyPercentageDiscount(p.Price, checkout.DiscountPercent(enums.PaymentMethodPix))
	if err != nil {
		return nil, err
	}
	rating, err := s.ratings.Summary(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Product:      p,
		Installments: s.maxInstallments,
		Installment:  each,
		PixPrice:     pix,
		Rating:       rating,
	}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Product, error) {
	p := &models.Product{}
	if err := apply(p, input); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, mapError(err, "create product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id int64, input Input) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "load product")
	}
	if err := apply(p, input); err != nil {
		return nil, err
	}
	p.Category = nil
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, mapError(err, "update product")
	}
	return updated, nil
}

// Deactivate hides the product from the storefront; orders keep their snapshot.
func (s *service) Deactivate(ctx context.Context, id int64) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return mapError(err, "deactivate product")
	}
	return nil
}

func apply(p *models.Product, input Input) error {
	slug := strings.TrimSpace(input.Slug)
	name := strings.TrimSpace(input.Name)
	details := map[string]any{}
	if !categories.SlugPattern.MatchString(slug) {
		details["slug"] = "must be lowercase letters, digits and hyphens"
	}
	if name == "" {
		details["name"] = "required"
	}
	if input.Price.IsNegative() || input.Price.Exponent() < -2 {
		details["price"] = "must be a non-negative amount with at most two decimals"
	}
	if input.CompareAtPrice != nil && !input.CompareAtPrice.GreaterThan(input.Price) {
		details["compare_at_price"] = "must be greater than price"
	}
	if input.Stock < 0 {
		details["stock"] = "must not be negative"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(details)
	}

	gallery := pq.StringArray{}
	for _, u := range input.Gallery {
		if u = strings.TrimSpace(u); u != "" {
			gallery = append(gallery, u)
		}
	}

	p.Slug = slug
	p.Name = name
	p.Description = strings.TrimSpace(input.Description)
	p.Price = input.Price
	p.CompareAtPrice = input.CompareAtPrice
	p.ImageURL = strings.TrimSpace(input.ImageURL)
	p.Gallery = gallery
	p.CategoryID = input.CategoryID
	p.Stock = input.Stock
	p.IsActive = input.Active
	return nil
}

func mapError(err error, action string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	case db.IsUniqueViolation(err, slugConstraint):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product slug already in use")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
	}
}
