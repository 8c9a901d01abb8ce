package categories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/vitrinebr/loja-api/pkg/db"
	"github.com/vitrinebr/loja-api/pkg/db/models"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
)

const slugConstraint = "categories_slug_key"

// SlugPattern is the accepted shape for category and product slugs.
var SlugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type repository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
	CountProducts(ctx context.Context, id int64) (int64, error)
}

// Input carries the writable category fields.
type Input struct {
	Slug        string
	Name        string
	Description *string
}

// Service exposes category browsing and back-office management.
type Service interface {
	List(ctx context.Context) ([]models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, input Input) (*models.Category, error)
	Update(ctx context.Context, id int64, input Input) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo repository
}

// NewService builds the category service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return rows, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	return c, mapError(err, "load category")
}

func (s *service) Create(ctx context.Context, input Input) (*models.Category, error) {
	c := &models.Category{}
	if err := apply(c, input); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, mapError(err, "create category")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id int64, input Input) (*models.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "load category")
	}
	if err := apply(c, input); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, mapError(err, "update category")
	}
	return updated, nil
}

// Delete removes an empty category; categories still holding products are kept.
func (s *service) Delete(ctx context.Context, id int64) error {
	n, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count category products")
	}
	if n > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has products").
			WithDetails(map[string]any{"products": n})
	}
	return mapError(s.repo.Delete(ctx, id), "delete category")
}

func apply(c *models.Category, input Input) error {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	name := strings.TrimSpace(input.Name)
	if !SlugPattern.MatchString(slug) {
		return pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits and hyphens")
	}
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	c.Slug = slug
	c.Name = name
	c.Description = input.Description
	return nil
}

func mapError(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	case db.IsUniqueViolation(err, slugConstraint):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "category slug already in use")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
	}
}
