package wishlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vitrinebr/loja-api/pkg/db/models"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/pagination"
)

type repository interface {
	AddItem(ctx context.Context, userID uuid.UUID, productID int64) error
	RemoveItem(ctx context.Context, userID uuid.UUID, productID int64) error
	ListItems(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WishlistItem, string, error)
}

type productLoader interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
}

// Service manages a customer's saved products.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WishlistItem, string, error)
	Add(ctx context.Context, userID uuid.UUID, productID int64) error
	Remove(ctx context.Context, userID uuid.UUID, productID int64) error
}

type service struct {
	repo     repository
	products productLoader
}

// NewService builds the wishlist service.
func NewService(repo repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WishlistItem, string, error) {
	if userID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	rows, next, err := s.repo.ListItems(ctx, userID, params)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, "", err
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wishlist")
	}
	return rows, next, nil
}

// Add saves the product; saving it twice is not an error.
func (s *service) Add(ctx context.Context, userID uuid.UUID, productID int64) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.AddItem(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add wishlist item")
	}
	return nil
}

func (s *service) Remove(ctx context.Context, userID uuid.UUID, productID int64) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove wishlist item")
	}
	return nil
}
