package cart

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vitrinebr/loja-api/pkg/db/models"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
)

// MaxLineQuantity bounds the quantity a single line may carry.
const MaxLineQuantity = 99

type productLoader interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
}

// Service exposes cart operations scoped to a cart session.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Store, error)
	AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (*Store, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (*Store, error)
	RemoveItem(ctx context.Context, sessionID string, productID int64) (*Store, error)
	Clear(ctx context.Context, sessionID string) error
}

type service struct {
	repo     CartRepository
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*Store, error) {
	return s.repo.Load(ctx, sessionID)
}

// AddItem snapshots the product from the catalog and merges it into the cart.
func (s *service) AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (*Store, error) {
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product == nil || !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	line := Item{
		ProductID:   product.ID,
		Name:        product.Name,
		UnitPrice:   product.Price,
		Quantity:    quantity,
		ImageURL:    product.ImageURL,
		Description: product.Description,
	}
	return s.repo.Update(ctx, sessionID, func(store *Store) (bool, error) {
		store.Add(line)
		return true, checkLineLimits(store, productID)
	})
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (*Store, error) {
	return s.repo.Update(ctx, sessionID, func(store *Store) (bool, error) {
		if !store.UpdateQuantity(productID, quantity) {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
		}
		return true, checkLineLimits(store, productID)
	})
}

// RemoveItem drops the product; removing an absent product leaves the cart as is.
func (s *service) RemoveItem(ctx context.Context, sessionID string, productID int64) (*Store, error) {
	return s.repo.Update(ctx, sessionID, func(store *Store) (bool, error) {
		return store.Remove(productID), nil
	})
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	return s.repo.Delete(ctx, sessionID)
}

func checkLineLimits(store *Store, productID int64) error {
	for _, it := range store.Items() {
		if it.ProductID == productID && it.Quantity > MaxLineQuantity {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity cannot exceed %d", MaxLineQuantity)).
				WithDetails(map[string]any{"product_id": productID, "max": MaxLineQuantity})
		}
	}
	return nil
}
