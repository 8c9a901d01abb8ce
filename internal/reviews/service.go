package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vitrinebr/loja-api/pkg/db"
	"github.com/vitrinebr/loja-api/pkg/db/models"
	"github.com/vitrinebr/loja-api/pkg/enums"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/pagination"
)

const (
	minRating        = 1
	maxRating        = 5
	maxTitleRunes    = 120
	maxCommentRunes  = 2000
	uniqueConstraint = "reviews_user_product_key"
)

type repository interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProduct(ctx context.Context, productID int64, params pagination.Params) ([]models.Review, string, error)
	Summary(ctx context.Context, productID int64) (int64, float64, error)
}

type productLoader interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
}

// Summary is the rating aggregate shown on product pages.
type Summary struct {
	Average decimal.Decimal
	Count   int64
}

// CreateInput is a buyer's review.
type CreateInput struct {
	Rating  int
	Title   string
	Comment string
}

// Actor identifies who is acting on a review.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Service exposes product reviews.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, productID int64, input CreateInput) (*models.Review, error)
	List(ctx context.Context, productID int64, params pagination.Params) ([]models.Review, string, error)
	Delete(ctx context.Context, actor Actor, reviewID uuid.UUID) error
	Summary(ctx context.Context, productID int64) (Summary, error)
}

type service struct {
	repo     repository
	products productLoader
}

// NewService builds the reviews service.
func NewService(repo repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, productID int64, input CreateInput) (*models.Review, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if input.Rating < minRating || input.Rating > maxRating {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rating must be between %d and %d", minRating, maxRating))
	}
	title := strings.TrimSpace(input.Title)
	comment := strings.TrimSpace(input.Comment)
	if utf8.RuneCountInString(title) > maxTitleRunes || utf8.RuneCountInString(comment) > maxCommentRunes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review text too long").
			WithDetails(map[string]any{"max_title": maxTitleRunes, "max_comment": maxCommentRunes})
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	review, err := s.repo.Create(ctx, &models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    input.Rating,
		Title:     title,
		Comment:   comment,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product already reviewed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}
	return review, nil
}

func (s *service) List(ctx context.Context, productID int64, params pagination.Params) ([]models.Review, string, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, "", err
	}
	rows, next, err := s.repo.ListByProduct(ctx, productID, params)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, "", err
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	return rows, next, nil
}

// Delete removes a review. Only its author or an admin may do so.
func (s *service) Delete(ctx context.Context, actor Actor, reviewID uuid.UUID) error {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
	}
	if review.UserID != actor.UserID && actor.Role != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the author can delete this review")
	}
	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete review")
	}
	return nil
}

func (s *service) Summary(ctx context.Context, productID int64) (Summary, error) {
	count, avg, err := s.repo.Summary(ctx, productID)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize reviews")
	}
	return Summary{Average: decimal.NewFromFloat(avg).Round(2), Count: count}, nil
}

func (s *service) ensureProduct(ctx context.Context, productID int64) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !p.IsActive {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}
