package wishlist

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrinebr/loja-api/pkg/db/models"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/pagination"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddItem inserts a wishlist entry and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, userID uuid.UUID, productID int64) error {
	if userID == uuid.Nil || productID <= 0 {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO wishlist_items (user_id, product_id, created_at) VALUES (?, ?, ?) ON CONFLICT (user_id, product_id) DO NOTHING`,
			userID, productID, r.db.NowFunc()).
		Error
}

// RemoveItem deletes the user-product pair if it exists.
func (r *Repository) RemoveItem(ctx context.Context, userID uuid.UUID, productID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).
		Error
}

// ListItems pages the user's saved products, most recently saved first.
func (r *Repository) ListItems(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WishlistItem, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	q := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Preload("Product").
		Where("user_id = ?", userID)
	if cursor != nil {
		lastID, convErr := strconv.ParseInt(cursor.ID, 10, 64)
		if convErr != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, convErr, "invalid cursor")
		}
		q = q.Where("(created_at < ?) OR (created_at = ? AND product_id < ?)", cursor.CreatedAt, cursor.CreatedAt, lastID)
	}

	var rows []models.WishlistItem
	if err := q.Order("created_at DESC").Order("product_id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Trim(rows, params.Limit, func(w models.WishlistItem) pagination.Cursor {
		return pagination.Cursor{CreatedAt: w.CreatedAt, ID: strconv.FormatInt(w.ProductID, 10)}
	})
	return page, next, nil
}
