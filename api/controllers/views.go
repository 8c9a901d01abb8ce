package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vitrinebr/loja-api/internal/cart"
	"github.com/vitrinebr/loja-api/internal/checkout"
	product "github.com/vitrinebr/loja-api/internal/products"
	"github.com/vitrinebr/loja-api/pkg/db/models"
	"github.com/vitrinebr/loja-api/pkg/enums"
	"github.com/vitrinebr/loja-api/pkg/pricing"
	"github.com/vitrinebr/loja-api/pkg/types"
)

// money pairs the exact machine value with its pt-BR display string.
type money struct {
	Value   string `json:"value"`
	Display string `json:"display"`
}

func newMoney(amount decimal.Decimal) money {
	return money{Value: pricing.ExactString(amount), Display: pricing.FormatCurrency(amount)}
}

func optionalMoney(amount *decimal.Decimal) *money {
	if amount == nil {
		return nil
	}
	m := newMoney(*amount)
	return &m
}

type categoryView struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newCategoryView(c *models.Category) categoryView {
	return categoryView{ID: c.ID, Slug: c.Slug, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}
}

type productView struct {
	ID             int64         `json:"id"`
	Slug           string        `json:"slug"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Price          money         `json:"price"`
	CompareAtPrice *money        `json:"compare_at_price,omitempty"`
	ImageURL       string        `json:"image_url"`
	Gallery        []string      `json:"gallery"`
	Category       *categoryView `json:"category,omitempty"`
	Stock          int           `json:"stock"`
	Active         bool          `json:"active"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func newProductView(p *models.Product) productView {
	view := productView{
		ID:             p.ID,
		Slug:           p.Slug,
		Name:           p.Name,
		Description:    p.Description,
		Price:          newMoney(p.Price),
		CompareAtPrice: optionalMoney(p.CompareAtPrice),
		ImageURL:       p.ImageURL,
		Gallery:        []string(p.Gallery),
		Stock:          p.Stock,
		Active:         p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if view.Gallery == nil {
		view.Gallery = []string{}
	}
	if p.Category != nil {
		c := newCategoryView(p.Category)
		view.Category = &c
	}
	return view
}

func newProductViews(rows []models.Product) []productView {
	out := make([]productView, 0, len(rows))
	for i := range rows {
		out = append(out, newProductView(&rows[i]))
	}
	return out
}

type installmentView struct {
	Count  int    `json:"count"`
	Amount money  `json:"amount"`
	Label  string `json:"label"`
}

type ratingView struct {
	Average string `json:"average"`
	Count   int64  `json:"count"`
}

type productDetailView struct {
	productView
	Installments installmentView `json:"installments"`
	PixPrice     money           `json:"pix_price"`
	Rating       ratingView      `json:"rating"`
}

func newProductDetailView(d *product.Detail) productDetailView {
	return productDetailView{
		productView: newProductView(d.Product),
		Installments: installmentView{
			Count:  d.Installments,
			Amount: newMoney(d.Installment),
			Label:  d.InstallmentsLabel(),
		},
		PixPrice: newMoney(d.PixPrice),
		Rating:   ratingView{Average: d.Rating.Average.StringFixed(2), Count: d.Rating.Count},
	}
}

type cartItemView struct {
	ProductID        int64  `json:"product_id"`
	Name             string `json:"name"`
	ImageURL         string `json:"image_url"`
	ShortDescription string `json:"short_description"`
	UnitPrice        money  `json:"unit_price"`
	Quantity         int    `json:"quantity"`
	LineTotal        money  `json:"line_total"`
}

func newCartItemViews(items []cart.Item) []cartItemView {
	out := make([]cartItemView, 0, len(items))
	for _, it := range items {
		out = append(out, cartItemView{
			ProductID:        it.ProductID,
			Name:             it.Name,
			ImageURL:         it.ImageURL,
			ShortDescription: it.ShortDescription(cart.ShortDescriptionLimit),
			UnitPrice:        newMoney(it.UnitPrice),
			Quantity:         it.Quantity,
			LineTotal:        newMoney(it.LineTotal()),
		})
	}
	return out
}

type cartView struct {
	Items           []cartItemView `json:"items"`
	Count           int            `json:"count"`
	Subtotal        string         `json:"subtotal"`
	SubtotalDisplay string         `json:"subtotal_display"`
}

func newCartView(store *cart.Store) cartView {
	if store == nil {
		store = cart.NewStore()
	}
	total := store.Total()
	return cartView{
		Items:           newCartItemViews(store.Items()),
		Count:           store.Count(),
		Subtotal:        pricing.ExactString(total),
		SubtotalDisplay: pricing.FormatCurrency(total),
	}
}

type shippingOptionView struct {
	Method  enums.ShippingMethod `json:"method"`
	Label   string               `json:"label"`
	Price   money                `json:"price"`
	MinDays int                  `json:"min_days"`
	MaxDays int                  `json:"max_days"`
}

func newShippingOptionView(opt checkout.ShippingOption) shippingOptionView {
	return shippingOptionView{
		Method:  opt.Method,
		Label:   opt.Label,
		Price:   newMoney(opt.Price),
		MinDays: opt.MinDays,
		MaxDays: opt.MaxDays,
	}
}

type paymentOptionView struct {
	Method          enums.PaymentMethod `json:"method"`
	Label           string              `json:"label"`
	DiscountPercent string              `json:"discount_percent"`
	Installments    bool                `json:"installments"`
}

type totalsView struct {
	Items           []cartItemView      `json:"items"`
	Shipping        shippingOptionView  `json:"shipping"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	DiscountPercent string              `json:"discount_percent"`
	Subtotal        money               `json:"subtotal"`
	ShippingCost    money               `json:"shipping_cost"`
	Discount        money               `json:"discount"`
	Total           money               `json:"total"`
	Payable         string              `json:"payable"`
}

func newTotalsView(t checkout.Totals) totalsView {
	return totalsView{
		Items:           newCartItemViews(t.Items),
		Shipping:        newShippingOptionView(t.Shipping),
		PaymentMethod:   t.PaymentMethod,
		DiscountPercent: t.DiscountPercent.String(),
		Subtotal:        newMoney(t.Subtotal),
		ShippingCost:    newMoney(t.ShippingCost),
		Discount:        newMoney(t.Discount),
		Total:           newMoney(t.Total),
		Payable:         t.Payable().StringFixed(2),
	}
}

type orderItemView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	UnitPrice money  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal money  `json:"line_total"`
}

type orderView struct {
	ID               uuid.UUID            `json:"id"`
	UserID           uuid.UUID            `json:"user_id"`
	Status           enums.OrderStatus    `json:"status"`
	PaymentMethod    enums.PaymentMethod  `json:"payment_method"`
	ShippingMethod   enums.ShippingMethod `json:"shipping_method"`
	Installments     int                  `json:"installments"`
	BuyerName        string               `json:"buyer_name"`
	BuyerEmail       string               `json:"buyer_email"`
	ShippingAddress  types.Address        `json:"shipping_address"`
	Items            []orderItemView      `json:"items"`
	Subtotal         money                `json:"subtotal"`
	ShippingCost     money                `json:"shipping_cost"`
	Discount         money                `json:"discount"`
	Total            money                `json:"total"`
	PaymentKind      *string              `json:"payment_kind,omitempty"`
	PaymentReference *string              `json:"payment_reference,omitempty"`
	PaymentURL       *string              `json:"payment_url,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

func newOrderView(o *models.Order) orderView {
	items := make([]orderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemView{
			ProductID: it.ProductID,
			Name:      it.Name,
			ImageURL:  it.ImageURL,
			UnitPrice: newMoney(it.UnitPrice),
			Quantity:  it.Quantity,
			LineTotal: newMoney(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))),
		})
	}
	return orderView{
		ID:               o.ID,
		UserID:           o.UserID,
		Status:           o.Status,
		PaymentMethod:    o.PaymentMethod,
		ShippingMethod:   o.ShippingMethod,
		Installments:     o.Installments,
		BuyerName:        o.BuyerName,
		BuyerEmail:       o.BuyerEmail,
		ShippingAddress:  o.ShippingAddress,
		Items:            items,
		Subtotal:         newMoney(o.Subtotal),
		ShippingCost:     newMoney(o.ShippingCost),
		Discount:         newMoney(o.Discount),
		Total:            newMoney(o.Total),
		PaymentKind:      o.PaymentKind,
		PaymentReference: o.PaymentReference,
		PaymentURL:       o.PaymentURL,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func newOrderViews(rows []models.Order) []orderView {
	out := make([]orderView, 0, len(rows))
	for i := range rows {
		out = append(out, newOrderView(&rows[i]))
	}
	return out
}

type reviewView struct {
	ID         uuid.UUID `json:"id"`
	ProductID  int64     `json:"product_id"`
	UserID     uuid.UUID `json:"user_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Rating     int       `json:"rating"`
	Title      string    `json:"title"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

func newReviewView(r *models.Review) reviewView {
	view := reviewView{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Title:     r.Title,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if r.User != nil {
		view.AuthorName = r.User.Name
	}
	return view
}

type wishlistItemView struct {
	ProductID int64        `json:"product_id"`
	Product   *productView `json:"product,omitempty"`
	AddedAt   time.Time    `json:"added_at"`
}

func newWishlistItemView(it *models.WishlistItem) wishlistItemView {
	view := wishlistItemView{ProductID: it.ProductID, AddedAt: it.CreatedAt}
	if it.Product != nil {
		p := newProductView(it.Product)
		view.Product = &p
	}
	return view
}
