package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vitrinebr/loja-api/pkg/enums"
	"github.com/vitrinebr/loja-api/pkg/types"
)

// Order is a submitted checkout. Amounts keep full precision; the payable
// value sent to the gateway is Total rounded to cents.
type Order struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	UserID         uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index:orders_user_id_idx"`
	Status         enums.OrderStatus    `gorm:"column:status;not null;default:pending;index:orders_status_idx"`
	PaymentMethod  enums.PaymentMethod  `gorm:"column:payment_method;not null"`
	ShippingMethod enums.ShippingMethod `gorm:"column:shipping_method;not null"`
	Installments   int                  `gorm:"column:installments;not null;default:1"`

	BuyerName       string        `gorm:"column:buyer_name;not null"`
	BuyerEmail      string        `gorm:"column:buyer_email;not null"`
	BuyerCPF        string        `gorm:"column:buyer_cpf;not null"`
	BuyerPhone      *string       `gorm:"column:buyer_phone"`
	ShippingAddress types.Address `gorm:"column:shipping_address;type:jsonb;not null"`

	Subtotal     decimal.Decimal `gorm:"column:subtotal;type:numeric(14,4);not null"`
	ShippingCost decimal.Decimal `gorm:"column:shipping_cost;type:numeric(14,4);not null"`
	Discount     decimal.Decimal `gorm:"column:discount;type:numeric(14,4);not null"`
	Total        decimal.Decimal `gorm:"column:total;type:numeric(14,4);not null"`

	PaymentKind      *string `gorm:"column:payment_kind"`
	PaymentReference *string `gorm:"column:payment_reference"`
	PaymentURL       *string `gorm:"column:payment_url"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is the cart line snapshot captured at submission.
type OrderItem struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index:order_items_order_id_idx"`
	ProductID int64           `gorm:"column:product_id;not null"`
	Name      string          `gorm:"column:name;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	ImageURL  string          `gorm:"column:image_url;not null;default:''"`
}
