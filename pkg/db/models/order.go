package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/angelmondragon/attire-backend/pkg/enums"
	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderNumberPrefix leads every generated order number.
const OrderNumberPrefix = "ORD"

// Order is an immutable snapshot of a cart at checkout. Only status, payment
// status and tracking fields change after creation.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber     string                `gorm:"column:order_number;not null;uniqueIndex:orders_order_number_key"`
	UserID          uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json;not null"`
	PaymentMethod   enums.PaymentMethod   `gorm:"column:payment_method;not null"`
	PaymentStatus   enums.PaymentStatus   `gorm:"column:payment_status;not null"`
	Subtotal        decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Tax             decimal.Decimal       `gorm:"column:tax;type:numeric(12,2);not null"`
	ShippingCost    decimal.Decimal       `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	Total           decimal.Decimal       `gorm:"column:total;type:numeric(12,2);not null"`
	Status          enums.OrderStatus     `gorm:"column:order_status;not null"`
	TrackingNumber  *string               `gorm:"column:tracking_number"`
	DeliveredAt     *time.Time            `gorm:"column:delivered_at"`
	CancelledAt     *time.Time            `gorm:"column:cancelled_at"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns identity and always replaces any caller supplied order number.
func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	number, err := NewOrderNumber(time.Now())
	if err != nil {
		return err
	}
	o.OrderNumber = number
	if o.Status == "" {
		o.Status = enums.OrderStatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = enums.PaymentStatusPending
	}
	return nil
}

// NewOrderNumber renders ORD + the last 10 digits of the unix millisecond clock
// + 4 random digits.
func NewOrderNumber(now time.Time) (string, error) {
	suffix, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("order number entropy: %w", err)
	}
	return fmt.Sprintf("%s%010d%04d", OrderNumberPrefix, now.UnixMilli()%10_000_000_000, suffix.Int64()), nil
}

func (o Order) ToDTO() types.Order {
	items := make([]types.OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, item.ToDTO())
	}
	return types.Order{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		ShippingCost:    o.ShippingCost,
		Total:           o.Total,
		Status:          o.Status,
		TrackingNumber:  o.TrackingNumber,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
