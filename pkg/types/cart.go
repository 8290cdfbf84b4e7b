package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineKey identifies a cart line. Two lines with equal keys are the same line.
type LineKey struct {
	ProductID uuid.UUID `json:"productId"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
}

// CartLine is a cart entry carrying the product fields needed for display and pricing.
type CartLine struct {
	ProductID     uuid.UUID        `json:"productId"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Image         string           `json:"image"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Discount      int              `json:"discount"`
	CouponCode    string           `json:"couponCode,omitempty"`
	SpecialPrice  *decimal.Decimal `json:"specialPrice,omitempty"`
	ExtraDiscount int              `json:"extraDiscount,omitempty"`
	Stock         int              `json:"stock"`
	Size          string           `json:"size"`
	Color         string           `json:"color"`
	Quantity      int              `json:"quantity"`
}

// Key returns the line identity.
func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

// LineTotal is price × quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// NewCartLine snapshots product display and pricing fields into a line.
func NewCartLine(p Product, size, color string, quantity int) CartLine {
	line := CartLine{
		ProductID:     p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Image:         p.PrimaryImage(),
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Discount:      p.Discount,
		SpecialPrice:  p.SpecialPrice,
		Stock:         p.Stock,
		Size:          size,
		Color:         color,
		Quantity:      quantity,
	}
	if p.CouponCode != nil {
		line.CouponCode = *p.CouponCode
	}
	if p.ExtraDiscount != nil {
		line.ExtraDiscount = *p.ExtraDiscount
	}
	return line
}

// WishlistItem is a wishlist entry. Membership is keyed by ProductID only.
type WishlistItem struct {
	ProductID     uuid.UUID        `json:"productId"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Image         string           `json:"image"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Discount      int              `json:"discount"`
	Stock         int              `json:"stock"`
	InStock       bool             `json:"inStock"`
}

func NewWishlistItem(p Product) WishlistItem {
	return WishlistItem{
		ProductID:     p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Image:         p.PrimaryImage(),
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Discount:      p.Discount,
		Stock:         p.Stock,
		InStock:       p.Stock > 0,
	}
}

// CartMutation is the request body shared by the cart add, update and remove routes.
type CartMutation struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity"`
}
