package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductColor is one color variant: a display name and a CSS color value.
type ProductColor struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Product is the public catalog representation.
type Product struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	Category       string           `json:"category"`
	Price          decimal.Decimal  `json:"price"`
	OriginalPrice  *decimal.Decimal `json:"originalPrice,omitempty"`
	Discount       int              `json:"discount"`
	Stock          int              `json:"stock"`
	Sold           int              `json:"sold"`
	Colors         []ProductColor   `json:"colors"`
	Sizes          []string         `json:"sizes"`
	Images         []string         `json:"images"`
	IsNewArrival   bool             `json:"isNewArrival"`
	IsFeatured     bool             `json:"isFeatured"`
	IsSpecialOffer bool             `json:"isSpecialOffer"`
	CouponCode     *string          `json:"couponCode,omitempty"`
	SpecialPrice   *decimal.Decimal `json:"specialPrice,omitempty"`
	ExtraDiscount  *int             `json:"extraDiscount,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// PrimaryImage returns the first image reference or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// DefaultSize resolves an empty size to the first listed one.
func (p Product) DefaultSize(size string) string {
	if size == "" && len(p.Sizes) > 0 {
		return p.Sizes[0]
	}
	return size
}

// DefaultColor resolves an empty color to the first listed variant name.
func (p Product) DefaultColor(color string) string {
	if color == "" && len(p.Colors) > 0 {
		return p.Colors[0].Name
	}
	return color
}
