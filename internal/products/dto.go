package product

import (
	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name           string               `json:"name" validate:"required"`
	Description    string               `json:"description"`
	Category       string               `json:"category" validate:"required"`
	Price          decimal.Decimal      `json:"price"`
	OriginalPrice  *decimal.Decimal     `json:"originalPrice"`
	Discount       *int                 `json:"discount" validate:"omitempty,gte=0,lte=100"`
	Stock          int                  `json:"stock" validate:"gte=0"`
	Colors         []types.ProductColor `json:"colors"`
	Sizes          []string             `json:"sizes"`
	Images         []string             `json:"images"`
	IsNewArrival   bool                 `json:"isNewArrival"`
	IsFeatured     bool                 `json:"isFeatured"`
	IsSpecialOffer bool                 `json:"isSpecialOffer"`
	CouponCode     *string              `json:"couponCode"`
	SpecialPrice   *decimal.Decimal     `json:"specialPrice"`
	ExtraDiscount  *int                 `json:"extraDiscount" validate:"omitempty,gte=0,lte=100"`
}

// UpdateProductInput holds optional mutation values for a product. Nil fields are left as is.
type UpdateProductInput struct {
	Name           *string               `json:"name"`
	Description    *string               `json:"description"`
	Category       *string               `json:"category"`
	Price          *decimal.Decimal      `json:"price"`
	OriginalPrice  *decimal.Decimal      `json:"originalPrice"`
	Discount       *int                  `json:"discount" validate:"omitempty,gte=0,lte=100"`
	Stock          *int                  `json:"stock" validate:"omitempty,gte=0"`
	Colors         *[]types.ProductColor `json:"colors"`
	Sizes          *[]string             `json:"sizes"`
	Images         *[]string             `json:"images"`
	IsNewArrival   *bool                 `json:"isNewArrival"`
	IsFeatured     *bool                 `json:"isFeatured"`
	IsSpecialOffer *bool                 `json:"isSpecialOffer"`
	CouponCode     *string               `json:"couponCode"`
	SpecialPrice   *decimal.Decimal      `json:"specialPrice"`
	ExtraDiscount  *int                  `json:"extraDiscount" validate:"omitempty,gte=0,lte=100"`
}
