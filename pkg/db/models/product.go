package models

import (
	"time"

	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog listing.
type Product struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name           string               `gorm:"column:name;not null"`
	Description    string               `gorm:"column:description;not null;default:''"`
	Category       string               `gorm:"column:category;not null;index"`
	Price          decimal.Decimal      `gorm:"column:price;type:numeric(12,2);not null"`
	OriginalPrice  *decimal.Decimal     `gorm:"column:original_price;type:numeric(12,2)"`
	Discount       int                  `gorm:"column:discount;not null;default:0"`
	Stock          int                  `gorm:"column:stock;not null;default:0"`
	Sold           int                  `gorm:"column:sold;not null;default:0"`
	Colors         []types.ProductColor `gorm:"column:colors;type:jsonb;serializer:json;not null"`
	Sizes          pq.StringArray       `gorm:"column:sizes;type:text[];not null"`
	Images         pq.StringArray       `gorm:"column:images;type:text[];not null"`
	IsNewArrival   bool                 `gorm:"column:is_new_arrival;not null;default:false"`
	IsFeatured     bool                 `gorm:"column:is_featured;not null;default:false"`
	IsSpecialOffer bool                 `gorm:"column:is_special_offer;not null;default:false"`
	CouponCode     *string              `gorm:"column:coupon_code"`
	SpecialPrice   *decimal.Decimal     `gorm:"column:special_price;type:numeric(12,2)"`
	ExtraDiscount  *int                 `gorm:"column:extra_discount"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Colors == nil {
		p.Colors = []types.ProductColor{}
	}
	if p.Sizes == nil {
		p.Sizes = pq.StringArray{}
	}
	if p.Images == nil {
		p.Images = pq.StringArray{}
	}
	return nil
}

// ToDTO converts the row into the public catalog shape.
func (p Product) ToDTO() types.Product {
	colors := p.Colors
	if colors == nil {
		colors = []types.ProductColor{}
	}
	return types.Product{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Category:       p.Category,
		Price:          p.Price,
		OriginalPrice:  p.OriginalPrice,
		Discount:       p.Discount,
		Stock:          p.Stock,
		Sold:           p.Sold,
		Colors:         colors,
		Sizes:          append([]string{}, p.Sizes...),
		Images:         append([]string{}, p.Images...),
		IsNewArrival:   p.IsNewArrival,
		IsFeatured:     p.IsFeatured,
		IsSpecialOffer: p.IsSpecialOffer,
		CouponCode:     p.CouponCode,
		SpecialPrice:   p.SpecialPrice,
		ExtraDiscount:  p.ExtraDiscount,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
