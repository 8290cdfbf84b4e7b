package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/attire-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/attire-backend/pkg/errors"
	"github.com/angelmondragon/attire-backend/pkg/pagination"
	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog reads and admin catalog writes.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*pagination.Page[types.Product], error)
	GetProduct(ctx context.Context, id uuid.UUID) (*types.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*types.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*types.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*pagination.Page[types.Product], error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	rows, err := s.repo.List(ctx, input.Filters, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	dtos := make([]types.Product, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, row.ToDTO())
	}
	page := pagination.Trim(dtos, limit, func(p types.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	return &page, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*types.Product, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := row.ToDTO()
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*types.Product, error) {
	row := &models.Product{
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		Category:       strings.TrimSpace(input.Category),
		Price:          input.Price,
		OriginalPrice:  input.OriginalPrice,
		Stock:          input.Stock,
		Colors:         input.Colors,
		Sizes:          pq.StringArray(input.Sizes),
		Images:         pq.StringArray(input.Images),
		IsNewArrival:   input.IsNewArrival,
		IsFeatured:     input.IsFeatured,
		IsSpecialOffer: input.IsSpecialOffer,
		CouponCode:     normalizeCoupon(input.CouponCode),
		SpecialPrice:   input.SpecialPrice,
		ExtraDiscount:  input.ExtraDiscount,
	}
	if row.Name == "" || row.Category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and category are required")
	}
	if err := applyDiscount(row, input.Discount); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	dto := row.ToDTO()
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*types.Product, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		row.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		row.Description = *input.Description
	}
	if input.Category != nil {
		row.Category = strings.TrimSpace(*input.Category)
	}
	if input.Price != nil {
		row.Price = *input.Price
	}
	if input.OriginalPrice != nil {
		row.OriginalPrice = input.OriginalPrice
	}
	if input.Stock != nil {
		row.Stock = *input.Stock
	}
	if input.Colors != nil {
		row.Colors = *input.Colors
	}
	if input.Sizes != nil {
		row.Sizes = pq.StringArray(*input.Sizes)
	}
	if input.Images != nil {
		row.Images = pq.StringArray(*input.Images)
	}
	if input.IsNewArrival != nil {
		row.IsNewArrival = *input.IsNewArrival
	}
	if input.IsFeatured != nil {
		row.IsFeatured = *input.IsFeatured
	}
	if input.IsSpecialOffer != nil {
		row.IsSpecialOffer = *input.IsSpecialOffer
	}
	if input.CouponCode != nil {
		row.CouponCode = normalizeCoupon(input.CouponCode)
	}
	if input.SpecialPrice != nil {
		row.SpecialPrice = input.SpecialPrice
	}
	if input.ExtraDiscount != nil {
		row.ExtraDiscount = input.ExtraDiscount
	}
	if row.Name == "" || row.Category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and category are required")
	}

	discount := input.Discount
	if discount == nil && input.Price == nil && input.OriginalPrice == nil {
		keep := row.Discount
		discount = &keep
	}
	if err := applyDiscount(row, discount); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	dto := row.ToDTO()
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return row, nil
}

// applyDiscount validates the price fields and sets the discount percentage,
// deriving it from the original price when none is supplied.
func applyDiscount(row *models.Product, supplied *int) error {
	if row.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if row.SpecialPrice != nil && row.SpecialPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "specialPrice must be non-negative")
	}
	if row.OriginalPrice != nil {
		if !row.OriginalPrice.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "originalPrice must be positive")
		}
		if row.Price.GreaterThan(*row.OriginalPrice) {
			return pkgerrors.New(pkgerrors.CodeValidation, "price cannot exceed originalPrice")
		}
	}

	switch {
	case supplied != nil:
		if *supplied < 0 || *supplied > 100 {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
		}
		row.Discount = *supplied
	case row.OriginalPrice != nil:
		row.Discount = DerivedDiscount(row.Price, *row.OriginalPrice)
	default:
		row.Discount = 0
	}
	return nil
}

// DerivedDiscount is round(100 × (original − price) / original).
func DerivedDiscount(price, original decimal.Decimal) int {
	if !original.IsPositive() {
		return 0
	}
	return int(original.Sub(price).Mul(decimal.NewFromInt(100)).Div(original).Round(0).IntPart())
}

func normalizeCoupon(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
