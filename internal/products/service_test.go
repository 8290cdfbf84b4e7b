package product

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/attire-backend/pkg/db/dbtest"
	"github.com/angelmondragon/attire-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/attire-backend/pkg/errors"
	"github.com/angelmondragon/attire-backend/pkg/pagination"
	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t).DB()
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func TestDerivedDiscount(t *testing.T) {
	cases := []struct {
		price, original string
		want            int
	}{
		{"750", "1000", 25},
		{"999", "1499", 33},
		{"1000", "1000", 0},
		{"0", "10", 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DerivedDiscount(dec(tc.price), dec(tc.original)), "%s/%s", tc.price, tc.original)
	}
}

func TestCreateProductDerivesDiscount(t *testing.T) {
	svc, _ := newTestService(t)
	code := "  FEST20 "

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:          "Kurta",
		Category:      "women",
		Price:         dec("750"),
		OriginalPrice: decPtr("1000"),
		Stock:         5,
		Colors:        []types.ProductColor{{Name: "Indigo", Value: "#3f51b5"}},
		Sizes:         []string{"S", "M"},
		Images:        []string{"kurta.jpg"},
		CouponCode:    &code,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, created.Discount)
	require.NotNil(t, created.CouponCode)
	assert.Equal(t, "FEST20", *created.CouponCode)

	loaded, err := svc.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"S", "M"}, loaded.Sizes)
	assert.Equal(t, "Indigo", loaded.Colors[0].Name)
	assert.True(t, loaded.Price.Equal(dec("750")))
}

func TestCreateProductRejectsPriceAboveOriginal(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:          "Scarf",
		Category:      "accessories",
		Price:         dec("1200"),
		OriginalPrice: decPtr("1000"),
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateProductKeepsDiscountUnlessPricesChange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Name: "Jeans", Category: "men", Price: dec("800"), OriginalPrice: decPtr("1000"),
	})
	require.NoError(t, err)
	require.Equal(t, 20, created.Discount)

	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{Stock: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Discount)
	assert.Equal(t, 9, updated.Stock)

	updated, err = svc.UpdateProduct(ctx, created.ID, UpdateProductInput{Price: decPtr("500")})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Discount)

	_, err = svc.UpdateProduct(ctx, uuid.New(), UpdateProductInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Cap", Category: "accessories", Price: dec("199")})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProduct(ctx, created.ID))

	_, err = svc.GetProduct(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(svc.DeleteProduct(ctx, created.ID), pkgerrors.CodeNotFound))
}

func TestListProductsFiltersAndPaginates(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seed := []models.Product{
		{Name: "Silk Saree", Category: "women", Price: dec("2500"), IsFeatured: true},
		{Name: "Cotton Saree", Category: "women", Price: dec("1200"), IsNewArrival: true},
		{Name: "Oxford Shirt", Category: "men", Price: dec("900"), IsNewArrival: true},
		{Name: "Linen Shirt", Category: "men", Price: dec("1100"), IsSpecialOffer: true},
	}
	for i := range seed {
		seed[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, conn.Create(&seed[i]).Error)
	}

	page, err := svc.ListProducts(ctx, ListProductsInput{Filters: ProductListFilters{Category: "Women"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Cotton Saree", page.Items[0].Name)

	page, err = svc.ListProducts(ctx, ListProductsInput{Filters: ProductListFilters{Query: "shirt", NewArrival: boolPtr(true)}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Oxford Shirt", page.Items[0].Name)

	first, err := svc.ListProducts(ctx, ListProductsInput{Pagination: pagination.Params{Limit: 3}})
	require.NoError(t, err)
	require.Len(t, first.Items, 3)
	require.NotEmpty(t, first.NextCursor)
	assert.Equal(t, "Linen Shirt", first.Items[0].Name)

	second, err := svc.ListProducts(ctx, ListProductsInput{Pagination: pagination.Params{Limit: 3, Cursor: first.NextCursor}})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "Silk Saree", second.Items[0].Name)
	assert.Empty(t, second.NextCursor)

	_, err = svc.ListProducts(ctx, ListProductsInput{Pagination: pagination.Params{Cursor: "%%%"}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
