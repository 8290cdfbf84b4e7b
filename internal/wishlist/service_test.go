package wishlist

import (
	"context"
	"testing"

	product "github.com/angelmondragon/attire-backend/internal/products"
	"github.com/angelmondragon/attire-backend/internal/users"
	"github.com/angelmondragon/attire-backend/pkg/db/dbtest"
	"github.com/angelmondragon/attire-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/attire-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistAddIsIdempotentAndRemoveDrops(t *testing.T) {
	conn := dbtest.Open(t).DB()
	ctx := context.Background()
	userRepo := users.NewRepository(conn)

	user := &models.User{Name: "Ira", Email: "ira@example.com", PasswordHash: "hash"}
	require.NoError(t, userRepo.Create(ctx, user))
	inStock := &models.Product{Name: "Tote", Category: "accessories", Price: decimal.NewFromInt(600), Stock: 2}
	soldOut := &models.Product{Name: "Clutch", Category: "accessories", Price: decimal.NewFromInt(900)}
	require.NoError(t, conn.Create(inStock).Error)
	require.NoError(t, conn.Create(soldOut).Error)

	svc, err := NewService(ServiceParams{Users: userRepo, Products: product.NewRepository(conn)})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, user.ID, inStock.ID)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, user.ID, inStock.ID)
	require.NoError(t, err)
	items, err := svc.AddItem(ctx, user.ID, soldOut.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].InStock)
	assert.False(t, items[1].InStock)

	items, err = svc.RemoveItem(ctx, user.ID, inStock.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, soldOut.ID, items[0].ProductID)

	items, err = svc.RemoveItem(ctx, user.ID, uuid.New())
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.AddItem(ctx, user.ID, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	got, err := svc.GetWishlist(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
