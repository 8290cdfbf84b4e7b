package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/attire-backend/pkg/db/dbtest"
	"github.com/angelmondragon/attire-backend/pkg/db/models"
	"github.com/angelmondragon/attire-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(dbtest.Open(t).DB())
	ctx := context.Background()

	user := &models.User{Name: "Asha", Email: "  Asha@Example.com ", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, enums.UserRoleUser, user.Role)

	byEmail, err := repo.FindByEmail(ctx, "ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "asha@example.com", byEmail.Email)
	assert.NotNil(t, byEmail.Cart)
	assert.Empty(t, byEmail.Cart)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositorySaveCartAndWishlist(t *testing.T) {
	repo := NewRepository(dbtest.Open(t).DB())
	ctx := context.Background()

	user := &models.User{Name: "Ravi", Email: "ravi@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))

	productID := uuid.New()
	cart := []models.StoredCartLine{{ProductID: productID, Size: "M", Color: "Black", Quantity: 2, AddedAt: time.Now().UTC()}}
	require.NoError(t, repo.SaveCart(ctx, user.ID, cart))
	require.NoError(t, repo.SaveWishlist(ctx, user.ID, []uuid.UUID{productID}))

	loaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Cart, 1)
	assert.Equal(t, productID, loaded.Cart[0].ProductID)
	assert.Equal(t, 2, loaded.Cart[0].Quantity)
	assert.Equal(t, []uuid.UUID{productID}, loaded.Wishlist)

	require.NoError(t, repo.SaveCart(ctx, user.ID, nil))
	loaded, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, loaded.Cart)
	assert.Empty(t, loaded.Cart)

	err = repo.SaveCart(ctx, uuid.New(), cart)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
