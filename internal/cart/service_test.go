package cart

import (
	"context"
	"testing"

	product "github.com/angelmondragon/attire-backend/internal/products"
	"github.com/angelmondragon/attire-backend/internal/users"
	"github.com/angelmondragon/attire-backend/pkg/db/dbtest"
	"github.com/angelmondragon/attire-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/attire-backend/pkg/errors"
	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordedMutation struct {
	op  string
	err error
}

type stubRecorder struct {
	calls []recordedMutation
}

func (r *stubRecorder) CartMutation(op string, err error) {
	r.calls = append(r.calls, recordedMutation{op: op, err: err})
}

type fixture struct {
	svc     Service
	conn    *gorm.DB
	user    *models.User
	product *models.Product
	metrics *stubRecorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t).DB()
	userRepo := users.NewRepository(conn)

	user := &models.User{Name: "Tara", Email: "tara@example.com", PasswordHash: "hash"}
	require.NoError(t, userRepo.Create(context.Background(), user))

	item := &models.Product{
		Name:     "Denim Jacket",
		Category: "women",
		Price:    decimal.NewFromInt(1800),
		Stock:    4,
		Sizes:    pq.StringArray{"S", "M"},
		Images:   pq.StringArray{"jacket.jpg"},
	}
	require.NoError(t, conn.Create(item).Error)

	rec := &stubRecorder{}
	svc, err := NewService(ServiceParams{Users: userRepo, Products: product.NewRepository(conn), Metrics: rec})
	require.NoError(t, err)
	return fixture{svc: svc, conn: conn, user: user, product: item, metrics: rec}
}

func TestAddItemMergesByKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user.ID, types.CartMutation{ProductID: f.product.ID, Size: "M", Color: "Blue", Quantity: 1})
	require.NoError(t, err)
	lines, err := f.svc.AddItem(ctx, f.user.ID, types.CartMutation{ProductID: f.product.ID, Size: "M", Color: "Blue", Quantity: 2})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, "Denim Jacket", lines[0].Name)
	assert.Equal(t, "jacket.jpg", lines[0].Image)

	lines, err = f.svc.AddItem(ctx, f.user.ID, types.CartMutation{ProductID: f.product.ID, Size: "S", Color: "Blue"})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[1].Quantity)

	require.Len(t, f.metrics.calls, 3)
	assert.Equal(t, "add", f.metrics.calls[0].op)
	assert.NoError(t, f.metrics.calls[0].err)
}

func TestAddItemRejectsUnknownProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddItem(context.Background(), f.user.ID, types.CartMutation{ProductID: uuid.New(), Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	require.Len(t, f.metrics.calls, 1)
	assert.Error(t, f.metrics.calls[0].err)
}

func TestUpdateQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user.ID, types.CartMutation{ProductID: f.product.ID, Size: "M", Quantity: 1})
	require.NoError(t, err)

	lines, err := f.svc.UpdateQuantity(ctx, f.user.ID, types.CartMutation{ProductID: f.product.ID, Size: "M", Quantity: 5})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	_, err = f.svc.UpdateQuantity(ctx, f.user.ID, types.CartMutation{ProductID: f.product.ID, Size: "M", Quantity: 0})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.UpdateQuantity(ctx, f.user.ID, types.CartMutation{ProductID: f.product.ID, Size: "XL", Quantity: 2})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, itemNotFoundMessage, pkgerrors.As(err).Message())
}

func TestRemoveAndClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user.ID, types.CartMutation{ProductID: f.product.ID, Size: "S"})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, f.user.ID, types.CartMutation{ProductID: f.product.ID, Size: "M"})
	require.NoError(t, err)

	lines, err := f.svc.RemoveItem(ctx, f.user.ID, types.LineKey{ProductID: f.product.ID, Size: "S"})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "M", lines[0].Size)

	require.NoError(t, f.svc.Clear(ctx, f.user.ID))
	lines, err = f.svc.GetCart(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestGetCartSkipsDeletedProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, f.user.ID, types.CartMutation{ProductID: f.product.ID, Size: "S"})
	require.NoError(t, err)
	require.NoError(t, f.conn.Delete(&models.Product{}, "id = ?", f.product.ID).Error)

	lines, err := f.svc.GetCart(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestGetCartUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetCart(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
