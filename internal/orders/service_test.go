package orders

import (
	"context"
	"regexp"
	"testing"
	"time"

	products "github.com/angelmondragon/attire-backend/internal/products"
	"github.com/angelmondragon/attire-backend/internal/users"
	"github.com/angelmondragon/attire-backend/pkg/db/dbtest"
	"github.com/angelmondragon/attire-backend/pkg/db/models"
	"github.com/angelmondragon/attire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/attire-backend/pkg/errors"
	"github.com/angelmondragon/attire-backend/pkg/pagination"
	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var orderNumberPattern = regexp.MustCompile(`^ORD\d{14}$`)

type stubOrderRecorder struct {
	methods []string
	totals  []decimal.Decimal
}

func (r *stubOrderRecorder) OrderCreated(method string, total decimal.Decimal) {
	r.methods = append(r.methods, method)
	r.totals = append(r.totals, total)
}

type harness struct {
	svc     Service
	conn    *gorm.DB
	users   *users.Repository
	metrics *stubOrderRecorder
}

func newHarness(t *testing.T) harness {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()
	rec := &stubOrderRecorder{}
	svc, err := NewService(ServiceParams{
		Repo: NewRepository(conn),
		Tx:   client,
		Carts: func(tx *gorm.DB) CartStore {
			return users.NewRepository(tx)
		},
		Metrics: rec,
	})
	require.NoError(t, err)
	return harness{svc: svc, conn: conn, users: users.NewRepository(conn), metrics: rec}
}

func (h harness) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Shopper",
		Email:        email,
		PasswordHash: "hash",
		Cart: []models.StoredCartLine{
			{ProductID: uuid.New(), Size: "M", Color: "Red", Quantity: 2, AddedAt: time.Now().UTC()},
		},
	}
	require.NoError(t, h.users.Create(context.Background(), user))
	return user
}

func validAddress() *types.ShippingAddress {
	return &types.ShippingAddress{
		FullName:   "Asha Rao",
		Phone:      "9999999999",
		Address:    "12 MG Road",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560001",
		Country:    "India",
	}
}

func placeRequest() types.PlaceOrderRequest {
	return types.PlaceOrderRequest{
		Items: []types.OrderItemInput{
			{ProductID: uuid.New(), Name: "Kurta", Image: "k.jpg", Price: decimal.NewFromInt(1000), Quantity: 2, Size: "M", Color: "Red"},
			{ProductID: uuid.New(), Name: "Scarf", Price: decimal.NewFromInt(300), Quantity: 1},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   enums.PaymentMethodCOD,
		Subtotal:        decimal.NewFromInt(2300),
		Tax:             decimal.Zero,
		ShippingCost:    decimal.Zero,
		Total:           decimal.NewFromInt(2300),
	}
}

func TestCreateOrderSnapshotsAndClearsCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "buyer@example.com")

	order, err := h.svc.CreateOrder(ctx, user.ID, placeRequest())
	require.NoError(t, err)
	assert.Regexp(t, orderNumberPattern, order.OrderNumber)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Kurta", order.Items[0].Name)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(2300)))

	reloaded, err := h.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Cart)

	stored, err := h.svc.GetOrder(ctx, user.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Scarf", stored.Items[1].Name)
	assert.Equal(t, "Bengaluru", stored.ShippingAddress.City)

	assert.Equal(t, []string{"cod"}, h.metrics.methods)
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "empty@example.com")

	req := placeRequest()
	req.Items = nil
	_, err := h.svc.CreateOrder(ctx, user.ID, req)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, emptyOrderMessage, pkgerrors.As(err).Message())

	var count int64
	require.NoError(t, h.conn.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)

	reloaded, err := h.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Cart, 1)
	assert.Empty(t, h.metrics.methods)
}

func TestCreateOrderValidation(t *testing.T) {
	h := newHarness(t)
	user := h.createUser(t, "invalid@example.com")

	cases := map[string]func(*types.PlaceOrderRequest){
		"zero quantity":    func(r *types.PlaceOrderRequest) { r.Items[0].Quantity = 0 },
		"negative price":   func(r *types.PlaceOrderRequest) { r.Items[0].Price = decimal.NewFromInt(-1) },
		"missing address":  func(r *types.PlaceOrderRequest) { r.ShippingAddress = nil },
		"partial address":  func(r *types.PlaceOrderRequest) { r.ShippingAddress.City = " " },
		"unknown method":   func(r *types.PlaceOrderRequest) { r.PaymentMethod = "paypal" },
		"negative total":   func(r *types.PlaceOrderRequest) { r.Total = decimal.NewFromInt(-5) },
		"missing product":  func(r *types.PlaceOrderRequest) { r.Items[1].ProductID = uuid.Nil },
		"missing itemname": func(r *types.PlaceOrderRequest) { r.Items[1].Name = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := placeRequest()
			mutate(&req)
			_, err := h.svc.CreateOrder(context.Background(), user.ID, req)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestDoubleSubmitCreatesTwoOrders(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "twice@example.com")

	first, err := h.svc.CreateOrder(ctx, user.ID, placeRequest())
	require.NoError(t, err)
	second, err := h.svc.CreateOrder(ctx, user.ID, placeRequest())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)
}

func TestGetOrderOwnership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.createUser(t, "owner@example.com")
	other := h.createUser(t, "other@example.com")

	order, err := h.svc.CreateOrder(ctx, owner.ID, placeRequest())
	require.NoError(t, err)

	_, err = h.svc.GetOrder(ctx, other.ID, order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = h.svc.GetOrder(ctx, owner.ID, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListOrdersNewestFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "lister@example.com")
	other := h.createUser(t, "someone@example.com")

	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		order, err := h.svc.CreateOrder(ctx, user.ID, placeRequest())
		require.NoError(t, err)
		require.NoError(t, h.conn.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("created_at", base.Add(time.Duration(i)*time.Hour)).Error)
		ids = append(ids, order.ID)
	}
	_, err := h.svc.CreateOrder(ctx, other.ID, placeRequest())
	require.NoError(t, err)

	first, err := h.svc.ListOrders(ctx, user.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, ids[2], first.Items[0].ID)
	assert.Equal(t, ids[1], first.Items[1].ID)
	require.NotEmpty(t, first.NextCursor)
	assert.Len(t, first.Items[0].Items, 2)

	second, err := h.svc.ListOrders(ctx, user.ID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, ids[0], second.Items[0].ID)
	assert.Empty(t, second.NextCursor)

	all, err := h.svc.ListAllOrders(ctx, ListAllInput{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 4)
}

func TestUpdateStatusTransitions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "status@example.com")

	order, err := h.svc.CreateOrder(ctx, user.ID, placeRequest())
	require.NoError(t, err)

	tracking := "TRK-42"
	shipped, err := h.svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: enums.OrderStatusShipped, TrackingNumber: &tracking})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, shipped.Status)
	require.NotNil(t, shipped.TrackingNumber)
	assert.Equal(t, "TRK-42", *shipped.TrackingNumber)
	assert.Nil(t, shipped.DeliveredAt)

	delivered, err := h.svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: enums.OrderStatusDelivered})
	require.NoError(t, err)
	assert.NotNil(t, delivered.DeliveredAt)
	assert.Equal(t, "TRK-42", *delivered.TrackingNumber)

	_, err = h.svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: enums.OrderStatusCancelled})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = h.svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: "lost"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = h.svc.UpdateStatus(ctx, uuid.New(), UpdateStatusInput{Status: enums.OrderStatusShipped})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	filter := enums.OrderStatusDelivered
	page, err := h.svc.ListAllOrders(ctx, ListAllInput{Status: &filter})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestCancelStampsTimestampAndPaymentUpdate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "cancel@example.com")

	order, err := h.svc.CreateOrder(ctx, user.ID, placeRequest())
	require.NoError(t, err)

	cancelled, err := h.svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: enums.OrderStatusCancelled})
	require.NoError(t, err)
	assert.NotNil(t, cancelled.CancelledAt)

	paid, err := h.svc.UpdatePaymentStatus(ctx, order.ID, UpdatePaymentInput{PaymentStatus: enums.PaymentStatusRefunded})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusRefunded, paid.PaymentStatus)

	_, err = h.svc.UpdatePaymentStatus(ctx, order.ID, UpdatePaymentInput{PaymentStatus: "lost"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestOrderItemsKeepPriceAfterProductChanges(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "snapshot@example.com")
	catalog := products.NewRepository(h.conn)
	kurta := &models.Product{Name: "Kurta", Category: "men", Price: decimal.NewFromInt(1000)}
	require.NoError(t, catalog.Create(ctx, kurta))

	req := placeRequest()
	req.Items = req.Items[:1]
	req.Items[0].ProductID = kurta.ID
	req.Subtotal = decimal.NewFromInt(2000)
	req.Total = decimal.NewFromInt(2000)
	order, err := h.svc.CreateOrder(ctx, user.ID, req)
	require.NoError(t, err)

	kurta.Name = "Kurta (2026)"
	kurta.Price = decimal.NewFromInt(1500)
	require.NoError(t, catalog.Update(ctx, kurta))

	stored, err := h.svc.GetOrder(ctx, user.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Kurta", stored.Items[0].Name)
	assert.True(t, stored.Items[0].Price.Equal(decimal.NewFromInt(1000)), stored.Items[0].Price.String())
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(2000)))
}
