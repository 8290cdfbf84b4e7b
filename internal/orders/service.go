package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/attire-backend/pkg/db/models"
	"github.com/angelmondragon/attire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/attire-backend/pkg/errors"
	"github.com/angelmondragon/attire-backend/pkg/pagination"
	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const emptyOrderMessage = "order must contain at least one item"

// Service materializes carts into orders and serves order reads and admin transitions.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input types.PlaceOrderRequest) (*types.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[types.Order], error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*types.Order, error)
	ListAllOrders(ctx context.Context, input ListAllInput) (*pagination.Page[types.Order], error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*types.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, input UpdatePaymentInput) (*types.Order, error)
}

// ServiceParams groups dependencies for the order service. Carts rebinds the
// user cart store onto the order transaction.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Carts   func(tx *gorm.DB) CartStore
	Metrics orderRecorder
}

type service struct {
	repo    Repository
	tx      txRunner
	carts   func(tx *gorm.DB) CartStore
	metrics orderRecorder
	now     func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		carts:   params.Carts,
		metrics: params.Metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// CreateOrder persists the submitted snapshot and empties the owner's cart in
// one transaction. Amounts are stored as submitted.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, input types.PlaceOrderRequest) (*types.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validatePlaceOrder(input); err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:          userID,
		ShippingAddress: *input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   enums.PaymentStatusPending,
		Subtotal:        input.Subtotal,
		Tax:             input.Tax,
		ShippingCost:    input.ShippingCost,
		Total:           input.Total,
		Status:          enums.OrderStatusPending,
	}
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      strings.TrimSpace(item.Name),
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			if errors.Is(err, ErrOrderNumberExhausted) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number unavailable, retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		if err := repo.CreateItems(ctx, order.ID, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order items")
		}
		if err := s.carts(tx).SaveCart(ctx, userID, []models.StoredCartLine{}); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrderCreated(order.PaymentMethod.String(), order.Total)
	}
	order.Items = items
	dto := order.ToDTO()
	return &dto, nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[types.Order], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByUser(ctx, userID, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return toPage(rows, limit), nil
}

// GetOrder returns an order owned by the caller.
func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*types.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to view this order")
	}
	dto := order.ToDTO()
	return &dto, nil
}

func (s *service) ListAllOrders(ctx context.Context, input ListAllInput) (*pagination.Page[types.Order], error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	rows, err := s.repo.ListAll(ctx, input.Status, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return toPage(rows, limit), nil
}

// UpdateStatus applies a fulfillment transition. Delivered and cancelled
// orders are final; entering either state stamps its timestamp.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*types.Order, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() && order.Status != input.Status {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is already %s", order.Status).
			WithDetails(map[string]any{"current": order.Status, "requested": input.Status})
	}

	updates := map[string]any{"order_status": input.Status, "updated_at": s.now()}
	if input.TrackingNumber != nil {
		tracking := strings.TrimSpace(*input.TrackingNumber)
		if tracking == "" {
			updates["tracking_number"] = nil
		} else {
			updates["tracking_number"] = tracking
		}
	}
	switch {
	case input.Status == enums.OrderStatusDelivered && order.DeliveredAt == nil:
		updates["delivered_at"] = s.now()
	case input.Status == enums.OrderStatusCancelled && order.CancelledAt == nil:
		updates["cancelled_at"] = s.now()
	}

	return s.apply(ctx, orderID, updates)
}

func (s *service) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, input UpdatePaymentInput) (*types.Order, error) {
	if !input.PaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
	}
	if _, err := s.load(ctx, orderID); err != nil {
		return nil, err
	}
	return s.apply(ctx, orderID, map[string]any{"payment_status": input.PaymentStatus, "updated_at": s.now()})
}

func (s *service) apply(ctx context.Context, orderID uuid.UUID, updates map[string]any) (*types.Order, error) {
	if err := s.repo.UpdateOrder(ctx, orderID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order")
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	dto := order.ToDTO()
	return &dto, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}

func toPage(rows []models.Order, limit int) *pagination.Page[types.Order] {
	dtos := make([]types.Order, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, row.ToDTO())
	}
	page := pagination.Trim(dtos, limit, func(o types.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return &page
}

func validatePlaceOrder(input types.PlaceOrderRequest) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, emptyOrderMessage)
	}
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d]: product id is required", i)
		}
		if strings.TrimSpace(item.Name) == "" {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d]: name is required", i)
		}
		if item.Quantity < 1 {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d]: quantity must be at least 1", i)
		}
		if item.Price.IsNegative() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d]: price must be non-negative", i)
		}
	}
	if input.ShippingAddress == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	if missing := missingAddressFields(*input.ShippingAddress); len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete").
			WithDetails(map[string]any{"missing": missing})
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.Subtotal.IsNegative() || input.Tax.IsNegative() || input.ShippingCost.IsNegative() || input.Total.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amounts must be non-negative")
	}
	return nil
}

func missingAddressFields(addr types.ShippingAddress) []string {
	fields := []struct {
		name  string
		value string
	}{
		{"fullName", addr.FullName},
		{"phone", addr.Phone},
		{"address", addr.Address},
		{"city", addr.City},
		{"state", addr.State},
		{"postalCode", addr.PostalCode},
		{"country", addr.Country},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
