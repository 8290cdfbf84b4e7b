package orders

import (
	"context"

	"github.com/angelmondragon/attire-backend/pkg/db/models"
	"github.com/angelmondragon/attire-backend/pkg/enums"
	"github.com/angelmondragon/attire-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	ListAll(ctx context.Context, status *enums.OrderStatus, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CartStore clears the owner's cart inside the order transaction.
type CartStore interface {
	SaveCart(ctx context.Context, id uuid.UUID, cart []models.StoredCartLine) error
}

type orderRecorder interface {
	OrderCreated(paymentMethod string, total decimal.Decimal)
}
