package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/attire-backend/pkg/db"
	"github.com/angelmondragon/attire-backend/pkg/db/models"
	"github.com/angelmondragon/attire-backend/pkg/enums"
	"github.com/angelmondragon/attire-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	orderNumberConstraint = "orders_order_number_key"
	orderNumberSavepoint  = "order_number"
	maxOrderNumberRetries = 5
)

// ErrOrderNumberExhausted is returned when every generated order number collided.
var ErrOrderNumberExhausted = errors.New("could not allocate a unique order number")

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateOrder inserts the order row without its items. It must run inside a
// transaction: a collision on the order number rolls back to a savepoint and
// retries, and the create hook draws a fresh number on every attempt.
func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	conn := r.db.WithContext(ctx)
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		if err := conn.SavePoint(orderNumberSavepoint).Error; err != nil {
			return fmt.Errorf("savepoint: %w", err)
		}
		err := conn.Omit("Items").Create(order).Error
		if err == nil {
			return nil
		}
		if !db.IsUniqueViolation(err, orderNumberConstraint) && !db.IsUniqueViolation(err, "orders.order_number") {
			return err
		}
		if rbErr := conn.RollbackTo(orderNumberSavepoint).Error; rbErr != nil {
			return fmt.Errorf("rollback to savepoint: %w", rbErr)
		}
	}
	return ErrOrderNumberExhausted
}

// CreateItems stores the snapshot lines in submission order.
func (r *repository) CreateItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
		items[i].Position = i
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	var rows []models.Order
	query := r.db.WithContext(ctx).Preload("Items", orderedItems).Where("user_id = ?", userID)
	err := pagination.Apply(query, cursor, limit).Find(&rows).Error
	return rows, err
}

func (r *repository) ListAll(ctx context.Context, status *enums.OrderStatus, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	var rows []models.Order
	query := r.db.WithContext(ctx).Preload("Items", orderedItems)
	if status != nil {
		query = query.Where("order_status = ?", *status)
	}
	err := pagination.Apply(query, cursor, limit).Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func orderedItems(q *gorm.DB) *gorm.DB {
	return q.Order("position ASC")
}
