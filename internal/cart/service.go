package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/attire-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/attire-backend/pkg/errors"
	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const itemNotFoundMessage = "Item not found in cart"

// Service manages the cart embedded on the user record. Every mutation
// loads the whole cart, modifies it and saves it back; concurrent requests
// for the same user are last-write-wins.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) ([]types.CartLine, error)
	AddItem(ctx context.Context, userID uuid.UUID, input types.CartMutation) ([]types.CartLine, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, input types.CartMutation) ([]types.CartLine, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, key types.LineKey) ([]types.CartLine, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Users    userStore
	Products productReader
	Metrics  mutationRecorder
}

type service struct {
	users    userStore
	products productReader
	metrics  mutationRecorder
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{
		users:    params.Users,
		products: params.Products,
		metrics:  params.Metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) ([]types.CartLine, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, user.Cart)
}

// AddItem increments the line matching the key or appends a new one.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input types.CartMutation) (lines []types.CartLine, err error) {
	defer func() { s.record("add", err) }()

	qty := input.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if err := s.ensureProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := types.LineKey{ProductID: input.ProductID, Size: input.Size, Color: input.Color}
	cart := append([]models.StoredCartLine(nil), user.Cart...)
	if idx := indexOf(cart, key); idx >= 0 {
		cart[idx].Quantity += qty
	} else {
		cart = append(cart, models.StoredCartLine{
			ProductID: input.ProductID,
			Size:      input.Size,
			Color:     input.Color,
			Quantity:  qty,
			AddedAt:   s.now(),
		})
	}
	return s.save(ctx, userID, cart)
}

// UpdateQuantity sets the absolute quantity of an existing line.
func (s *service) UpdateQuantity(ctx context.Context, userID uuid.UUID, input types.CartMutation) (lines []types.CartLine, err error) {
	defer func() { s.record("update", err) }()

	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart := append([]models.StoredCartLine(nil), user.Cart...)
	idx := indexOf(cart, types.LineKey{ProductID: input.ProductID, Size: input.Size, Color: input.Color})
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, itemNotFoundMessage)
	}
	cart[idx].Quantity = input.Quantity
	return s.save(ctx, userID, cart)
}

// RemoveItem drops the line with the given key. Removing an absent line is not an error.
func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, key types.LineKey) (lines []types.CartLine, err error) {
	defer func() { s.record("remove", err) }()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart := make([]models.StoredCartLine, 0, len(user.Cart))
	for _, line := range user.Cart {
		if storedKey(line) != key {
			cart = append(cart, line)
		}
	}
	return s.save(ctx, userID, cart)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (err error) {
	defer func() { s.record("clear", err) }()

	if err := s.users.SaveCart(ctx, userID, []models.StoredCartLine{}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
	}
	return nil
}

func (s *service) save(ctx context.Context, userID uuid.UUID, cart []models.StoredCartLine) ([]types.CartLine, error) {
	if err := s.users.SaveCart(ctx, userID, cart); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save cart")
	}
	return s.populate(ctx, cart)
}

// populate joins stored lines with live product data. Lines whose product
// no longer exists are left out of the response but kept in storage.
func (s *service) populate(ctx context.Context, stored []models.StoredCartLine) ([]types.CartLine, error) {
	ids := make([]uuid.UUID, 0, len(stored))
	for _, line := range stored {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart products")
	}

	lines := make([]types.CartLine, 0, len(stored))
	for _, line := range stored {
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, types.NewCartLine(product.ToDTO(), line.Size, line.Color, line.Quantity))
	}
	return lines, nil
}

func (s *service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return user, nil
}

func (s *service) ensureProduct(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return nil
}

func (s *service) record(op string, err error) {
	if s.metrics != nil {
		s.metrics.CartMutation(op, err)
	}
}

func indexOf(cart []models.StoredCartLine, key types.LineKey) int {
	for i, line := range cart {
		if storedKey(line) == key {
			return i
		}
	}
	return -1
}

func storedKey(line models.StoredCartLine) types.LineKey {
	return types.LineKey{ProductID: line.ProductID, Size: line.Size, Color: line.Color}
}
