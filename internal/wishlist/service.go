package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/attire-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/attire-backend/pkg/errors"
	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SaveWishlist(ctx context.Context, id uuid.UUID, wishlist []uuid.UUID) error
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type mutationRecorder interface {
	WishlistMutation(op string, err error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Users    userStore
	Products productReader
	Metrics  mutationRecorder
}

// Service exposes business rules for wishlist management.
type Service interface {
	GetWishlist(ctx context.Context, userID uuid.UUID) ([]types.WishlistItem, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID) ([]types.WishlistItem, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) ([]types.WishlistItem, error)
}

type service struct {
	users    userStore
	products productReader
	metrics  mutationRecorder
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repo is required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repo is required")
	}
	return &service{users: params.Users, products: params.Products, metrics: params.Metrics}, nil
}

func (s *service) GetWishlist(ctx context.Context, userID uuid.UUID) ([]types.WishlistItem, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, user.Wishlist)
}

// AddItem ensures the product exists and adds it to the wishlist. Adding a
// product twice keeps a single entry.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID) (items []types.WishlistItem, err error) {
	defer func() { s.record("add", err) }()

	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := append([]uuid.UUID(nil), user.Wishlist...)
	if !contains(ids, productID) {
		ids = append(ids, productID)
	}
	return s.save(ctx, userID, ids)
}

// RemoveItem drops the wishlist entry regardless of prior state.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (items []types.WishlistItem, err error) {
	defer func() { s.record("remove", err) }()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(user.Wishlist))
	for _, id := range user.Wishlist {
		if id != productID {
			ids = append(ids, id)
		}
	}
	return s.save(ctx, userID, ids)
}

func (s *service) save(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]types.WishlistItem, error) {
	if err := s.users.SaveWishlist(ctx, userID, ids); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save wishlist")
	}
	return s.populate(ctx, ids)
}

func (s *service) populate(ctx context.Context, ids []uuid.UUID) ([]types.WishlistItem, error) {
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load wishlist products")
	}
	items := make([]types.WishlistItem, 0, len(ids))
	for _, id := range ids {
		if p, ok := products[id]; ok {
			items = append(items, types.NewWishlistItem(p.ToDTO()))
		}
	}
	return items, nil
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

func (s *service) record(op string, err error) {
	if s.metrics != nil {
		s.metrics.WishlistMutation(op, err)
	}
}

func contains(ids []uuid.UUID, target uuid.UUID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
