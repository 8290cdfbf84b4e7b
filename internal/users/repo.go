package users

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/attire-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes user persistence, including the embedded cart and
// wishlist arrays.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new user. Email is stored lowercase.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveCart overwrites the user's cart array. Concurrent writers race; the last save wins.
func (r *Repository) SaveCart(ctx context.Context, id uuid.UUID, cart []models.StoredCartLine) error {
	if cart == nil {
		cart = []models.StoredCartLine{}
	}
	return r.saveColumns(ctx, id, &models.User{Cart: cart}, "Cart")
}

// SaveWishlist overwrites the user's wishlist array.
func (r *Repository) SaveWishlist(ctx context.Context, id uuid.UUID, wishlist []uuid.UUID) error {
	if wishlist == nil {
		wishlist = []uuid.UUID{}
	}
	return r.saveColumns(ctx, id, &models.User{Wishlist: wishlist}, "Wishlist")
}

func (r *Repository) saveColumns(ctx context.Context, id uuid.UUID, values *models.User, field string) error {
	values.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Select(field, "UpdatedAt").
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// NormalizeEmail trims and lowercases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
