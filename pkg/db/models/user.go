package models

import (
	"time"

	"github.com/angelmondragon/attire-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoredCartLine is the persisted form of a cart line: product reference and
// variant only. Display fields are populated from the product on read.
type StoredCartLine struct {
	ProductID uuid.UUID `json:"productId"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// User is a storefront account. Cart and wishlist are embedded JSON arrays,
// saved as a whole on every mutation.
type User struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name         string           `gorm:"column:name;not null"`
	Email        string           `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	Role         enums.UserRole   `gorm:"column:role;not null;default:user"`
	Cart         []StoredCartLine `gorm:"column:cart;type:jsonb;serializer:json;not null"`
	Wishlist     []uuid.UUID      `gorm:"column:wishlist;type:jsonb;serializer:json;not null"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = enums.UserRoleUser
	}
	if u.Cart == nil {
		u.Cart = []StoredCartLine{}
	}
	if u.Wishlist == nil {
		u.Wishlist = []uuid.UUID{}
	}
	return nil
}
