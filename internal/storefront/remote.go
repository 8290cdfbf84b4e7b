package storefront

import (
	"context"

	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/google/uuid"
)

// Remote is the authenticated storefront API. Every cart and wishlist call
// returns the server's full authoritative collection.
type Remote interface {
	GetCart(ctx context.Context) ([]types.CartLine, error)
	AddToCart(ctx context.Context, input types.CartMutation) ([]types.CartLine, error)
	UpdateCartItem(ctx context.Context, input types.CartMutation) ([]types.CartLine, error)
	RemoveFromCart(ctx context.Context, key types.LineKey) ([]types.CartLine, error)
	ClearCart(ctx context.Context) error

	GetWishlist(ctx context.Context) ([]types.WishlistItem, error)
	AddToWishlist(ctx context.Context, productID uuid.UUID) ([]types.WishlistItem, error)
	RemoveFromWishlist(ctx context.Context, productID uuid.UUID) ([]types.WishlistItem, error)

	PlaceOrder(ctx context.Context, req types.PlaceOrderRequest) (*types.Order, error)
}

// Source is where a session's cart and wishlist live: LocalSource or RemoteSource.
type Source interface {
	mode() Mode
}

// LocalSource keeps guest state in a blob.
type LocalSource struct {
	Blob BlobStore
}

func (LocalSource) mode() Mode { return ModeGuest }

// RemoteSource keeps state on the server for an authenticated user.
type RemoteSource struct {
	API Remote
}

func (RemoteSource) mode() Mode { return ModeAuthenticated }

// Mode names the session's authentication state.
type Mode string

const (
	ModeGuest         Mode = "guest"
	ModeAuthenticated Mode = "authenticated"
)
