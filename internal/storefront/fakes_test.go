package storefront

import (
	"context"
	"errors"
	"sync"

	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/google/uuid"
)

var errRemoteDown = errors.New("remote unavailable")

// fakeRemote emulates the server cart: merge by key on add, absolute quantity on update.
type fakeRemote struct {
	mu       sync.Mutex
	catalog  map[uuid.UUID]types.Product
	lines    []types.CartLine
	wishlist []uuid.UUID
	orders   []types.PlaceOrderRequest
	calls    []string
	fail     bool
	failNext map[string]int
}

func newFakeRemote(products ...types.Product) *fakeRemote {
	r := &fakeRemote{catalog: map[uuid.UUID]types.Product{}}
	for _, p := range products {
		r.catalog[p.ID] = p
	}
	return r
}

func (r *fakeRemote) record(call string) error {
	r.calls = append(r.calls, call)
	if r.fail {
		return errRemoteDown
	}
	if r.failNext[call] > 0 {
		r.failNext[call]--
		return errRemoteDown
	}
	return nil
}

func (r *fakeRemote) snapshot() []types.CartLine {
	return append([]types.CartLine{}, r.lines...)
}

func (r *fakeRemote) GetCart(context.Context) ([]types.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("get_cart"); err != nil {
		return nil, err
	}
	return r.snapshot(), nil
}

func (r *fakeRemote) AddToCart(_ context.Context, in types.CartMutation) ([]types.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("add_cart"); err != nil {
		return nil, err
	}
	key := types.LineKey{ProductID: in.ProductID, Size: in.Size, Color: in.Color}
	if idx := indexOfLine(r.lines, key); idx >= 0 {
		r.lines[idx].Quantity += in.Quantity
	} else {
		r.lines = append(r.lines, types.NewCartLine(r.catalog[in.ProductID], in.Size, in.Color, in.Quantity))
	}
	return r.snapshot(), nil
}

func (r *fakeRemote) UpdateCartItem(_ context.Context, in types.CartMutation) ([]types.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("update_cart"); err != nil {
		return nil, err
	}
	if idx := indexOfLine(r.lines, types.LineKey{ProductID: in.ProductID, Size: in.Size, Color: in.Color}); idx >= 0 {
		r.lines[idx].Quantity = in.Quantity
	}
	return r.snapshot(), nil
}

func (r *fakeRemote) RemoveFromCart(_ context.Context, key types.LineKey) ([]types.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("remove_cart"); err != nil {
		return nil, err
	}
	next := []types.CartLine{}
	for _, line := range r.lines {
		if line.Key() != key {
			next = append(next, line)
		}
	}
	r.lines = next
	return r.snapshot(), nil
}

func (r *fakeRemote) ClearCart(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("clear_cart"); err != nil {
		return err
	}
	r.lines = nil
	return nil
}

func (r *fakeRemote) wishlistItems() []types.WishlistItem {
	items := []types.WishlistItem{}
	for _, id := range r.wishlist {
		items = append(items, types.NewWishlistItem(r.catalog[id]))
	}
	return items
}

func (r *fakeRemote) GetWishlist(context.Context) ([]types.WishlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("get_wishlist"); err != nil {
		return nil, err
	}
	return r.wishlistItems(), nil
}

func (r *fakeRemote) AddToWishlist(_ context.Context, id uuid.UUID) ([]types.WishlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("add_wishlist"); err != nil {
		return nil, err
	}
	for _, existing := range r.wishlist {
		if existing == id {
			return r.wishlistItems(), nil
		}
	}
	r.wishlist = append(r.wishlist, id)
	return r.wishlistItems(), nil
}

func (r *fakeRemote) RemoveFromWishlist(_ context.Context, id uuid.UUID) ([]types.WishlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("remove_wishlist"); err != nil {
		return nil, err
	}
	next := []uuid.UUID{}
	for _, existing := range r.wishlist {
		if existing != id {
			next = append(next, existing)
		}
	}
	r.wishlist = next
	return r.wishlistItems(), nil
}

func (r *fakeRemote) PlaceOrder(_ context.Context, req types.PlaceOrderRequest) (*types.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("place_order"); err != nil {
		return nil, err
	}
	r.orders = append(r.orders, req)
	r.lines = nil
	return &types.Order{ID: uuid.New(), OrderNumber: "ORD00000000010001", Total: req.Total}, nil
}

// countingBlob wraps a MemoryBlob and records saves per key.
type countingBlob struct {
	*MemoryBlob
	mu     sync.Mutex
	saves  map[string]int
	failOn string
}

func newCountingBlob() *countingBlob {
	return &countingBlob{MemoryBlob: NewMemoryBlob(), saves: map[string]int{}}
}

func (b *countingBlob) Save(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	b.saves[key]++
	fail := b.failOn == key
	b.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return b.MemoryBlob.Save(ctx, key, value)
}

func (b *countingBlob) savesFor(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves[key]
}

func cartMutation(p types.Product, size, color string, qty int) types.CartMutation {
	return types.CartMutation{ProductID: p.ID, Size: size, Color: color, Quantity: qty}
}
