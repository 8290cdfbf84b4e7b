package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/angelmondragon/attire-backend/internal/pricing"
	"github.com/angelmondragon/attire-backend/pkg/logger"
	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// CartEngine is the session's cart. Guest carts live in the blob; authenticated
// carts are replaced by the server's response after every call. Mutations are
// serialized; a failed mutation is logged, returned, and leaves the lines as they were.
type CartEngine struct {
	opMu  sync.Mutex
	mu    sync.RWMutex
	src   Source
	lines []types.CartLine
	logg  *logger.Logger
}

func newCartEngine(src Source, logg *logger.Logger) *CartEngine {
	return &CartEngine{src: src, logg: logg, lines: []types.CartLine{}}
}

func (e *CartEngine) load(ctx context.Context) error {
	var lines []types.CartLine
	switch src := e.src.(type) {
	case RemoteSource:
		remote, err := src.API.GetCart(ctx)
		if err != nil {
			return fmt.Errorf("load server cart: %w", err)
		}
		lines = remote
	case LocalSource:
		stored, err := readBlob[[]types.CartLine](ctx, src.Blob, CartKey)
		if err != nil {
			e.logg.Warn(e.logg.WithField(ctx, "error", err.Error()), "storefront.cart.blob_unreadable")
		}
		lines = stored
	}
	e.replace(lines)
	return nil
}

// AddToCart adds one unit of the product. Empty size or color resolve to the
// product's first listed variant.
func (e *CartEngine) AddToCart(ctx context.Context, p types.Product, size, color string) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	size = p.DefaultSize(size)
	color = p.DefaultColor(color)

	switch src := e.src.(type) {
	case RemoteSource:
		lines, err := src.API.AddToCart(ctx, types.CartMutation{ProductID: p.ID, Size: size, Color: color, Quantity: 1})
		if err != nil {
			return e.fail(ctx, "add", err)
		}
		e.replace(lines)
		return nil
	case LocalSource:
		next := e.Lines()
		key := types.LineKey{ProductID: p.ID, Size: size, Color: color}
		if idx := indexOfLine(next, key); idx >= 0 {
			next[idx].Quantity++
		} else {
			next = append(next, types.NewCartLine(p, size, color, 1))
		}
		return e.commitLocal(ctx, src, "add", next)
	}
	return ErrDetached
}

// RemoveFromCart drops the line with the given key.
func (e *CartEngine) RemoveFromCart(ctx context.Context, key types.LineKey) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	current := e.Lines()
	switch src := e.src.(type) {
	case RemoteSource:
		if indexOfLine(current, key) < 0 {
			return nil
		}
		lines, err := src.API.RemoveFromCart(ctx, key)
		if err != nil {
			return e.fail(ctx, "remove", err)
		}
		e.replace(lines)
		return nil
	case LocalSource:
		next := make([]types.CartLine, 0, len(current))
		for _, line := range current {
			if line.Key() != key {
				next = append(next, line)
			}
		}
		return e.commitLocal(ctx, src, "remove", next)
	}
	return ErrDetached
}

// UpdateQuantity changes a line's quantity by delta, never going below 1.
// Unknown keys are ignored.
func (e *CartEngine) UpdateQuantity(ctx context.Context, key types.LineKey, delta int) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	next := e.Lines()
	idx := indexOfLine(next, key)
	if idx < 0 {
		return nil
	}
	quantity := next[idx].Quantity + delta
	if quantity < 1 {
		quantity = 1
	}

	switch src := e.src.(type) {
	case RemoteSource:
		lines, err := src.API.UpdateCartItem(ctx, types.CartMutation{
			ProductID: key.ProductID,
			Size:      key.Size,
			Color:     key.Color,
			Quantity:  quantity,
		})
		if err != nil {
			return e.fail(ctx, "update", err)
		}
		e.replace(lines)
		return nil
	case LocalSource:
		next[idx].Quantity = quantity
		return e.commitLocal(ctx, src, "update", next)
	}
	return ErrDetached
}

// ClearCart empties the cart.
func (e *CartEngine) ClearCart(ctx context.Context) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	switch src := e.src.(type) {
	case RemoteSource:
		if err := src.API.ClearCart(ctx); err != nil {
			return e.fail(ctx, "clear", err)
		}
		e.replace(nil)
		return nil
	case LocalSource:
		return e.commitLocal(ctx, src, "clear", nil)
	}
	return ErrDetached
}

// Lines returns a copy of the current lines.
func (e *CartEngine) Lines() []types.CartLine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]types.CartLine{}, e.lines...)
}

// Count is the total number of units.
func (e *CartEngine) Count() int {
	return pricing.Count(e.Lines())
}

// Subtotal is Σ price × quantity.
func (e *CartEngine) Subtotal() decimal.Decimal {
	return pricing.Subtotal(e.Lines())
}

func (e *CartEngine) commitLocal(ctx context.Context, src LocalSource, op string, next []types.CartLine) error {
	if next == nil {
		next = []types.CartLine{}
	}
	if err := writeBlob(ctx, src.Blob, CartKey, next); err != nil {
		return e.fail(ctx, op, err)
	}
	e.replace(next)
	return nil
}

func (e *CartEngine) replace(lines []types.CartLine) {
	if lines == nil {
		lines = []types.CartLine{}
	}
	e.mu.Lock()
	e.lines = lines
	e.mu.Unlock()
}

func (e *CartEngine) fail(ctx context.Context, op string, err error) error {
	e.logg.Error(e.logg.WithField(ctx, "op", op), "storefront.cart.mutation_failed", err)
	return fmt.Errorf("cart %s: %w", op, err)
}

func indexOfLine(lines []types.CartLine, key types.LineKey) int {
	for i, line := range lines {
		if line.Key() == key {
			return i
		}
	}
	return -1
}

// ErrDetached is returned by engines a session has replaced on login or logout.
var ErrDetached = errors.New("storefront: engine was replaced by a session transition")

// detach stops e from mutating its former source. Reads keep the last lines.
func (e *CartEngine) detach() {
	e.opMu.Lock()
	e.src = nil
	e.opMu.Unlock()
}

func readBlob[T any](ctx context.Context, blob BlobStore, key string) (T, error) {
	var out T
	data, err := blob.Load(ctx, key)
	if errors.Is(err, ErrBlobNotFound) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

func writeBlob(ctx context.Context, blob BlobStore, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return blob.Save(ctx, key, data)
}
