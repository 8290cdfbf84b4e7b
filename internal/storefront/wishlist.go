package storefront

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/angelmondragon/attire-backend/pkg/logger"
	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/google/uuid"
)

// WishlistEngine holds the session's wishlist, keyed by product id. The
// "has new items" flag is session state mirrored to the blob in every mode.
type WishlistEngine struct {
	opMu   sync.Mutex
	mu     sync.RWMutex
	src    Source
	flags  BlobStore
	items  []types.WishlistItem
	hasNew bool
	logg   *logger.Logger
}

func newWishlistEngine(src Source, flags BlobStore, logg *logger.Logger) *WishlistEngine {
	return &WishlistEngine{src: src, flags: flags, logg: logg, items: []types.WishlistItem{}}
}

func (w *WishlistEngine) load(ctx context.Context) error {
	var items []types.WishlistItem
	switch src := w.src.(type) {
	case RemoteSource:
		remote, err := src.API.GetWishlist(ctx)
		if err != nil {
			return fmt.Errorf("load server wishlist: %w", err)
		}
		items = remote
	case LocalSource:
		stored, err := readBlob[[]types.WishlistItem](ctx, src.Blob, WishlistKey)
		if err != nil {
			w.logg.Warn(w.logg.WithField(ctx, "error", err.Error()), "storefront.wishlist.blob_unreadable")
		}
		items = stored
	}

	hasNew := false
	if w.flags != nil {
		raw, err := w.flags.Load(ctx, WishlistNewKey)
		if err == nil {
			hasNew, _ = strconv.ParseBool(string(raw))
		}
	}

	w.mu.Lock()
	w.items = nonNilItems(items)
	w.hasNew = hasNew
	w.mu.Unlock()
	return nil
}

// Toggle adds the product when absent and removes it when present.
func (w *WishlistEngine) Toggle(ctx context.Context, p types.Product) error {
	w.opMu.Lock()
	defer w.opMu.Unlock()

	if w.IsWishlisted(p.ID) {
		return w.remove(ctx, p.ID)
	}
	return w.add(ctx, p)
}

func (w *WishlistEngine) add(ctx context.Context, p types.Product) error {
	var next []types.WishlistItem
	switch src := w.src.(type) {
	case RemoteSource:
		items, err := src.API.AddToWishlist(ctx, p.ID)
		if err != nil {
			return w.fail(ctx, "add", err)
		}
		next = items
	case LocalSource:
		next = append(w.Items(), types.NewWishlistItem(p))
		if err := writeBlob(ctx, src.Blob, WishlistKey, next); err != nil {
			return w.fail(ctx, "add", err)
		}
	default:
		return ErrDetached
	}

	w.mu.Lock()
	w.items = nonNilItems(next)
	w.hasNew = true
	w.mu.Unlock()
	w.persistFlag(ctx, true)
	return nil
}

func (w *WishlistEngine) remove(ctx context.Context, productID uuid.UUID) error {
	var next []types.WishlistItem
	switch src := w.src.(type) {
	case RemoteSource:
		items, err := src.API.RemoveFromWishlist(ctx, productID)
		if err != nil {
			return w.fail(ctx, "remove", err)
		}
		next = items
	case LocalSource:
		for _, item := range w.Items() {
			if item.ProductID != productID {
				next = append(next, item)
			}
		}
		next = nonNilItems(next)
		if err := writeBlob(ctx, src.Blob, WishlistKey, next); err != nil {
			return w.fail(ctx, "remove", err)
		}
	default:
		return ErrDetached
	}

	w.mu.Lock()
	w.items = nonNilItems(next)
	w.mu.Unlock()
	return nil
}

// IsWishlisted reports membership without side effects.
func (w *WishlistEngine) IsWishlisted(productID uuid.UUID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, item := range w.items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Items returns a copy of the entries.
func (w *WishlistEngine) Items() []types.WishlistItem {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]types.WishlistItem{}, w.items...)
}

func (w *WishlistEngine) HasNewItems() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.hasNew
}

func (w *WishlistEngine) detach() {
	w.opMu.Lock()
	w.src = nil
	w.flags = nil
	w.opMu.Unlock()
}

// MarkSeen clears the new-items flag.
func (w *WishlistEngine) MarkSeen(ctx context.Context) error {
	w.opMu.Lock()
	defer w.opMu.Unlock()

	w.mu.Lock()
	w.hasNew = false
	w.mu.Unlock()
	return w.persistFlag(ctx, false)
}

func (w *WishlistEngine) persistFlag(ctx context.Context, value bool) error {
	if w.flags == nil {
		return nil
	}
	if err := w.flags.Save(ctx, WishlistNewKey, []byte(strconv.FormatBool(value))); err != nil {
		w.logg.Error(ctx, "storefront.wishlist.flag_persist_failed", err)
		return err
	}
	return nil
}

func (w *WishlistEngine) fail(ctx context.Context, op string, err error) error {
	w.logg.Error(w.logg.WithField(ctx, "op", op), "storefront.wishlist.mutation_failed", err)
	return fmt.Errorf("wishlist %s: %w", op, err)
}

func nonNilItems(items []types.WishlistItem) []types.WishlistItem {
	if items == nil {
		return []types.WishlistItem{}
	}
	return items
}
