package storefront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/angelmondragon/attire-backend/internal/pricing"
	"github.com/angelmondragon/attire-backend/pkg/logger"
	"github.com/angelmondragon/attire-backend/pkg/types"
)

// ReconcilePolicy decides what happens to guest state when a guest logs in.
type ReconcilePolicy int

const (
	// ReplaceWithServer discards the guest cart and wishlist in favor of the
	// server's. The guest blob is left in place and reappears after logout.
	ReplaceWithServer ReconcilePolicy = iota
	// MergeGuestIntoServer pushes every guest line and wishlist entry to the
	// server, clears the guest blob, then loads the merged server state.
	MergeGuestIntoServer
)

func (p ReconcilePolicy) String() string {
	switch p {
	case ReplaceWithServer:
		return "replace"
	case MergeGuestIntoServer:
		return "merge"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.New("storefront session is closed")

// Options configures a session.
type Options struct {
	Logger *logger.Logger
	Rules  pricing.Rules
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	if o.Rules == (pricing.Rules{}) {
		o.Rules = pricing.DefaultRules()
	}
	return o
}

// Session is one shopper's storefront state. It starts as a guest or an
// authenticated session and moves between the two with Authenticate and Logout.
type Session struct {
	mu       sync.RWMutex
	opts     Options
	blob     BlobStore
	src      Source
	cart     *CartEngine
	wishlist *WishlistEngine
	checkout *Checkout
	closed   bool
}

// NewGuestSession loads the cart and wishlist from the blob. Missing keys mean empty.
func NewGuestSession(ctx context.Context, blob BlobStore, opts Options) (*Session, error) {
	if blob == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	s := &Session{opts: opts.withDefaults(), blob: blob}
	if err := s.switchTo(ctx, LocalSource{Blob: blob}); err != nil {
		return nil, err
	}
	return s, nil
}

// NewRemoteSession loads the cart and wishlist from the server. The blob only
// carries the wishlist flag and the guest state restored on logout.
func NewRemoteSession(ctx context.Context, api Remote, blob BlobStore, opts Options) (*Session, error) {
	if api == nil {
		return nil, fmt.Errorf("remote api is required")
	}
	if blob == nil {
		blob = NewMemoryBlob()
	}
	s := &Session{opts: opts.withDefaults(), blob: blob}
	if err := s.switchTo(ctx, RemoteSource{API: api}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.src.mode()
}

// Cart returns the engine bound to the current mode. Authenticate and Logout
// replace it; a previously fetched engine then fails mutations with ErrDetached.
func (s *Session) Cart() *CartEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

// Wishlist follows the same rule as Cart.
func (s *Session) Wishlist() *WishlistEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wishlist
}

// Checkout follows the same rule as Cart.
func (s *Session) Checkout() *Checkout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkout
}

// Authenticate moves a guest session onto the server. On error the session
// stays a guest. Under MergeGuestIntoServer, cart lines the server already
// accepted are dropped from the guest state, so a retry adds only the rest.
func (s *Session) Authenticate(ctx context.Context, api Remote, policy ReconcilePolicy) error {
	if api == nil {
		return fmt.Errorf("remote api is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	ctx = s.opts.Logger.WithField(ctx, "reconcile_policy", policy.String())
	if _, ok := s.src.(RemoteSource); ok {
		return s.switchToLocked(ctx, RemoteSource{API: api})
	}

	switch policy {
	case ReplaceWithServer:
	case MergeGuestIntoServer:
		if err := s.mergeGuest(ctx, api); err != nil {
			s.opts.Logger.Error(ctx, "storefront.session.merge_failed", err)
			return err
		}
	default:
		return fmt.Errorf("unknown reconcile policy %d", int(policy))
	}

	if err := s.switchToLocked(ctx, RemoteSource{API: api}); err != nil {
		s.opts.Logger.Error(ctx, "storefront.session.authenticate_failed", err)
		return err
	}
	s.opts.Logger.Info(ctx, "storefront.session.authenticated")
	return nil
}

func (s *Session) mergeGuest(ctx context.Context, api Remote) error {
	for _, line := range s.cart.Lines() {
		_, err := api.AddToCart(ctx, types.CartMutation{
			ProductID: line.ProductID,
			Size:      line.Size,
			Color:     line.Color,
			Quantity:  line.Quantity,
		})
		if err != nil {
			return fmt.Errorf("merge cart line: %w", err)
		}
		// accepted lines leave the guest cart
		if err := s.cart.RemoveFromCart(ctx, line.Key()); err != nil {
			return fmt.Errorf("drop merged cart line: %w", err)
		}
	}
	for _, item := range s.wishlist.Items() {
		if _, err := api.AddToWishlist(ctx, item.ProductID); err != nil {
			return fmt.Errorf("merge wishlist entry: %w", err)
		}
	}
	for _, key := range []string{CartKey, WishlistKey} {
		if err := s.blob.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear guest blob: %w", err)
		}
	}
	return nil
}

// Logout returns to a guest session loaded from the blob.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.switchToLocked(ctx, LocalSource{Blob: s.blob}); err != nil {
		return err
	}
	s.opts.Logger.Info(ctx, "storefront.session.logged_out")
	return nil
}

// Close releases the session. Remotes that hold resources are closed too.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if remote, ok := s.src.(RemoteSource); ok {
		if closer, ok := remote.API.(io.Closer); ok {
			return closer.Close()
		}
	}
	return nil
}

func (s *Session) switchTo(ctx context.Context, src Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.switchToLocked(ctx, src)
}

// switchToLocked builds engines for src and loads them. The current engines
// are replaced only when both loads succeed.
func (s *Session) switchToLocked(ctx context.Context, src Source) error {
	ctx = s.opts.Logger.WithSessionMode(ctx, string(src.mode()))

	cart := newCartEngine(src, s.opts.Logger)
	if err := cart.load(ctx); err != nil {
		return err
	}
	wishlist := newWishlistEngine(src, s.blob, s.opts.Logger)
	if err := wishlist.load(ctx); err != nil {
		return err
	}

	if s.cart != nil {
		s.cart.detach()
		s.wishlist.detach()
		s.checkout.detach()
	}
	s.src = src
	s.cart = cart
	s.wishlist = wishlist
	s.checkout = newCheckout(cart, src, s.opts.Rules, s.opts.Logger)
	return nil
}
