package storefront

import (
	"context"
	"errors"
	"sync"

	"github.com/angelmondragon/attire-backend/internal/pricing"
	"github.com/angelmondragon/attire-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/attire-backend/pkg/errors"
	"github.com/angelmondragon/attire-backend/pkg/logger"
	"github.com/angelmondragon/attire-backend/pkg/types"
)

var (
	// ErrLoginRequired is returned when a guest tries to place an order.
	ErrLoginRequired = pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in to place an order")
	// ErrEmptyCart is returned when checking out with no lines.
	ErrEmptyCart = pkgerrors.New(pkgerrors.CodeValidation, "your cart is empty")
)

// Checkout prices the session's cart and submits orders. The applied coupon
// survives failed submissions and is dropped after a successful one.
type Checkout struct {
	mu     sync.Mutex
	cart   *CartEngine
	src    Source
	rules  pricing.Rules
	coupon string
	logg   *logger.Logger
}

func newCheckout(cart *CartEngine, src Source, rules pricing.Rules, logg *logger.Logger) *Checkout {
	return &Checkout{cart: cart, src: src, rules: rules, logg: logg}
}

// ApplyCoupon matches code against the cart's lines. A rejected code clears
// any previously applied coupon.
func (c *Checkout) ApplyCoupon(code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	applied, err := pricing.MatchCoupon(c.cart.Lines(), code)
	if err != nil {
		c.coupon = ""
		return err
	}
	c.coupon = applied
	return nil
}

func (c *Checkout) RemoveCoupon() {
	c.mu.Lock()
	c.coupon = ""
	c.mu.Unlock()
}

func (c *Checkout) AppliedCoupon() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coupon
}

// Quote prices the current cart with the applied coupon.
func (c *Checkout) Quote() pricing.Quote {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rules.Quote(c.cart.Lines(), c.coupon)
}

// PlaceOrder submits the priced cart and clears it once the order exists.
func (c *Checkout) PlaceOrder(ctx context.Context, address types.ShippingAddress, method enums.PaymentMethod) (*types.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.src == nil {
		return nil, ErrDetached
	}
	remote, ok := c.src.(RemoteSource)
	if !ok {
		return nil, ErrLoginRequired
	}
	lines := c.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if method == "" {
		method = enums.PaymentMethodCOD
	}

	quote := c.rules.Quote(lines, c.coupon)
	req := types.PlaceOrderRequest{
		Items:           make([]types.OrderItemInput, 0, len(lines)),
		ShippingAddress: &address,
		PaymentMethod:   method,
		Subtotal:        quote.Subtotal,
		Tax:             quote.Tax,
		ShippingCost:    quote.Shipping,
		Total:           quote.Total,
	}
	for _, line := range lines {
		req.Items = append(req.Items, types.OrderItemInput{
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Size:      line.Size,
			Color:     line.Color,
		})
	}

	order, err := remote.API.PlaceOrder(ctx, req)
	if err != nil {
		c.logg.Error(ctx, "storefront.checkout.place_order_failed", err)
		return nil, err
	}

	c.coupon = ""
	if err := c.cart.ClearCart(ctx); err != nil {
		// the server emptied the cart with the order; only the local copy is stale
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "storefront.checkout.clear_after_order_failed")
		c.cart.replace(nil)
	}
	return order, nil
}

func (c *Checkout) detach() {
	c.mu.Lock()
	c.src = nil
	c.mu.Unlock()
}

// IsCouponRejection reports whether err is a coupon mismatch.
func IsCouponRejection(err error) bool {
	return errors.Is(err, pricing.ErrCouponNotApplicable)
}
