package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/attire-backend/api/controllers"
	"github.com/angelmondragon/attire-backend/api/middleware"
	"github.com/angelmondragon/attire-backend/internal/auth"
	"github.com/angelmondragon/attire-backend/internal/cart"
	"github.com/angelmondragon/attire-backend/internal/orders"
	productsvc "github.com/angelmondragon/attire-backend/internal/products"
	"github.com/angelmondragon/attire-backend/internal/wishlist"
	"github.com/angelmondragon/attire-backend/pkg/auth/session"
	"github.com/angelmondragon/attire-backend/pkg/config"
	"github.com/angelmondragon/attire-backend/pkg/enums"
	"github.com/angelmondragon/attire-backend/pkg/logger"
	"github.com/angelmondragon/attire-backend/pkg/metrics"
)

// Cache is the Redis surface used by the rate limiter and order idempotency.
type Cache interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// Dependencies is everything NewRouter wires. Nil services answer 503; a nil
// Cache disables rate limiting and idempotent replay.
type Dependencies struct {
	Sessions session.AccessSessionChecker
	Cache    Cache
	Health   map[string]controllers.Pinger
	Metrics  *metrics.StorefrontMetrics
	Gatherer prometheus.Gatherer

	Auth     auth.Service
	Products productsvc.Service
	Cart     cart.Service
	Wishlist wishlist.Service
	Orders   orders.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, deps.Health))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Cache, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Cache, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
			r.Get("/me", controllers.AuthMe(deps.Auth, logg))
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(deps.Products, logg))
		r.Get("/{productId}", controllers.ProductDetail(deps.Products, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Post("/", controllers.CartAdd(deps.Cart, logg))
			r.Put("/update", controllers.CartUpdate(deps.Cart, logg))
			r.Delete("/", controllers.CartRemove(deps.Cart, logg))
			r.Delete("/clear", controllers.CartClear(deps.Cart, logg))
		})

		r.Route("/api/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(deps.Wishlist, logg))
			r.Post("/{productId}", controllers.WishlistAdd(deps.Wishlist, logg))
			r.Delete("/{productId}", controllers.WishlistRemove(deps.Wishlist, logg))
		})

		r.Route("/api/orders", func(r chi.Router) {
			r.With(middleware.Idempotency(deps.Cache, logg)).Post("/", controllers.OrderCreate(deps.Orders, logg))
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
		})

		r.Route("/api/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))

			r.Post("/products", controllers.AdminProductCreate(deps.Products, logg))
			r.Put("/products/{productId}", controllers.AdminProductUpdate(deps.Products, logg))
			r.Delete("/products/{productId}", controllers.AdminProductDelete(deps.Products, logg))

			r.Get("/orders", controllers.AdminOrderList(deps.Orders, logg))
			r.Patch("/orders/{orderId}/status", controllers.AdminOrderStatus(deps.Orders, logg))
			r.Patch("/orders/{orderId}/payment", controllers.AdminOrderPayment(deps.Orders, logg))
		})
	})

	return r
}
