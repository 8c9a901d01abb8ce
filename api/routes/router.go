package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitrinebr/loja-api/api/controllers"
	"github.com/vitrinebr/loja-api/api/middleware"
	"github.com/vitrinebr/loja-api/internal/auth"
	"github.com/vitrinebr/loja-api/internal/cart"
	"github.com/vitrinebr/loja-api/internal/categories"
	checkoutsvc "github.com/vitrinebr/loja-api/internal/checkout"
	"github.com/vitrinebr/loja-api/internal/orders"
	product "github.com/vitrinebr/loja-api/internal/products"
	"github.com/vitrinebr/loja-api/internal/reviews"
	"github.com/vitrinebr/loja-api/internal/users"
	"github.com/vitrinebr/loja-api/internal/wishlist"
	"github.com/vitrinebr/loja-api/pkg/auth/session"
	"github.com/vitrinebr/loja-api/pkg/config"
	"github.com/vitrinebr/loja-api/pkg/db"
	"github.com/vitrinebr/loja-api/pkg/enums"
	"github.com/vitrinebr/loja-api/pkg/logger"
	"github.com/vitrinebr/loja-api/pkg/metrics"
	"github.com/vitrinebr/loja-api/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	storefrontMetrics *metrics.Storefront,
	gatherer prometheus.Gatherer,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	authService auth.Service,
	registerService auth.RegisterService,
	userService users.Service,
	categoryService categories.Service,
	productService product.Service,
	reviewService reviews.Service,
	wishlistService wishlist.Service,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	orderService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(storefrontMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	requireAuth := middleware.Auth(cfg.JWT, sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, sessions, logg)
	cartSession := middleware.CartSession(cfg.Cart, logg)
	idempotency := middleware.Idempotency(redisClient, cfg.Checkout.IdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), redisClient, logg)).
				Post("/login", controllers.AuthLogin(authService, logg))
			r.With(middleware.AuthRateLimit(middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit), redisClient, logg), idempotency).
				Post("/register", controllers.AuthRegister(registerService, logg))
			r.With(requireAuth).Post("/logout", controllers.AuthLogout(authService, logg))
		})

		r.Get("/categories", controllers.CategoryList(categoryService, logg))
		r.Get("/categories/{slug}", controllers.CategoryGet(categoryService, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(productService, logg))
			r.Get("/{productId}", controllers.ProductGet(productService, logg))
			r.Get("/{productId}/reviews", controllers.ReviewList(reviewService, logg))
			r.With(requireAuth).Post("/{productId}/reviews", controllers.ReviewCreate(reviewService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(optionalAuth, cartSession)
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
		})

		r.Get("/checkout/options", controllers.CheckoutOptions(cfg.Checkout.MaxInstallments))
		r.With(cartSession).Get("/checkout/quote", controllers.CheckoutQuote(checkoutService, logg))
		r.With(requireAuth, cartSession, idempotency).Post("/checkout", controllers.CheckoutSubmit(checkoutService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", controllers.MeGet(userService, logg))
			r.Patch("/me", controllers.MeUpdate(userService, logg))
			r.Delete("/reviews/{reviewId}", controllers.ReviewDelete(reviewService, logg))

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.WishlistList(wishlistService, logg))
				r.Post("/items", controllers.WishlistAdd(wishlistService, logg))
				r.Delete("/items/{productId}", controllers.WishlistRemove(wishlistService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(orderService, logg))
				r.Get("/{orderId}", controllers.OrderGet(orderService, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, middleware.RequireRole(enums.UserRoleAdmin, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminProductList(productService, logg))
				r.Post("/", controllers.AdminProductCreate(productService, logg))
				r.Put("/{productId}", controllers.AdminProductUpdate(productService, logg))
				r.Delete("/{productId}", controllers.AdminProductDelete(productService, logg))
			})
			r.Route("/categories", func(r chi.Router) {
				r.Post("/", controllers.AdminCategoryCreate(categoryService, logg))
				r.Put("/{categoryId}", controllers.AdminCategoryUpdate(categoryService, logg))
				r.Delete("/{categoryId}", controllers.AdminCategoryDelete(categoryService, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderList(orderService, logg))
				r.Get("/{orderId}", controllers.AdminOrderGet(orderService, logg))
				r.With(idempotency).Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(orderService, logg))
			})
			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.AdminUserList(userService, logg))
				r.Patch("/{userId}/role", controllers.AdminUserChangeRole(userService, logg))
				r.Delete("/{userId}", controllers.AdminUserDelete(userService, logg))
			})
		})
	})

	return r
}
