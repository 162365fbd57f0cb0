package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rkdoors/storefront-backend/api/controllers"
	"github.com/rkdoors/storefront-backend/api/middleware"
	"github.com/rkdoors/storefront-backend/internal/auth"
	"github.com/rkdoors/storefront-backend/internal/cart"
	"github.com/rkdoors/storefront-backend/internal/checkout"
	"github.com/rkdoors/storefront-backend/internal/estimates"
	"github.com/rkdoors/storefront-backend/pkg/auth/session"
	"github.com/rkdoors/storefront-backend/pkg/config"
	"github.com/rkdoors/storefront-backend/pkg/logger"
	"github.com/rkdoors/storefront-backend/pkg/metrics"
	"github.com/rkdoors/storefront-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	sessionChecker session.AccessSessionChecker,
	authService auth.Service,
	adminRegisterService auth.AdminRegisterService,
	catalogStore controllers.CatalogReader,
	cartService cart.Service,
	checkoutService checkout.Service,
	orderBook controllers.OrderBook,
	estimateService estimates.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	// A nil *redis.Client must not reach the limiter as a non-nil interface.
	rateLimit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if redisClient == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(policy, redisClient, logg)
	}
	signInLimit := rateLimit(middleware.SignInPolicy(cfg.AuthRateLimit))
	signUpLimit := rateLimit(middleware.SignUpPolicy(cfg.AuthRateLimit))

	readiness := controllers.ReadinessDeps{DB: dbP}
	if redisClient != nil {
		readiness.Redis = redisClient
	}
	if catalogStore != nil {
		readiness.Catalog = catalogStore
	}
	if orderBook != nil {
		readiness.Orders = orderBook
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	requireAuth := middleware.Auth(cfg.JWT, sessionChecker, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, sessionChecker, logg)
	cartSession := middleware.CartSession(logg)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(signUpLimit).Post("/sign-up", controllers.AuthSignUp(authService, logg))
		r.With(signInLimit).Post("/sign-in", controllers.AuthSignIn(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/sign-out", controllers.AuthSignOut(authService, logg))
			r.Get("/me", controllers.AuthMe(authService, logg))
		})
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.AdminRegister(adminRegisterService, logg))
		}
		r.With(signInLimit).Post("/login", controllers.AdminAuthLogin(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			r.Route("/catalog", func(r chi.Router) {
				r.Get("/doors", controllers.CatalogDoors(catalogStore, logg))
				r.Get("/doors/{doorId}", controllers.CatalogDoor(catalogStore, logg))
				r.Get("/categories", controllers.CatalogCategories(catalogStore, logg))
				r.Get("/sizes", controllers.CatalogSizes())
			})

			r.Post("/orders", controllers.PlaceDirectOrder(checkoutService, logg))

			r.Group(func(r chi.Router) {
				r.Use(cartSession)
				r.Route("/cart", func(r chi.Router) {
					r.Get("/", controllers.CartSnapshot(cartService, logg))
					r.Delete("/", controllers.CartClear(cartService, logg))
					r.Post("/lines", controllers.CartAddLine(cartService, logg))
					r.Patch("/lines/{doorId}", controllers.CartSetQuantity(cartService, logg))
					r.Delete("/lines/{doorId}", controllers.CartRemoveLine(cartService, logg))
				})
				r.Post("/checkout", controllers.CheckoutCart(checkoutService, logg))
				r.Post("/estimates", controllers.GenerateEstimate(estimateService, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/orders", controllers.MyOrders(orderBook, logg))
			r.Get("/orders/{orderId}", controllers.MyOrderDetail(orderBook, logg))
			r.Delete("/orders/{orderId}", controllers.DeleteMyOrder(orderBook, logg))
			r.Post("/orders/{orderId}/cancel", controllers.CancelMyOrder(orderBook, logg))
		})
	})

	r.Route("/api/admin/v1/orders", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireAdmin(logg))

		r.Get("/", controllers.AdminListOrders(orderBook, logg))
		r.Get("/stats", controllers.AdminOrderStats(orderBook, logg))
		r.Post("/resync", controllers.AdminResyncOrders(orderBook, logg))
		r.Patch("/{orderId}/status", controllers.AdminUpdateOrderStatus(orderBook, logg))
		r.Get("/{orderId}/transitions", controllers.AdminOrderTransitions(orderBook, logg))
		r.Delete("/{orderId}", controllers.AdminDeleteOrder(orderBook, logg))
	})

	return r
}
