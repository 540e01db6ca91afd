package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marketloop/marketloop-backend/api/controllers"
	"github.com/marketloop/marketloop-backend/api/middleware"
	"github.com/marketloop/marketloop-backend/internal/auth"
	"github.com/marketloop/marketloop-backend/internal/cart"
	checkoutsvc "github.com/marketloop/marketloop-backend/internal/checkout"
	"github.com/marketloop/marketloop-backend/internal/orders"
	products "github.com/marketloop/marketloop-backend/internal/products"
	"github.com/marketloop/marketloop-backend/internal/users"
	"github.com/marketloop/marketloop-backend/internal/vendors"
	"github.com/marketloop/marketloop-backend/pkg/auth/session"
	"github.com/marketloop/marketloop-backend/pkg/config"
	"github.com/marketloop/marketloop-backend/pkg/db"
	"github.com/marketloop/marketloop-backend/pkg/logger"
	"github.com/marketloop/marketloop-backend/pkg/metrics"
	pkgredis "github.com/marketloop/marketloop-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Grouping them in a struct
// keeps NewRouter call sites readable as the service count grows.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             *db.Client
	Redis          *pkgredis.Client
	SessionManager session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics
	Gatherer       prometheus.Gatherer

	AuthService     auth.Service
	UserService     users.Service
	VendorService   vendors.Service
	ProductService  products.Service
	CartManager     *cart.Manager
	CheckoutService checkoutsvc.Service
	OrderService    orders.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.CORS(cfg.App),
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, d.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	// d.Redis is passed as a concrete pointer so a nil client must be
	// dropped here; a typed nil inside the middleware's interface would
	// dodge its own nil check.
	loginLimiter := passthrough()
	registerLimiter := passthrough()
	idempotency := passthrough()
	if d.Redis != nil {
		loginLimiter = middleware.AuthRateLimit(middleware.NewAuthRateLimitPolicy(
			"login",
			cfg.AuthRateLimit.LoginWindow,
			cfg.AuthRateLimit.LoginIPLimit,
			cfg.AuthRateLimit.LoginEmailLimit,
		), d.Redis, logg)
		registerLimiter = middleware.AuthRateLimit(middleware.NewAuthRateLimitPolicy(
			"register",
			cfg.AuthRateLimit.RegisterWindow,
			cfg.AuthRateLimit.RegisterIPLimit,
			cfg.AuthRateLimit.RegisterEmailLimit,
		), d.Redis, logg)
		idempotency = middleware.Idempotency(d.Redis, logg)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(registerLimiter, idempotency).
				Post("/register", controllers.Register(d.AuthService, logg))
			r.With(loginLimiter).
				Post("/login", controllers.Login(d.AuthService, logg))
			r.Post("/refresh", controllers.Refresh(d.AuthService, logg))
			r.With(middleware.Auth(cfg.JWT, d.SessionManager, logg)).
				Post("/logout", controllers.Logout(d.AuthService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Get("/products", controllers.BrowseProducts(d.ProductService, logg))
			r.Get("/products/{productID}", controllers.ProductDetail(d.ProductService, logg))
			r.Get("/vendors", controllers.ListVendors(d.VendorService, logg))
			r.Get("/vendors/{slug}", controllers.GetVendor(d.VendorService, logg))
			r.Get("/vendors/{slug}/products", controllers.VendorStorefront(d.VendorService, d.ProductService, logg))
		})

		// Cart works for guests and signed-in users alike; a bearer token
		// upgrades the cart key from the X-Cart-Token header to the account.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, d.SessionManager, logg))
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(d.CartManager, logg))
				r.Delete("/", controllers.ClearCart(d.CartManager, logg))
				r.Post("/items", controllers.AddCartItem(d.CartManager, logg))
				r.Patch("/items/{productID}", controllers.UpdateCartItem(d.CartManager, logg))
				r.Delete("/items/{productID}", controllers.RemoveCartItem(d.CartManager, logg))
				r.Post("/switch/confirm", controllers.ConfirmVendorSwitch(d.CartManager, logg))
				r.Post("/switch/cancel", controllers.CancelVendorSwitch(d.CartManager, logg))
			})
		})

		r.Group(func(r chi.Router) {
			// Idempotency sits behind Auth so stored responses are scoped
			// to the authenticated account.
			r.Use(middleware.Auth(cfg.JWT, d.SessionManager, logg))
			r.Use(idempotency)

			r.Get("/me", controllers.GetProfile(d.UserService, logg))
			r.Patch("/me", controllers.UpdateProfile(d.UserService, logg))

			r.Post("/checkout", controllers.Checkout(d.CheckoutService, logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.MyOrders(d.OrderService, logg))
				r.Get("/{orderID}", controllers.MyOrder(d.OrderService, logg))
				r.Post("/{orderID}/cancel", controllers.CancelMyOrder(d.OrderService, logg))
			})

			r.Post("/vendors/apply", controllers.ApplyVendor(d.VendorService, logg))

			r.Route("/vendor", func(r chi.Router) {
				r.Use(middleware.RequireVendorContext(logg))
				r.Get("/me", controllers.MyVendor(d.VendorService, logg))
				r.Patch("/me", controllers.UpdateMyVendor(d.VendorService, logg))
				r.Route("/products", func(r chi.Router) {
					r.Get("/", controllers.MyVendorProducts(d.ProductService, logg))
					r.Post("/", controllers.CreateVendorProduct(d.ProductService, logg))
					r.Patch("/{productID}", controllers.UpdateVendorProduct(d.ProductService, logg))
					r.Delete("/{productID}", controllers.DeleteVendorProduct(d.ProductService, logg))
				})
				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.VendorOrders(d.OrderService, logg))
					r.Patch("/{orderID}/status", controllers.VendorOrderStatus(d.OrderService, logg))
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireStaff(logg))
				r.Route("/vendors", func(r chi.Router) {
					r.Get("/pending", controllers.AdminPendingVendors(d.VendorService, logg))
					r.Post("/{vendorID}/approve", controllers.AdminApproveVendor(d.VendorService, logg))
					r.Post("/{vendorID}/suspend", controllers.AdminSuspendVendor(d.VendorService, logg))
				})
				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.AdminOrders(d.OrderService, logg))
					r.Patch("/{orderID}/status", controllers.AdminOrderStatus(d.OrderService, logg))
				})
				r.Route("/users", func(r chi.Router) {
					r.Get("/", controllers.AdminListUsers(d.UserService, logg))
					r.Patch("/{userID}/active", controllers.AdminSetUserActive(d.UserService, logg))
					r.Patch("/{userID}/role", controllers.SuperadminSetAdminRole(d.UserService, logg))
				})
			})
		})
	})

	return r
}

func passthrough() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return next }
}
