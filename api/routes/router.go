package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kinmelhq/kinmel-backend/api/controllers"
	"github.com/kinmelhq/kinmel-backend/api/middleware"
	"github.com/kinmelhq/kinmel-backend/internal/cart"
	"github.com/kinmelhq/kinmel-backend/internal/products"
	"github.com/kinmelhq/kinmel-backend/internal/users"
	"github.com/kinmelhq/kinmel-backend/pkg/config"
	"github.com/kinmelhq/kinmel-backend/pkg/db"
	"github.com/kinmelhq/kinmel-backend/pkg/enums"
	"github.com/kinmelhq/kinmel-backend/pkg/logger"
	"github.com/kinmelhq/kinmel-backend/pkg/metrics"
	"github.com/kinmelhq/kinmel-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on. RedisClient
// and MetricsRegistry may be nil; the related middleware degrades to a no-op.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	RedisClient     *redis.Client
	MetricsRegistry *prometheus.Registry
	UsersService    users.Service
	ProductsService products.Service
	CartService     cart.Service
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	var httpMetrics *metrics.HTTPMetrics
	if params.MetricsRegistry != nil {
		httpMetrics = metrics.NewHTTPMetrics(params.MetricsRegistry)
		r.Use(middleware.Metrics(httpMetrics))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, params.DB, logg))
	})

	if params.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/user", func(r chi.Router) {
		r.With(rateLimit(registerPolicy, params.RedisClient, logg)).
			Post("/register", controllers.UserRegister(params.UsersService, logg))
		r.With(rateLimit(loginPolicy, params.RedisClient, logg)).
			Post("/login", controllers.UserLogin(params.UsersService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/list", controllers.UserList(params.UsersService, logg))
			r.Delete("/delete/{id}", controllers.UserDelete(params.UsersService, logg))
		})
	})

	r.Route("/product", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/detail/{id}", controllers.ProductDetail(params.ProductsService, logg))
		r.Post("/list", controllers.ProductList(params.ProductsService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleSeller, logg))
			r.Post("/add", controllers.ProductAdd(params.ProductsService, logg))
			r.Put("/edit/{id}", controllers.ProductEdit(params.ProductsService, logg))
			r.Delete("/delete/{id}", controllers.ProductDelete(params.ProductsService, logg))
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.UserRoleBuyer, logg))

		r.Post("/add/item", controllers.CartAddItem(params.CartService, logg))
		r.Post("/list", controllers.CartList(params.CartService, logg))
		r.Get("/item/count", controllers.CartCount(params.CartService, logg))
		r.Delete("/item/delete/{id}", controllers.CartRemoveItem(params.CartService, logg))
		r.Delete("/flush", controllers.CartFlush(params.CartService, logg))
	})

	return r
}

func rateLimit(policy middleware.AuthRateLimitPolicy, store *redis.Client, logg *logger.Logger) func(http.Handler) http.Handler {
	if store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.AuthRateLimit(policy, store, logg)
}
