package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/pixfunnel-backend/api/controllers"
	"github.com/angelmondragon/pixfunnel-backend/api/middleware"
	"github.com/angelmondragon/pixfunnel-backend/internal/address"
	"github.com/angelmondragon/pixfunnel-backend/internal/auth"
	"github.com/angelmondragon/pixfunnel-backend/internal/catalog"
	"github.com/angelmondragon/pixfunnel-backend/internal/funnel"
	"github.com/angelmondragon/pixfunnel-backend/internal/sales"
	"github.com/angelmondragon/pixfunnel-backend/pkg/config"
	"github.com/angelmondragon/pixfunnel-backend/pkg/db"
	"github.com/angelmondragon/pixfunnel-backend/pkg/logger"
	"github.com/angelmondragon/pixfunnel-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	authService auth.Service,
	catalogService catalog.Service,
	salesService sales.Service,
	addressService address.Service,
	funnelDeps funnel.Deps,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.BodyLimit(),
	)

	// redis backed guards are skipped when no redis is configured
	var redisMW redisMiddleware
	if redisClient != nil {
		redisMW = redisMiddleware{
			rateLimit: func(p middleware.RateLimitPolicy) func(http.Handler) http.Handler {
				return middleware.RateLimit(p, redisClient, logg)
			},
			idempotency: middleware.Idempotency(redisClient, logg),
			submitLock:  middleware.SubmitLock(redisClient, cfg.Checkout.SubmitLockTTL, logg),
		}
	}

	createPixPolicy := middleware.NewRateLimitPolicy(
		"create_pix",
		cfg.RateLimit.CreatePixWindow,
		cfg.RateLimit.CreatePixLimit,
		cfg.RateLimit.CreatePixLimit,
	)
	cepPolicy := middleware.NewRateLimitPolicy("cep", cfg.RateLimit.CEPWindow, cfg.RateLimit.CEPLimit, 0)
	loginPolicy := middleware.NewRateLimitPolicy("login", cfg.RateLimit.LoginWindow, cfg.RateLimit.LoginLimit, 0)

	var redisPinger controllers.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}
	var dbPinger controllers.Pinger
	if dbP != nil {
		dbPinger = dbP
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"db":    dbPinger,
			"redis": redisPinger,
		}, logg))
	})
	r.Method(http.MethodGet, "/metrics", controllers.Metrics(gatherer))

	storefront := controllers.Storefront{
		Catalog: catalogService,
		Sales:   salesService,
		Funnel:  funnelDeps,
		Logger:  logg,
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Use(middleware.CartKey(logg))
		r.Get("/offer", controllers.PublicOffer(catalogService, funnelDeps.Policy, logg))
		r.With(redisMW.limit(cepPolicy)).Get("/cep/{cep}", controllers.PublicCEP(addressService, logg))
		r.Post("/quote", controllers.PublicQuote(storefront))
		r.With(
			redisMW.limit(createPixPolicy),
			redisMW.idempotent(),
			redisMW.locked(),
		).Post("/create-pix", controllers.PublicCreatePix(storefront))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.With(redisMW.limit(loginPolicy)).Post("/login", controllers.AdminLogin(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))

			r.Get("/items", controllers.AdminListItems(catalogService, logg))
			r.With(redisMW.idempotent()).Post("/items", controllers.AdminCreateItem(catalogService, logg))
			r.Get("/items/{id}", controllers.AdminGetItem(catalogService, logg))
			r.Put("/items/{id}", controllers.AdminUpdateItem(catalogService, logg))
			r.Delete("/items/{id}", controllers.AdminDeleteItem(catalogService, logg))
			r.Get("/carts", controllers.AdminListCarts(salesService, logg))
			r.Get("/carts/{id}", controllers.AdminGetCart(salesService, logg))
			r.Get("/orders", controllers.AdminListOrders(salesService, logg))
			r.Route("/analytics", func(r chi.Router) {
				r.Get("/summary", controllers.AdminAnalyticsSummary(salesService, logg))
				r.Get("/timeline", controllers.AdminAnalyticsTimeline(salesService, logg))
			})
		})
	})

	return r
}

type redisMiddleware struct {
	rateLimit   func(middleware.RateLimitPolicy) func(http.Handler) http.Handler
	idempotency func(http.Handler) http.Handler
	submitLock  func(http.Handler) http.Handler
}

func passthrough(next http.Handler) http.Handler { return next }

func (m redisMiddleware) limit(p middleware.RateLimitPolicy) func(http.Handler) http.Handler {
	if m.rateLimit == nil {
		return passthrough
	}
	return m.rateLimit(p)
}

func (m redisMiddleware) idempotent() func(http.Handler) http.Handler {
	if m.idempotency == nil {
		return passthrough
	}
	return m.idempotency
}

func (m redisMiddleware) locked() func(http.Handler) http.Handler {
	if m.submitLock == nil {
		return passthrough
	}
	return m.submitLock
}
