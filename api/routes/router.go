package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mariaquintana/insurecrm-backend/api/controllers"
	"github.com/mariaquintana/insurecrm-backend/api/middleware"
	"github.com/mariaquintana/insurecrm-backend/internal/auth"
	"github.com/mariaquintana/insurecrm-backend/internal/commissions"
	"github.com/mariaquintana/insurecrm-backend/internal/customers"
	"github.com/mariaquintana/insurecrm-backend/internal/notifications"
	"github.com/mariaquintana/insurecrm-backend/internal/offlinequeue"
	"github.com/mariaquintana/insurecrm-backend/internal/policies"
	"github.com/mariaquintana/insurecrm-backend/pkg/auth/session"
	"github.com/mariaquintana/insurecrm-backend/pkg/config"
	"github.com/mariaquintana/insurecrm-backend/pkg/db"
	"github.com/mariaquintana/insurecrm-backend/pkg/enums"
	"github.com/mariaquintana/insurecrm-backend/pkg/logger"
	"github.com/mariaquintana/insurecrm-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Grouping them in a struct
// keeps cmd/api wiring readable as the route table grows.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionChecker session.AccessSessionChecker

	AuthService     auth.Service
	RegisterService auth.RegisterService
	Policies        policies.Service
	PolicySync      offlinequeue.RemoteStore
	Customers       customers.Service
	Commissions     commissions.Service
	Notifications   notifications.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	// A nil *redis.Client stored in an interface is not a nil interface;
	// resolve it here so the middlewares' nil checks behave.
	var idemStore redis.IdempotencyStore
	var limiterStore middleware.LimiterStore
	var redisPinger redis.Pinger
	if deps.Redis != nil {
		idemStore = deps.Redis
		limiterStore = deps.Redis
		redisPinger = deps.Redis
	}

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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, redisPinger))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Post("/validate", controllers.PublicValidate(logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		// Registration is open outside production; in production it sits
		// behind an authenticated employee.
		if !cfg.App.IsProd() {
			r.With(middleware.AuthRateLimit(registerPolicy, limiterStore, logg)).Post("/register/employee", controllers.RegisterEmployee(deps.RegisterService, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, limiterStore, logg)).Post("/register/agent", controllers.RegisterAgent(deps.RegisterService, logg))
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
		r.Use(middleware.Idempotency(idemStore, logg))
		r.Use(middleware.RateLimit(limiterStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/policies", func(r chi.Router) {
			r.Post("/", controllers.CreatePolicy(deps.Policies, logg))
			r.Get("/", controllers.ListPolicies(deps.Policies, logg))
			r.Post("/sync", controllers.SyncPolicies(deps.PolicySync, logg))
			r.Get("/{policyId}", controllers.GetPolicy(deps.Policies, logg))
			r.Delete("/{policyId}", controllers.CancelPolicy(deps.Policies, logg))
			r.With(middleware.RequireRole(string(enums.CreatorTypeEmployee), logg)).Post("/{policyId}/activate", controllers.ActivatePolicy(deps.Policies, logg))
		})

		r.Route("/v1/customers", func(r chi.Router) {
			r.Post("/", controllers.CreateCustomer(deps.Customers, logg))
			r.Get("/", controllers.SearchCustomers(deps.Customers, logg))
			r.Get("/{customerId}", controllers.GetCustomer(deps.Customers, logg))
			r.Patch("/{customerId}", controllers.UpdateCustomer(deps.Customers, logg))
		})

		r.Route("/v1/commission-rates", func(r chi.Router) {
			r.Get("/", controllers.ListCommissionRates(deps.Commissions, logg))
			r.Get("/quote", controllers.QuoteCommission(deps.Commissions, logg))
			r.With(middleware.RequireRole(string(enums.CreatorTypeEmployee), logg)).Post("/", controllers.CreateCommissionRate(deps.Commissions, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})

		// In production, employees provision new actor accounts here.
		if cfg.App.IsProd() {
			r.Route("/v1/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.CreatorTypeEmployee), logg))
				r.Post("/register/employee", controllers.RegisterEmployee(deps.RegisterService, logg))
				r.Post("/register/agent", controllers.RegisterAgent(deps.RegisterService, logg))
			})
		}
	})

	return r
}
