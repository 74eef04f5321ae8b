package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/salonbook-backend/api/controllers"
	platformcontrollers "github.com/angelmondragon/salonbook-backend/api/controllers/platform"
	"github.com/angelmondragon/salonbook-backend/api/middleware"
	"github.com/angelmondragon/salonbook-backend/internal/appointments"
	"github.com/angelmondragon/salonbook-backend/internal/auth"
	"github.com/angelmondragon/salonbook-backend/internal/catalog"
	checkoutsvc "github.com/angelmondragon/salonbook-backend/internal/checkout"
	"github.com/angelmondragon/salonbook-backend/internal/clients"
	"github.com/angelmondragon/salonbook-backend/internal/ledger"
	"github.com/angelmondragon/salonbook-backend/internal/settings"
	"github.com/angelmondragon/salonbook-backend/internal/tenants"
	"github.com/angelmondragon/salonbook-backend/pkg/auth/session"
	"github.com/angelmondragon/salonbook-backend/pkg/config"
	"github.com/angelmondragon/salonbook-backend/pkg/db"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/metrics"
	"github.com/angelmondragon/salonbook-backend/pkg/redis"
)

// UsageGate is the slice of the plan gate the HTTP surface reads and resets.
type UsageGate interface {
	controllers.UsageReader
	platformcontrollers.UsageResetter
}

// Dependencies groups everything the router hands to controllers.
// Nil services surface as 500s on their routes rather than panics.
type Dependencies struct {
	DB          db.Pinger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics

	Auth         auth.Service
	Tenants      tenants.Service
	TenantLookup middleware.TenantLookup
	Gate         UsageGate

	Catalog      catalog.Service
	Settings     settings.Service
	Booking      controllers.BookingFlow
	Appointments appointments.Service
	Clients      clients.Service
	Ledger       ledger.Service
	Dashboard    controllers.DashboardReader
	Checkout     checkoutsvc.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	readiness := map[string]controllers.Pinger{}
	if deps.DB != nil {
		readiness["db"] = deps.DB
	}
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
	}

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, logg, readiness))
	r.Handle("/metrics", promhttp.Handler())

	idempotency := middleware.Idempotency(idempotencyStore(deps.Redis), logg, middleware.DefaultIdempotencyTTL)
	checkoutIdempotency := middleware.Idempotency(idempotencyStore(deps.Redis), logg, middleware.CheckoutIdempotencyTTL)
	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginTenantLimit,
	)
	platformLoginPolicy := middleware.NewAuthRateLimitPolicy(
		"platform-login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		0,
	)
	limiter := rateLimitStore(deps.Redis)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})
	r.With(middleware.AuthRateLimit(platformLoginPolicy, limiter, logg)).
		Post("/api/v1/platform/auth/login", controllers.PlatformAuthLogin(deps.Auth, logg))

	r.Get("/api/v1/public/ping", controllers.PublicPing())

	r.Route("/api/v1/public/{tenant}", func(r chi.Router) {
		r.Use(middleware.ResolveTenant(deps.TenantLookup, logg, true))

		r.Get("/catalog", controllers.PublicCatalog(deps.Catalog, deps.Settings, logg))

		r.Route("/booking", func(r chi.Router) {
			r.Post("/", controllers.StartBooking(deps.Booking, logg))
			r.Route("/{draftId}", func(r chi.Router) {
				r.Get("/", controllers.GetBooking(deps.Booking, logg))
				r.Delete("/", controllers.AbandonBooking(deps.Booking, logg))
				r.Post("/professional", controllers.SelectBookingProfessional(deps.Booking, logg))
				r.Post("/schedule", controllers.ScheduleBooking(deps.Booking, logg))
				for _, action := range []string{"continue", "view-products", "skip-products", "back"} {
					r.Post("/"+action, controllers.BookingTransition(deps.Booking, logg, action))
				}
				r.Post("/cart/{productId}/increment", controllers.BookingCartChange(deps.Booking, logg, true))
				r.Post("/cart/{productId}/decrement", controllers.BookingCartChange(deps.Booking, logg, false))
				r.Patch("/details", controllers.UpdateBookingDetails(deps.Booking, logg))
				r.With(idempotency).Post("/confirm", controllers.ConfirmBooking(deps.Booking, logg))
				r.Post("/done", controllers.FinishBooking(deps.Booking, logg))
			})
		})

		r.Get("/appointments", controllers.PublicMyAppointments(deps.Appointments, logg))
		r.Post("/appointments/{appointmentId}/cancel", controllers.PublicCancelAppointment(deps.Appointments, logg))
	})

	r.Route("/api/v1/admin/{tenant}", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(logg, enums.ActorRoleOwner, enums.ActorRolePlatform))
		r.Use(middleware.ResolveTenant(deps.TenantLookup, logg, false))
		r.Use(middleware.RequireTenantAccess(logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/services", func(r chi.Router) {
			r.Get("/", controllers.AdminListServices(deps.Catalog, logg))
			r.Post("/", controllers.AdminCreateService(deps.Catalog, logg))
			r.Get("/{serviceId}", controllers.AdminGetService(deps.Catalog, logg))
			r.Put("/{serviceId}", controllers.AdminUpdateService(deps.Catalog, logg))
			r.Delete("/{serviceId}", controllers.AdminDeleteService(deps.Catalog, logg))
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(deps.Catalog, logg))
			r.Post("/", controllers.AdminCreateProduct(deps.Catalog, logg))
			r.Get("/low-stock", controllers.AdminLowStock(deps.Catalog, deps.Settings, logg))
			r.Get("/{productId}", controllers.AdminGetProduct(deps.Catalog, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(deps.Catalog, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.Catalog, logg))
			r.Post("/{productId}/stock", controllers.AdminAdjustStock(deps.Catalog, logg))
		})
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", controllers.AdminListEmployees(deps.Catalog, logg))
			r.Post("/", controllers.AdminCreateEmployee(deps.Catalog, logg))
			r.Get("/{employeeId}", controllers.AdminGetEmployee(deps.Catalog, logg))
			r.Put("/{employeeId}", controllers.AdminUpdateEmployee(deps.Catalog, logg))
			r.Delete("/{employeeId}", controllers.AdminDeleteEmployee(deps.Catalog, logg))
		})
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", controllers.AdminListClients(deps.Clients, logg))
			r.Put("/", controllers.AdminUpsertClient(deps.Clients, logg))
			r.Get("/{phone}", controllers.AdminGetClient(deps.Clients, deps.Appointments, logg))
		})
		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", controllers.AdminListAppointments(deps.Appointments, logg))
			r.Get("/{appointmentId}", controllers.AdminGetAppointment(deps.Appointments, logg))
			r.Post("/{appointmentId}/cancel", controllers.AdminCancelAppointment(deps.Appointments, logg))
			r.With(checkoutIdempotency).Post("/{appointmentId}/checkout", controllers.AdminCheckoutAppointment(deps.Checkout, logg))
		})

		r.With(idempotency).Post("/transactions", controllers.AdminRecordTransaction(deps.Ledger, logg))
		r.Get("/transactions", controllers.AdminListTransactions(deps.Ledger, logg))
		r.Get("/finances/summary", controllers.AdminFinanceSummary(deps.Ledger, logg))
		r.Get("/dashboard", controllers.AdminDashboard(deps.Dashboard, logg))
		r.Get("/settings", controllers.AdminGetSettings(deps.Settings, logg))
		r.Put("/settings", controllers.AdminUpdateSettings(deps.Settings, logg))
		r.Get("/usage", controllers.AdminUsage(deps.Gate, logg))
	})

	r.Route("/api/v1/platform", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(logg, enums.ActorRolePlatform))

		r.Get("/ping", controllers.AdminPing())
		r.Get("/overview", platformcontrollers.Overview(deps.Tenants, logg))
		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", platformcontrollers.ListTenants(deps.Tenants, logg))
			r.Post("/", platformcontrollers.CreateTenant(deps.Tenants, logg))
			r.Get("/{tenant}", platformcontrollers.GetTenant(deps.Tenants, logg))
			r.Patch("/{tenant}", platformcontrollers.UpdateTenant(deps.Tenants, logg))
			r.Post("/{tenant}/reset-usage", platformcontrollers.ResetTenantUsage(deps.Tenants, deps.Gate, logg))
		})
		r.Route("/plans", func(r chi.Router) {
			r.Get("/", platformcontrollers.ListPlans(deps.Tenants, logg))
			r.Put("/{code}", platformcontrollers.UpsertPlan(deps.Tenants, logg))
			r.Delete("/{code}", platformcontrollers.DeletePlan(deps.Tenants, logg))
		})
	})

	return r
}

// A nil *redis.Client must reach the middlewares as a nil interface so they skip.
func idempotencyStore(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}

func rateLimitStore(client *redis.Client) middleware.RateLimiterStore {
	if client == nil {
		return nil
	}
	return client
}
