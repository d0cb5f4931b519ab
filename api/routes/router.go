package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/men4u-admin/api/controllers"
	"github.com/angelmondragon/men4u-admin/api/middleware"
	"github.com/angelmondragon/men4u-admin/internal/accesscontrol"
	"github.com/angelmondragon/men4u-admin/internal/activity"
	"github.com/angelmondragon/men4u-admin/internal/auth"
	"github.com/angelmondragon/men4u-admin/internal/customers"
	"github.com/angelmondragon/men4u-admin/internal/dashboard"
	"github.com/angelmondragon/men4u-admin/internal/outlets"
	"github.com/angelmondragon/men4u-admin/internal/owners"
	"github.com/angelmondragon/men4u-admin/internal/partners"
	"github.com/angelmondragon/men4u-admin/internal/qrtemplates"
	"github.com/angelmondragon/men4u-admin/internal/search"
	"github.com/angelmondragon/men4u-admin/internal/tickets"
	"github.com/angelmondragon/men4u-admin/pkg/config"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
)

type rateLimitStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// Services groups the console screens served under /api/v1.
type Services struct {
	Auth          auth.Service
	AccessControl accesscontrol.Service
	Outlets       outlets.Service
	Owners        owners.Service
	Partners      partners.Service
	QRTemplates   qrtemplates.Service
	Tickets       tickets.Service
	Customers     customers.Service
	Search        search.Service
	Dashboard     dashboard.Service
	Activity      activity.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	readiness []controllers.ReadinessCheck,
	verifier middleware.SessionVerifier,
	rateStore rateLimitStore,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	otpPolicy := middleware.NewOTPRateLimitPolicy("otp", cfg.OTPLimit.Window, cfg.OTPLimit.IPLimit, cfg.OTPLimit.MobileLimit)
	loginPolicy := middleware.NewOTPRateLimitPolicy("login", cfg.OTPLimit.Window, cfg.OTPLimit.IPLimit, cfg.OTPLimit.MobileLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness...))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.OTPRateLimit(otpPolicy, rateStore, logg)).Post("/otp", controllers.AuthRequestOTP(svc.Auth, logg))
			r.With(middleware.OTPRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(svc.Auth, cfg.Console, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(verifier, cfg.Console.CookieName, logg))

			r.Post("/auth/logout", controllers.AuthLogout(svc.Auth, cfg.Console, logg))
			r.Get("/auth/me", controllers.AuthMe(svc.Auth, logg))
			r.Patch("/auth/me", controllers.AuthUpdateMe(svc.Auth, logg))

			r.Get("/navigation", controllers.Navigation(logg))
			r.Get("/dashboard", controllers.Dashboard(svc.Dashboard, logg))

			r.Get("/functionalities", controllers.FunctionalityList(svc.AccessControl, logg))
			r.Post("/functionalities", controllers.FunctionalityCreate(svc.AccessControl, logg))
			r.Get("/roles", controllers.RoleList(svc.AccessControl, logg))

			r.Route("/outlets", func(r chi.Router) {
				r.Get("/", controllers.OutletList(svc.Outlets, logg))
				r.Get("/{outletId}", controllers.OutletDetail(svc.Outlets, logg))
				r.Patch("/{outletId}", controllers.OutletUpdate(svc.Outlets, logg))
			})

			r.Route("/owners", func(r chi.Router) {
				r.Get("/", controllers.OwnerList(svc.Owners, logg))
				r.Post("/", controllers.OwnerCreate(svc.Owners, logg))
				r.Get("/{ownerId}", controllers.OwnerDetail(svc.Owners, logg))
				r.Delete("/{ownerId}", controllers.OwnerDelete(svc.Owners, logg))
			})

			r.Route("/partners", func(r chi.Router) {
				r.Get("/", controllers.PartnerList(svc.Partners, logg))
				r.Post("/", controllers.PartnerCreate(svc.Partners, logg))
				r.Get("/{partnerId}", controllers.PartnerDetail(svc.Partners, logg))
				r.Patch("/{partnerId}", controllers.PartnerUpdate(svc.Partners, logg))
				r.Delete("/{partnerId}", controllers.PartnerDelete(svc.Partners, logg))
			})

			r.Route("/qr-templates", func(r chi.Router) {
				r.Get("/", controllers.QRTemplateList(svc.QRTemplates, logg))
				r.Post("/", controllers.QRTemplateCreate(svc.QRTemplates, logg))
				r.Get("/{templateId}", controllers.QRTemplateDetail(svc.QRTemplates, logg))
				r.Patch("/{templateId}", controllers.QRTemplateUpdate(svc.QRTemplates, logg))
				r.Delete("/{templateId}", controllers.QRTemplateDelete(svc.QRTemplates, logg))
			})

			r.Route("/tickets", func(r chi.Router) {
				r.Get("/outlets", controllers.TicketOutlets(svc.Tickets, logg))
				r.Get("/", controllers.TicketList(svc.Tickets, logg))
				r.Get("/{ticketId}", controllers.TicketDetail(svc.Tickets, logg))
				r.Post("/{ticketId}/messages", controllers.TicketSendMessage(svc.Tickets, logg))
				r.Patch("/{ticketId}/status", controllers.TicketUpdateStatus(svc.Tickets, logg))
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", controllers.CustomerList(svc.Customers, logg))
				r.Get("/{customerId}", controllers.CustomerDetail(svc.Customers, logg))
			})

			r.Post("/search", controllers.Search(svc.Search, logg))
			r.Get("/activity", controllers.ActivityList(svc.Activity, logg))
		})
	})

	return r
}
