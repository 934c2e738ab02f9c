package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/shinedeck/shinedeck-api/config"
	"github.com/shinedeck/shinedeck-api/internal/api"
	"github.com/shinedeck/shinedeck-api/internal/api/analytics"
	"github.com/shinedeck/shinedeck-api/internal/api/auth"
	"github.com/shinedeck/shinedeck-api/internal/api/bookings"
	"github.com/shinedeck/shinedeck-api/internal/api/customers"
	"github.com/shinedeck/shinedeck-api/internal/api/jobs"
	"github.com/shinedeck/shinedeck-api/internal/api/messaging"
	"github.com/shinedeck/shinedeck-api/internal/api/payments"
	"github.com/shinedeck/shinedeck-api/internal/api/profiles"
	"github.com/shinedeck/shinedeck-api/internal/api/quotes"
	"github.com/shinedeck/shinedeck-api/internal/api/website"
	"github.com/shinedeck/shinedeck-api/internal/ratelimit"
)

// Config carries the wired handlers and middleware the router mounts.
type Config struct {
	Cfg *config.Config

	Pool    *pgxpool.Pool
	Limiter *ratelimit.Limiter

	AuthenticateMiddleware func(http.Handler) http.Handler

	AuthHandler      auth.Handler
	OAuthHandler     *auth.OAuthHandler
	ProfileHandler   profiles.Handler
	CustomerHandler  customers.Handler
	BookingHandler   bookings.Handler
	QuoteHandler     quotes.Handler
	JobHandler       jobs.Handler
	PaymentHandler   payments.Handler
	MessagingHandler messaging.Handler
	AnalyticsHandler analytics.Handler
	WebsiteHandler   website.Handler
}

// SetupRouter mounts every route. Server-wide middleware (request ID,
// recoverer, request logging) are applied before this router in main.go.
func SetupRouter(rc *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check: degraded when the database does not answer.
	r.Get("/ping", func(w http.ResponseWriter, req *http.Request) {
		if rc.Pool != nil {
			if err := rc.Pool.Ping(req.Context()); err != nil {
				api.ErrorResponse(w, req, api.CodeServiceDegraded, "Service degraded", nil)
				return
			}
		}
		api.SuccessResponse(w, req, http.StatusOK, map[string]string{"status": "ok"}, nil)
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	rl := rc.Cfg.RateLimit

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rc.Limiter.Middleware("api", rl.Default.Limit, rl.Default.Window))

		// Public auth routes carry the tighter auth bucket.
		r.Group(func(r chi.Router) {
			r.Use(rc.Limiter.Middleware("auth", rl.Auth.Limit, rl.Auth.Window))
			r.Post("/auth/register", rc.AuthHandler.Register)
			r.Post("/auth/login", rc.AuthHandler.Login)
			r.Post("/auth/refresh", rc.AuthHandler.RefreshSession)
			if rc.OAuthHandler != nil {
				r.Get("/auth/{provider}", rc.OAuthHandler.Begin)
				r.Get("/auth/{provider}/callback", rc.OAuthHandler.Callback)
			}
		})

		// Everything below requires a resolved identity.
		r.Group(func(r chi.Router) {
			r.Use(rc.AuthenticateMiddleware)

			r.Post("/auth/logout", rc.AuthHandler.Logout)
			r.Post("/auth/invalidate-tokens", rc.AuthHandler.InvalidateAllSessions)

			r.Get("/me", rc.ProfileHandler.GetMe)

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", rc.CustomerHandler.ListCustomers)
				r.Post("/", rc.CustomerHandler.CreateCustomer)
				r.Get("/{id}", rc.CustomerHandler.GetCustomer)
				r.Patch("/{id}", rc.CustomerHandler.UpdateCustomer)
				r.Delete("/{id}", rc.CustomerHandler.DeleteCustomer)
			})

			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", rc.BookingHandler.ListBookings)
				r.Post("/", rc.BookingHandler.CreateBooking)
				r.Post("/deposit-preview", rc.BookingHandler.DepositPreview)
				r.Get("/{id}", rc.BookingHandler.GetBooking)
				r.Patch("/{id}", rc.BookingHandler.UpdateBooking)
				r.Post("/{id}/cancel", rc.BookingHandler.CancelBooking)
			})

			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", rc.QuoteHandler.ListQuotes)
				r.Post("/", rc.QuoteHandler.CreateQuote)
				r.Get("/{id}", rc.QuoteHandler.GetQuote)
				r.Patch("/{id}", rc.QuoteHandler.UpdateQuote)
				r.Post("/{id}/accept", rc.QuoteHandler.AcceptQuote)
			})

			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", rc.JobHandler.ListJobs)
				r.Post("/", rc.JobHandler.CreateJob)
				r.Get("/{id}", rc.JobHandler.GetJob)
				r.Patch("/{id}", rc.JobHandler.UpdateJob)
				r.Post("/{id}/complete", rc.JobHandler.CompleteJob)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", rc.PaymentHandler.ListInvoices)
				r.Post("/", rc.PaymentHandler.CreateInvoice)
				r.Get("/{id}", rc.PaymentHandler.GetInvoice)
			})

			// Payment routes carry their own bucket on top of the default.
			r.Group(func(r chi.Router) {
				r.Use(rc.Limiter.Middleware("payments", rl.Payments.Limit, rl.Payments.Window))
				r.Post("/payments", rc.PaymentHandler.RecordPayment)
				r.Post("/payments/deposit-intent", rc.PaymentHandler.CreateDepositIntent)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Post("/", rc.MessagingHandler.SendMessage)
				r.Post("/suggest-reply", rc.MessagingHandler.SuggestReply)
				r.Get("/{customerId}", rc.MessagingHandler.ListThread)
			})

			r.Get("/analytics/dashboard", rc.AnalyticsHandler.GetDashboard)

			r.Route("/website", func(r chi.Router) {
				r.Get("/settings", rc.WebsiteHandler.GetSettings)
				r.Patch("/settings", rc.WebsiteHandler.UpdateSettings)
			})
		})
	})

	return r
}
