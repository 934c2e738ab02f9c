package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shinedeck/shinedeck-api/app/observability/metrics"
	"github.com/shinedeck/shinedeck-api/config"
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
	"github.com/shinedeck/shinedeck-api/internal/router"
)

// Container owns every wired dependency of the API process.
type Container struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool

	Limiter  *ratelimit.Limiter
	Resolver *auth.Resolver

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

// NewContainer builds repositories, services and handlers on top of the
// given pool. Optional integrations (OAuth, Stripe, SES, reply assist)
// degrade to disabled when their config is absent.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, pool *pgxpool.Pool) (*Container, error) {
	c := &Container{Cfg: cfg, Logger: logger, Pool: pool}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to construct token verifier: %w", err)
	}
	c.Resolver = auth.NewResolver(verifier, cfg.Auth.CookieName)

	c.Limiter = ratelimit.New()
	c.Limiter.OnReject = func() {
		metrics.Get().RateLimitRejectionsTotal.Add(context.Background(), 1)
	}

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	profileRepo := profiles.NewPostgresRepository(pool, logger)
	customerRepo := customers.NewPostgresRepository(pool, logger)
	bookingRepo := bookings.NewPostgresRepository(pool, logger)
	quoteRepo := quotes.NewPostgresRepository(pool, logger)
	jobRepo := jobs.NewPostgresRepository(pool, logger)
	paymentRepo := payments.NewPostgresRepository(pool, logger)
	messageRepo := messaging.NewPostgresRepository(pool, logger)
	analyticsRepo := analytics.NewPostgresRepository(pool, logger)
	websiteRepo := website.NewPostgresRepository(pool, logger)

	scoped := auth.NewUserScopedDB(pool)

	authService := auth.NewAuthService(authRepo, cfg, logger)
	profileService := profiles.NewService(profileRepo, logger)
	customerService := customers.NewService(customerRepo, profileRepo, scoped, logger)
	bookingService := bookings.NewService(bookingRepo, profileRepo, logger)
	quoteService := quotes.NewService(quoteRepo, profileRepo, logger)
	jobService := jobs.NewService(jobRepo, profileRepo, logger)
	websiteService := website.NewService(websiteRepo, profileRepo, logger)
	analyticsService := analytics.NewService(analyticsRepo, profileRepo, cfg.Analytics.CacheTTL, logger)

	provider := payments.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.Currency)
	paymentService := payments.NewService(paymentRepo, provider, websiteService, profileRepo, logger)

	sender, err := newEmailSender(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to construct email sender: %w", err)
	}
	drafter := newReplyDrafter(ctx, cfg, logger)
	messagingService := messaging.NewService(messageRepo, sender, drafter, profileRepo, logger)

	c.AuthHandler = auth.NewAuthHandlerImpl(authService, cfg, logger)
	if cfg.OAuth.GoogleKey != "" {
		c.OAuthHandler = auth.NewOAuthHandler(authService, authRepo, cfg, logger)
	}
	c.ProfileHandler = profiles.NewHandlerImpl(profileService, logger)
	c.CustomerHandler = customers.NewHandlerImpl(customerService, logger)
	c.BookingHandler = bookings.NewHandlerImpl(bookingService, logger)
	c.QuoteHandler = quotes.NewHandlerImpl(quoteService, logger)
	c.JobHandler = jobs.NewHandlerImpl(jobService, logger)
	c.PaymentHandler = payments.NewHandlerImpl(paymentService, logger)
	c.MessagingHandler = messaging.NewHandlerImpl(messagingService, logger)
	c.AnalyticsHandler = analytics.NewHandlerImpl(analyticsService, logger)
	c.WebsiteHandler = website.NewHandlerImpl(websiteService, logger)

	return c, nil
}

// RouterConfig assembles the router wiring from the container.
func (c *Container) RouterConfig() *router.Config {
	return &router.Config{
		Cfg:                    c.Cfg,
		Pool:                   c.Pool,
		Limiter:                c.Limiter,
		AuthenticateMiddleware: auth.Authenticate(c.Logger, c.Resolver),
		AuthHandler:            c.AuthHandler,
		OAuthHandler:           c.OAuthHandler,
		ProfileHandler:         c.ProfileHandler,
		CustomerHandler:        c.CustomerHandler,
		BookingHandler:         c.BookingHandler,
		QuoteHandler:           c.QuoteHandler,
		JobHandler:             c.JobHandler,
		PaymentHandler:         c.PaymentHandler,
		MessagingHandler:       c.MessagingHandler,
		AnalyticsHandler:       c.AnalyticsHandler,
		WebsiteHandler:         c.WebsiteHandler,
	}
}

func newVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	if cfg.Auth.Provider == "oidc" {
		return auth.NewOIDCVerifier(ctx, cfg.Auth)
	}
	return auth.NewHS256Verifier(cfg.JWT)
}

func newEmailSender(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.EmailSender, error) {
	if cfg.Email.DryRun {
		return messaging.NewSESSender(nil, cfg.Email.From, true, logger), nil
	}
	client, err := messaging.NewSESClientFromEnv(ctx, cfg.Email.Region)
	if err != nil {
		return nil, err
	}
	return messaging.NewSESSender(client, cfg.Email.From, false, logger), nil
}

// newReplyDrafter returns nil when assist is disabled or the client cannot
// be constructed; the messaging service reports the feature as unavailable.
func newReplyDrafter(ctx context.Context, cfg *config.Config, logger *slog.Logger) messaging.ReplyDrafter {
	if !cfg.Assist.Enabled {
		return nil
	}
	drafter, err := messaging.NewGenAIDrafter(ctx, cfg.Assist.Model)
	if err != nil {
		logger.Warn("Reply assist disabled", slog.Any("error", err))
		return nil
	}
	return drafter
}
