package bootstrap

import (
	"context"
	"crypto/tls"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/fixam/fixam-site/internal/api/router"
	appconfig "github.com/fixam/fixam-site/internal/config"
	"github.com/fixam/fixam-site/internal/credentials"
	"github.com/fixam/fixam-site/internal/feedback"
	"github.com/fixam/fixam-site/internal/forms"
	"github.com/fixam/fixam-site/internal/handoff"
	"github.com/fixam/fixam-site/internal/leads"
	"github.com/fixam/fixam-site/internal/news"
	"github.com/fixam/fixam-site/internal/notify"
	"github.com/fixam/fixam-site/internal/observability/metrics"
	"github.com/fixam/fixam-site/internal/sheets"
	"github.com/fixam/fixam-site/internal/testimonials"
	"github.com/fixam/fixam-site/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, falling back to in-memory dedup", "error", err)
		return nil
	}
	return client
}

// BuildDeduper shares the handoff window through Redis when available.
func BuildDeduper(client *redis.Client) handoff.Deduper {
	if client == nil {
		return handoff.NewWindow(handoff.DefaultTTL)
	}
	return handoff.NewRedisWindow(client, handoff.DefaultTTL)
}

// BuildSheetsAPI returns the Google Sheets client, or nil when credentials
// are missing or unusable. Stores built on a nil API only log rows.
func BuildSheetsAPI(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) sheets.API {
	if logger == nil {
		logger = logging.Default()
	}
	account := credentials.Load(cfg.GoogleCredentials, logger)
	if account == nil {
		return nil
	}
	api, err := sheets.NewGoogleAPI(ctx, account)
	if err != nil {
		logger.Error("failed to create sheets client", "error", err)
		return nil
	}
	return api
}

// BuildEmailSender picks the email provider. In auto mode Resend wins over
// SendGrid; SES is only used when requested explicitly. ses may be nil.
func BuildEmailSender(cfg *appconfig.Config, ses notify.SESAPI, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	resend := func() notify.EmailSender {
		return notify.NewResendSender(notify.ResendConfig{APIKey: cfg.ResendAPIKey}, logger)
	}
	sendgrid := func() notify.EmailSender {
		return notify.NewSendGridSender(notify.SendGridConfig{APIKey: cfg.SendGridAPIKey}, logger)
	}

	switch cfg.EmailProvider {
	case "resend":
		if cfg.ResendAPIKey != "" {
			return resend()
		}
	case "sendgrid":
		if cfg.SendGridAPIKey != "" {
			return sendgrid()
		}
	case "ses":
		if ses != nil {
			return notify.NewSESSender(ses, logger)
		}
	case "stub":
		return notify.NewStubEmailSender(logger)
	default:
		if cfg.ResendAPIKey != "" {
			return resend()
		}
		if cfg.SendGridAPIKey != "" {
			return sendgrid()
		}
	}
	if len(cfg.NotifyEmailTo) > 0 {
		logger.Warn("no email provider configured, notifications are logged only", "provider", cfg.EmailProvider)
	}
	return notify.NewStubEmailSender(logger)
}

// Deps are the external clients the router wiring needs. Every field is optional.
type Deps struct {
	Redis          *redis.Client
	Sheets         sheets.API
	SES            notify.SESAPI
	Metrics        *metrics.SiteMetrics
	MetricsHandler http.Handler
	HTTPClient     *http.Client
}

// BuildRouterConfig wires every site endpoint from configuration.
func BuildRouterConfig(cfg *appconfig.Config, deps Deps, logger *logging.Logger) *router.Config {
	if logger == nil {
		logger = logging.Default()
	}
	m := deps.Metrics
	support := forms.Support{Email: cfg.SupportEmail, Phone: cfg.SupportPhone}

	webhook := notify.NewWebhookSender(cfg.NotifyWebhookURL, deps.HTTPClient)
	dispatcher := notify.NewDispatcher(notify.Config{
		Enabled:       cfg.NotifyEnabled,
		EmailTo:       cfg.NotifyEmailTo,
		EmailFrom:     cfg.NotifyEmailFrom,
		ReplyTo:       cfg.NotifyEmailReplyTo,
		SubjectPrefix: cfg.NotifySubjectPrefix,
	}, BuildEmailSender(cfg, deps.SES, logger), webhook, logger, m)

	leadStore := sheets.NewRowStore(deps.Sheets, cfg.LeadsSheetID, cfg.LeadsSheetRange, logger, m)
	feedbackStore := sheets.NewRowStore(deps.Sheets, cfg.FeedbackSheetID, cfg.FeedbackSheetRange, logger, m)

	tcfg := testimonials.Config{FeedbackRange: feedbackStore.Range(), LegacyRange: cfg.FeedbackFormSheetRange}
	if feedbackStore.Configured() {
		tcfg.Feedback = feedbackStore
	}
	if legacy := sheets.NewRowStore(deps.Sheets, cfg.FeedbackFormSheetID, cfg.FeedbackFormSheetRange, logger, m); legacy.Configured() {
		tcfg.Legacy = legacy
	}

	leadService := leads.NewService(leadStore, dispatcher, support, logger, m)
	feedbackService := feedback.NewService(feedbackStore, dispatcher, feedback.Options{
		RequireApproval: cfg.FeedbackRequireApproval,
		Support:         support,
	}, logger, m)
	aggregator := news.NewAggregator(news.Options{
		Sources:    news.ParseSources(cfg.NewsFeeds),
		TTL:        cfg.NewsCacheTTL,
		HTTPClient: deps.HTTPClient,
	}, logger, m)

	return &router.Config{
		Logger:              logger,
		LeadsHandler:        leads.NewHandler(leadService, logger),
		FeedbackHandler:     feedback.NewHandler(feedbackService, logger),
		TestimonialsHandler: testimonials.NewHandler(testimonials.NewService(tcfg, logger)),
		NewsHandler:         news.NewHandler(aggregator, logger),
		HandoffHandler: handoff.NewHandler(handoff.HandlerConfig{
			Secret:        cfg.BotpressWebhookSecret,
			SubjectPrefix: dispatcher.SubjectPrefix(),
		}, BuildDeduper(deps.Redis), dispatcher, logger, m),
		MetricsHandler:     deps.MetricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		FormRateLimitRPS:   cfg.FormRateLimitRPS,
		FormRateLimitBurst: cfg.FormRateLimitBurst,
	}
}
