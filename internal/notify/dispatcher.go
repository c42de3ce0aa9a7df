package notify

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fixam/fixam-site/internal/feedback"
	"github.com/fixam/fixam-site/internal/leads"
	"github.com/fixam/fixam-site/internal/observability/metrics"
	"github.com/fixam/fixam-site/pkg/logging"
)

var tracer = otel.Tracer("fixam/notify")

const (
	defaultEmailTimeout   = 8 * time.Second
	defaultWebhookTimeout = 5 * time.Second
)

// Config controls which channels fire and how messages are addressed.
type Config struct {
	Enabled        bool
	EmailTo        []string
	EmailFrom      string
	ReplyTo        string
	SubjectPrefix  string
	EmailTimeout   time.Duration
	WebhookTimeout time.Duration
}

// Dispatcher fans a notification out to every configured channel. It never
// reports failure to its caller.
type Dispatcher struct {
	cfg     Config
	email   EmailSender
	webhook *WebhookSender
	logger  *logging.Logger
	metrics *metrics.SiteMetrics
}

// NewDispatcher wires the channels. email and webhook may be nil.
func NewDispatcher(cfg Config, email EmailSender, webhook *WebhookSender, logger *logging.Logger, m *metrics.SiteMetrics) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "Fixam"
	}
	if cfg.EmailTimeout <= 0 {
		cfg.EmailTimeout = defaultEmailTimeout
	}
	if cfg.WebhookTimeout <= 0 {
		cfg.WebhookTimeout = defaultWebhookTimeout
	}
	return &Dispatcher{cfg: cfg, email: email, webhook: webhook, logger: logger, metrics: m}
}

// SubjectPrefix is the prefix applied to every subject.
func (d *Dispatcher) SubjectPrefix() string { return d.cfg.SubjectPrefix }

// NotifyLead announces an accepted lead.
func (d *Dispatcher) NotifyLead(ctx context.Context, lead leads.Lead) {
	if !d.cfg.Enabled {
		return
	}
	msg, err := RenderLead(d.cfg.SubjectPrefix, lead)
	if err != nil {
		d.logger.Error("notification render failed", "error", err, "kind", "lead")
		return
	}
	d.dispatch(ctx, "lead", msg)
}

// NotifyFeedback announces accepted feedback.
func (d *Dispatcher) NotifyFeedback(ctx context.Context, fb feedback.Feedback) {
	if !d.cfg.Enabled {
		return
	}
	msg, err := RenderFeedback(d.cfg.SubjectPrefix, fb)
	if err != nil {
		d.logger.Error("notification render failed", "error", err, "kind", "feedback")
		return
	}
	d.dispatch(ctx, "feedback", msg)
}

// NotifyText sends a free-form message through every channel.
func (d *Dispatcher) NotifyText(ctx context.Context, subject, text string) {
	if !d.cfg.Enabled {
		return
	}
	msg, err := RenderText(subject, text)
	if err != nil {
		d.logger.Error("notification render failed", "error", err, "kind", "text")
		return
	}
	d.dispatch(ctx, "text", msg)
}

func (d *Dispatcher) emailEnabled() bool {
	return d.email != nil && len(d.cfg.EmailTo) > 0 && d.cfg.EmailFrom != ""
}

// dispatch waits for every channel. A failing channel does not cancel the others.
func (d *Dispatcher) dispatch(ctx context.Context, kind string, msg Rendered) {
	ctx, span := tracer.Start(ctx, "notify.dispatch", trace.WithAttributes(
		attribute.String("notify.kind", kind),
	))
	defer span.End()

	var g errgroup.Group
	if d.emailEnabled() {
		g.Go(func() error {
			d.deliver(ctx, span, "email", d.cfg.EmailTimeout, func(ctx context.Context) error {
				return d.email.Send(ctx, EmailMessage{
					From:    d.cfg.EmailFrom,
					To:      d.cfg.EmailTo,
					ReplyTo: d.cfg.ReplyTo,
					Subject: msg.Subject,
					Text:    msg.Text,
					HTML:    msg.HTML,
				})
			})
			return nil
		})
	}
	if d.webhook != nil {
		g.Go(func() error {
			d.deliver(ctx, span, "webhook", d.cfg.WebhookTimeout, func(ctx context.Context) error {
				return d.webhook.Post(ctx, msg.Text)
			})
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, span trace.Span, channel string, timeout time.Duration, send func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var err error
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("notify: %s channel panicked: %v", channel, rec)
			d.report(span, channel, err)
		}
	}()

	err = send(ctx)
	d.report(span, channel, err)
}

func (d *Dispatcher) report(span trace.Span, channel string, err error) {
	d.metrics.ObserveNotification(channel, err)
	if err != nil {
		span.RecordError(err, trace.WithAttributes(attribute.String("notify.channel", channel)))
		span.SetStatus(codes.Error, "notification failed")
		d.logger.Error("notification failed", "channel", channel, "error", err)
	}
}
