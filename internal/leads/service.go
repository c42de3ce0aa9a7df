package leads

import (
	"context"
	"net/url"
	"time"

	"github.com/fixam/fixam-site/internal/forms"
	"github.com/fixam/fixam-site/internal/observability/metrics"
	"github.com/fixam/fixam-site/pkg/logging"
)

const successMessage = "Thanks — we'll be in touch shortly."

// Store persists accepted leads. One call appends one row.
type Store interface {
	Append(ctx context.Context, row []string) error
}

// Notifier alerts the team about an accepted lead. It must not fail the submission.
type Notifier interface {
	NotifyLead(ctx context.Context, lead Lead)
}

// Service runs a lead submission from raw form values to the response state.
type Service struct {
	store    Store
	notifier Notifier
	support  forms.Support
	logger   *logging.Logger
	metrics  *metrics.SiteMetrics
	now      func() time.Time
}

// NewService wires the lead pipeline. notifier may be nil.
func NewService(store Store, notifier Notifier, support forms.Support, logger *logging.Logger, m *metrics.SiteMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		support:  support,
		logger:   logger.With("form", "lead"),
		metrics:  m,
		now:      time.Now,
	}
}

// Submit validates, stores and announces a lead. Store failures and panics
// surface only as an opaque, correlated failure state.
func (s *Service) Submit(ctx context.Context, values url.Values, meta forms.RequestMeta) (state forms.State) {
	defer func() {
		if rec := recover(); rec != nil {
			ref := forms.NewReference()
			s.logger.Error("lead submission panicked", "ref", ref, "panic", rec)
			s.metrics.ObserveSubmission("lead", "error")
			state = s.support.Failure(ref)
		}
	}()

	if forms.Clean(values.Get(forms.HoneypotField)) != "" {
		s.logger.Info("honeypot triggered, submission dropped", "user_agent", meta.UserAgent)
		s.metrics.ObserveSubmission("lead", "honeypot")
		return forms.Success(successMessage)
	}

	lead, errs := Validate(InputFromValues(values, meta))
	if len(errs) > 0 {
		s.metrics.ObserveSubmission("lead", "invalid")
		return forms.Invalid(errs)
	}
	lead.CreatedAt = s.now().UTC()

	if err := s.store.Append(ctx, lead.Row()); err != nil {
		ref := forms.NewReference()
		s.logger.Error("failed to store lead", "ref", ref, "error", err, "kind", lead.Kind)
		s.metrics.ObserveSubmission("lead", "error")
		return s.support.Failure(ref)
	}

	if s.notifier != nil {
		s.notifier.NotifyLead(ctx, lead)
	}

	s.logger.Info("lead accepted", "kind", lead.Kind, "service", lead.ServiceSlug)
	s.metrics.ObserveSubmission("lead", "success")
	return forms.Success(successMessage)
}
