package feedback

import (
	"context"
	"net/url"
	"time"

	"github.com/fixam/fixam-site/internal/forms"
	"github.com/fixam/fixam-site/internal/observability/metrics"
	"github.com/fixam/fixam-site/pkg/logging"
)

const (
	msgReceived        = "Thanks — your feedback has been received."
	msgAwaitingApprove = "Thanks — your feedback has been received and will appear once approved."
)

// Store persists accepted feedback rows.
type Store interface {
	Append(ctx context.Context, row []string) error
}

// Notifier alerts the team about new feedback.
type Notifier interface {
	NotifyFeedback(ctx context.Context, fb Feedback)
}

// Options tune feedback acceptance.
type Options struct {
	RequireApproval bool
	Support         forms.Support
}

// Service runs a feedback submission end to end.
type Service struct {
	store    Store
	notifier Notifier
	opts     Options
	logger   *logging.Logger
	metrics  *metrics.SiteMetrics
	now      func() time.Time
}

func NewService(store Store, notifier Notifier, opts Options, logger *logging.Logger, m *metrics.SiteMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		opts:     opts,
		logger:   logger.With("form", "feedback"),
		metrics:  m,
		now:      time.Now,
	}
}

// Submit validates, stores and announces a feedback submission.
func (s *Service) Submit(ctx context.Context, values url.Values, meta forms.RequestMeta) (state forms.State) {
	defer func() {
		if rec := recover(); rec != nil {
			ref := forms.NewReference()
			s.logger.Error("feedback submission panicked", "ref", ref, "panic", rec)
			s.metrics.ObserveSubmission("feedback", "error")
			state = s.opts.Support.Failure(ref)
		}
	}()

	if forms.Clean(values.Get(forms.HoneypotField)) != "" {
		s.logger.Info("honeypot triggered, submission dropped", "user_agent", meta.UserAgent)
		s.metrics.ObserveSubmission("feedback", "honeypot")
		return s.success(forms.ParseBool(forms.Clean(values.Get("publishConsent"))))
	}

	fb, errs := Validate(InputFromValues(values, meta), s.opts.RequireApproval)
	if len(errs) > 0 {
		s.metrics.ObserveSubmission("feedback", "invalid")
		return forms.Invalid(errs)
	}
	fb.CreatedAt = s.now().UTC()

	if err := s.store.Append(ctx, fb.Row()); err != nil {
		ref := forms.NewReference()
		s.logger.Error("failed to store feedback", "ref", ref, "error", err)
		s.metrics.ObserveSubmission("feedback", "error")
		return s.opts.Support.Failure(ref)
	}

	if s.notifier != nil {
		s.notifier.NotifyFeedback(ctx, fb)
	}

	s.logger.Info("feedback accepted", "rating", fb.Rating, "approved", fb.Approved)
	s.metrics.ObserveSubmission("feedback", "success")
	return s.success(fb.PublishConsent)
}

func (s *Service) success(publishConsent bool) forms.State {
	if publishConsent && s.opts.RequireApproval {
		return forms.Success(msgAwaitingApprove)
	}
	return forms.Success(msgReceived)
}
