package metrics

import "github.com/prometheus/client_golang/prometheus"

// SiteMetrics exposes counters/histograms for the submission pipeline and side paths.
type SiteMetrics struct {
	submissionsTotal  *prometheus.CounterVec
	notificationTotal *prometheus.CounterVec
	feedFetchTotal    *prometheus.CounterVec
	handoffTotal      *prometheus.CounterVec
	storeLatency      *prometheus.HistogramVec
}

func NewSiteMetrics(reg prometheus.Registerer) *SiteMetrics {
	m := &SiteMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixam",
			Subsystem: "forms",
			Name:      "submissions_total",
			Help:      "Form submissions by form and outcome",
		}, []string{"form", "outcome"}),
		notificationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixam",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Notification channel deliveries by channel and status",
		}, []string{"channel", "status"}),
		feedFetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixam",
			Subsystem: "news",
			Name:      "feed_fetch_total",
			Help:      "RSS feed fetches by source and status",
		}, []string{"source", "status"}),
		handoffTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixam",
			Subsystem: "handoff",
			Name:      "webhooks_total",
			Help:      "Inbound chat handoff webhooks by outcome",
		}, []string{"outcome"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fixam",
			Subsystem: "sheets",
			Name:      "append_latency_seconds",
			Help:      "Latency of spreadsheet row appends",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.notificationTotal, m.feedFetchTotal, m.handoffTotal, m.storeLatency)
	return m
}

func (m *SiteMetrics) ObserveSubmission(form, outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(form, outcome).Inc()
}

func (m *SiteMetrics) ObserveNotification(channel string, err error) {
	if m == nil {
		return
	}
	m.notificationTotal.WithLabelValues(channel, statusLabel(err)).Inc()
}

func (m *SiteMetrics) ObserveFeedFetch(source string, err error) {
	if m == nil {
		return
	}
	m.feedFetchTotal.WithLabelValues(source, statusLabel(err)).Inc()
}

func (m *SiteMetrics) ObserveHandoff(outcome string) {
	if m == nil {
		return
	}
	m.handoffTotal.WithLabelValues(outcome).Inc()
}

func (m *SiteMetrics) ObserveStoreLatency(seconds float64, err error) {
	if m == nil {
		return
	}
	m.storeLatency.WithLabelValues(statusLabel(err)).Observe(seconds)
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
