package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fixam/fixam-site/internal/feedback"
	"github.com/fixam/fixam-site/internal/forms"
	"github.com/fixam/fixam-site/internal/handoff"
	"github.com/fixam/fixam-site/internal/leads"
	"github.com/fixam/fixam-site/internal/news"
	"github.com/fixam/fixam-site/internal/observability/metrics"
	"github.com/fixam/fixam-site/internal/testimonials"
	"github.com/fixam/fixam-site/pkg/logging"
)

type memoryStore struct{ rows [][]string }

func (m *memoryStore) Append(_ context.Context, row []string) error {
	m.rows = append(m.rows, row)
	return nil
}

type testDeps struct {
	leadRows     *memoryStore
	feedbackRows *memoryStore
}

func newTestRouter(t *testing.T, mutate func(*Config)) (http.Handler, *testDeps) {
	t.Helper()

	logger := logging.NewWithWriter(io.Discard, "error")
	reg := prometheus.NewRegistry()
	m := metrics.NewSiteMetrics(reg)
	support := forms.Support{Email: "info@fixam.co.uk", Phone: "+44 7733 738545"}
	deps := &testDeps{leadRows: &memoryStore{}, feedbackRows: &memoryStore{}}

	feeds := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<rss version="2.0"><channel><title>t</title><item><title>Advisory</title><link>https://x.example/1</link></item></channel></rss>`)
	}))
	t.Cleanup(feeds.Close)

	newsAggregator := news.NewAggregator(news.Options{
		Sources: []news.Source{{Name: "Test", URL: feeds.URL}},
	}, logger, m)
	leadService := leads.NewService(deps.leadRows, nil, support, logger, m)
	feedbackService := feedback.NewService(deps.feedbackRows, nil, feedback.Options{Support: support}, logger, m)

	cfg := &Config{
		Logger:              logger,
		LeadsHandler:        leads.NewHandler(leadService, logger),
		FeedbackHandler:     feedback.NewHandler(feedbackService, logger),
		TestimonialsHandler: testimonials.NewHandler(testimonials.NewService(testimonials.Config{}, logger)),
		NewsHandler:         news.NewHandler(newsAggregator, logger),
		HandoffHandler:      handoff.NewHandler(handoff.HandlerConfig{Secret: "s3cret"}, nil, nil, logger, m),
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  []string{"https://fixam.co.uk"},
	}
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg), deps
}

func TestRouterHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterLeadsEndpoint(t *testing.T) {
	router, deps := newTestRouter(t, nil)

	form := url.Values{
		"kind":     {"contact"},
		"fullName": {"Router Test"},
		"email":    {"router@example.com"},
		"message":  {"Interested in services"},
		"consent":  {"true"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if len(deps.leadRows.rows) != 1 {
		t.Fatalf("expected one lead row, got %d", len(deps.leadRows.rows))
	}
}

func TestRouterFeedbackEndpoint(t *testing.T) {
	router, deps := newTestRouter(t, nil)

	body := `{"fullName":"Router","rating":"5","feedback":"Great"}`
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if len(deps.feedbackRows.rows) != 1 {
		t.Fatalf("expected one feedback row, got %d", len(deps.feedbackRows.rows))
	}
}

func TestRouterReadEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	for _, path := range []string{"/api/feedbacks?limit=2", "/api/news"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusOK, rr.Code)
		}
		if !strings.Contains(rr.Header().Get("Cache-Control"), "public") {
			t.Fatalf("%s: expected public caching, got %q", path, rr.Header().Get("Cache-Control"))
		}
	}
}

func TestRouterHandoffRequiresSecret(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/botpress/handoff", strings.NewReader(`{}`)))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/botpress/handoff", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer s3cret")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader("website=bot"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(httptest.NewRecorder(), req)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `fixam_forms_submissions_total{form="lead",outcome="honeypot"} 1`) {
		t.Fatalf("expected honeypot counter in metrics output:\n%s", rr.Body.String())
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/leads", nil)
	req.Header.Set("Origin", "https://fixam.co.uk")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://fixam.co.uk" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}

func TestRouterFormRateLimit(t *testing.T) {
	router, _ := newTestRouter(t, func(cfg *Config) {
		cfg.FormRateLimitRPS = 0.001
		cfg.FormRateLimitBurst = 1
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader("website=bot"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected [200 429], got %v", codes)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/feedbacks", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("read endpoints are not rate limited, got %d", rr.Code)
	}
}
