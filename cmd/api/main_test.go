package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fixam/fixam-site/cmd/mainconfig"
	appconfig "github.com/fixam/fixam-site/internal/config"
	"github.com/fixam/fixam-site/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		Port:               "0",
		LeadsSheetRange:    "Leads!A1",
		FeedbackSheetRange: "Feedback!A1",
		EmailProvider:      "auto",
		SupportEmail:       "info@fixam.co.uk",
	}
}

func TestNewServerUsesConfiguredPort(t *testing.T) {
	cfg := testConfig()
	cfg.Port = "9090"
	srv := newServer(cfg, http.NotFoundHandler())
	if srv.Addr != ":9090" {
		t.Fatalf("expected :9090, got %q", srv.Addr)
	}
	if srv.WriteTimeout <= srv.ReadTimeout {
		t.Fatalf("expected write timeout to exceed read timeout")
	}
}

func TestRuntimeServesHealthAndMetrics(t *testing.T) {
	logger := logging.NewWithWriter(io.Discard, "error")
	rt := mainconfig.NewRuntime(context.Background(), testConfig(), logger)
	defer rt.Close()

	rr := httptest.NewRecorder()
	rt.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rr.Code)
	}

	form := strings.NewReader("kind=contact&fullName=Jane&email=jane%40example.com&message=Hi&consent=on")
	req := httptest.NewRequest(http.MethodPost, "/api/leads", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	rt.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected lead 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	rt.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `fixam_forms_submissions_total{form="lead",outcome="success"} 1`) {
		t.Fatalf("expected submission counter to be exported, got:\n%s", rr.Body.String())
	}
}
