package handoff

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fixam/fixam-site/internal/observability/metrics"
	"github.com/fixam/fixam-site/pkg/httputil"
	"github.com/fixam/fixam-site/pkg/logging"
)

const maxPayloadBytes = 64 << 10

// Notifier relays the handoff to the team.
type Notifier interface {
	NotifyText(ctx context.Context, subject, text string)
}

// HandlerConfig configures the inbound webhook.
type HandlerConfig struct {
	Secret        string
	SubjectPrefix string
}

// Handler accepts live-help requests from the chat widget.
type Handler struct {
	secret   string
	subject  string
	dedup    Deduper
	notifier Notifier
	logger   *logging.Logger
	metrics  *metrics.SiteMetrics
	now      func() time.Time
}

func NewHandler(cfg HandlerConfig, dedup Deduper, notifier Notifier, logger *logging.Logger, m *metrics.SiteMetrics) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if dedup == nil {
		dedup = NewWindow(DefaultTTL)
	}
	prefix := strings.TrimSpace(cfg.SubjectPrefix)
	if prefix == "" {
		prefix = "Fixam"
	}
	return &Handler{
		secret:   strings.TrimSpace(cfg.Secret),
		subject:  prefix + ": Live help requested (Botpress)",
		dedup:    dedup,
		notifier: notifier,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Handle serves POST /api/botpress/handoff.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r.Header.Get("Authorization")) {
		h.metrics.ObserveHandoff("unauthorized")
		httputil.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var raw any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes)).Decode(&raw); err != nil || isEmptyJSON(raw) {
		h.metrics.ObserveHandoff("invalid")
		httputil.Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	// non-object documents carry no fields
	fields, _ := raw.(map[string]any)
	payload := payloadFromMap(fields)

	key := Key(payload)
	dup, err := h.dedup.Duplicate(r.Context(), key)
	if err != nil {
		// fail open
		h.logger.Warn("handoff dedup unavailable", "error", err)
	}
	if dup {
		h.metrics.ObserveHandoff("deduped")
		httputil.OK(w, map[string]any{"ok": true, "deduped": true})
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyText(r.Context(), h.subject, Text(payload, h.now().UTC()))
	}
	h.logger.Info("live help requested", "conversation_id", payload.ConversationID, "key", key)
	h.metrics.ObserveHandoff("relayed")
	httputil.OK(w, map[string]any{"ok": true})
}

// authorized requires "Bearer <secret>"; the scheme is case-insensitive.
func (h *Handler) authorized(header string) bool {
	if h.secret == "" {
		return false
	}
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return false
	}
	token := strings.TrimSpace(header[7:])
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}

// isEmptyJSON reports null, false, 0 and "" documents.
func isEmptyJSON(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	}
	return false
}
