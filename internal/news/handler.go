package news

import (
	"errors"
	"net/http"

	"github.com/fixam/fixam-site/pkg/httputil"
	"github.com/fixam/fixam-site/pkg/logging"
)

const (
	defaultLimit = 6
	maxLimit     = 24
)

// Handler serves GET /api/news.
type Handler struct {
	aggregator *Aggregator
	logger     *logging.Logger
}

func NewHandler(aggregator *Aggregator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{aggregator: aggregator, logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := httputil.QueryLimit(r, defaultLimit, maxLimit)

	snap, err := h.aggregator.List(r.Context(), limit)
	if err != nil && !errors.Is(err, ErrAllSourcesFailed) {
		h.logger.Error("news listing failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if err != nil {
		h.logger.Warn("serving empty news list", "error", err)
		w.Header().Set("Cache-Control", "no-store")
	} else {
		httputil.CachePublic(w, 1800, 86400)
	}
	httputil.OK(w, snap)
}
