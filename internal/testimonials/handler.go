package testimonials

import (
	"net/http"
	"time"

	"github.com/fixam/fixam-site/internal/forms"
	"github.com/fixam/fixam-site/pkg/httputil"
)

const (
	defaultLimit = 3
	maxLimit     = 24
)

type listResponse struct {
	GeneratedAt string `json:"generatedAt"`
	Items       []Item `json:"items"`
}

// Handler serves GET /api/feedbacks.
type Handler struct {
	service *Service
	now     func() time.Time
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := httputil.QueryLimit(r, defaultLimit, maxLimit)
	items := h.service.List(r.Context(), limit)

	httputil.CachePublic(w, 60, 300)
	httputil.OK(w, listResponse{GeneratedAt: forms.Timestamp(h.now()), Items: items})
}
