package leads

import (
	"net/http"

	"github.com/fixam/fixam-site/internal/forms"
	"github.com/fixam/fixam-site/pkg/logging"
)

// Handler handles HTTP requests for leads
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Submit handles POST /api/leads requests
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	values, err := forms.ParseRequest(w, r)
	if err != nil {
		h.logger.Warn("failed to parse lead form", "error", err)
		forms.WriteState(w, forms.BadRequest())
		return
	}

	state := h.service.Submit(r.Context(), values, forms.MetaFromRequest(r))
	forms.WriteState(w, state)
}
