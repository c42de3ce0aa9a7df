package feedback

import (
	"net/http"

	"github.com/fixam/fixam-site/internal/forms"
	"github.com/fixam/fixam-site/pkg/logging"
)

// Handler serves the feedback form endpoint.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Submit handles POST /api/feedback.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	values, err := forms.ParseRequest(w, r)
	if err != nil {
		h.logger.Warn("failed to parse feedback form", "error", err)
		forms.WriteState(w, forms.BadRequest())
		return
	}
	forms.WriteState(w, h.service.Submit(r.Context(), values, forms.MetaFromRequest(r)))
}
