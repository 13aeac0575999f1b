package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/fleet-management/internal/transport"
	"github.com/frahmantamala/fleet-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.CallerFromRequest(w, r)
	if !ok {
		return
	}

	d, err := h.Service.Overview(r.Context(), caller)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, d)
}
