package notification

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/fleet-management/internal/transport"
	"github.com/frahmantamala/fleet-management/pkg/logger"
	"github.com/go-chi/chi"
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

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.CallerFromRequest(w, r)
	if !ok {
		return
	}

	items, err := h.Service.ListForUser(r.Context(), caller)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.CallerFromRequest(w, r)
	if !ok {
		return
	}

	n, err := h.Service.MarkRead(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.Logger.Error("MarkRead: service error", "error", err, "user_id", caller.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Notification marked as read",
		"notification": n,
	})
}
