package feedback

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

// SubmitFeedback is mounted outside the auth middleware.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var dto SubmitFeedbackDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if _, err := h.Service.Submit(r.Context(), dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Feedback submitted successfully",
	})
}

func (h *Handler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.CallerFromRequest(w, r)
	if !ok {
		return
	}

	items, err := h.Service.List(r.Context(), caller)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) RespondFeedback(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.CallerFromRequest(w, r)
	if !ok {
		return
	}

	var dto RespondDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	f, err := h.Service.Respond(r.Context(), caller, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Response sent successfully",
		"feedback": f,
	})
}
