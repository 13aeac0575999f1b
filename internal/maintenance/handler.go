package maintenance

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

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.CallerFromRequest(w, r)
	if !ok {
		return
	}

	var dto CreateRequestDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	m, err := h.Service.Create(r.Context(), caller, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Maintenance request submitted successfully",
		"maintenance": m,
	})
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
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

// DecideRequest handles PUT /maintenance/{id}/decision.
func (h *Handler) DecideRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.CallerFromRequest(w, r)
	if !ok {
		return
	}

	var dto DecisionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	var (
		m   *Request
		err error
	)
	if Status(dto.Status) == StatusApproved {
		m, err = h.Service.Approve(r.Context(), caller, id, dto.AdminResponse)
	} else {
		m, err = h.Service.Reject(r.Context(), caller, id, dto.AdminResponse)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Maintenance request " + string(m.Status),
		"maintenance": m,
	})
}

func (h *Handler) ReportFixed(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.CallerFromRequest(w, r)
	if !ok {
		return
	}

	m, err := h.Service.ReportFixed(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Vehicle reported fixed",
		"maintenance": m,
	})
}

func (h *Handler) MarkComplete(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.CallerFromRequest(w, r)
	if !ok {
		return
	}

	m, err := h.Service.MarkComplete(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Maintenance marked as completed",
		"maintenance": m,
	})
}
