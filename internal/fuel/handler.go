package fuel

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

func (h *Handler) CreateFuelLog(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.CallerFromRequest(w, r)
	if !ok {
		return
	}

	var dto CreateFuelLogDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	f, err := h.Service.Create(r.Context(), caller, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Fuel request submitted",
		"fuelLog": f,
	})
}

func (h *Handler) ListFuelLogs(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.CallerFromRequest(w, r)
	if !ok {
		return
	}

	logs, err := h.Service.List(r.Context(), caller)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, logs)
}

// DecideFuelLog handles PUT /fuel-logs/{id}/decision.
func (h *Handler) DecideFuelLog(w http.ResponseWriter, r *http.Request) {
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
		f   *FuelLog
		err error
	)
	if Status(dto.Status) == StatusApproved {
		f, err = h.Service.Approve(r.Context(), caller, id)
	} else {
		f, err = h.Service.Reject(r.Context(), caller, id)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Fuel request " + string(f.Status) + " successfully",
		"fuelRequest": f,
	})
}

// VehicleConsumption handles GET /fuel-logs/vehicles/{vehicleId}/consumption.
func (h *Handler) VehicleConsumption(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.CallerFromRequest(w, r)
	if !ok {
		return
	}

	logs, err := h.Service.Consumption(r.Context(), caller, chi.URLParam(r, "vehicleId"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Fuel consumption data retrieved",
		"fuelLogs": logs,
	})
}
