package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"ospreyBack/internal/reqctx"
	"ospreyBack/internal/services"
)

type AppointmentHandler struct {
	Service *services.AppointmentService
	Log     *zap.Logger
}

func (h *AppointmentHandler) GetAppointments(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	if id := getParam(r, "id"); id != "" {
		appt, err := h.Service.GetAppointment(r.Context(), id)
		if err != nil {
			respondError(w, log, err)
			return
		}
		writeSuccess(w, map[string]any{"appointment": appt})
		return
	}
	if customerID := getParam(r, "customer_id"); customerID != "" {
		appts, err := h.Service.ListCustomerAppointments(r.Context(), customerID)
		if err != nil {
			respondError(w, log, err)
			return
		}
		writeSuccess(w, map[string]any{"appointments": appts})
		return
	}
	writeError(w, http.StatusBadRequest, "Appointment ID or customer ID required")
}
