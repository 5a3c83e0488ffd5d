package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"ospreyBack/internal/models"
	"ospreyBack/internal/reqctx"
	"ospreyBack/internal/services"
)

type BookingHandler struct {
	Service *services.BookingService
	Log     *zap.Logger
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	var req models.BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	res, err := h.Service.Book(r.Context(), req)
	if err != nil {
		respondError(w, log, err)
		return
	}
	writeSuccess(w, map[string]any{
		"appointment_id": res.AppointmentID,
		"job_id":         res.JobID,
		"customer_id":    res.CustomerID,
	})
}

func (h *BookingHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	date := getParam(r, "date")
	slots, err := h.Service.AvailableSlots(date)
	if err != nil {
		respondError(w, nil, err)
		return
	}
	writeSuccess(w, map[string]any{"date": date, "available_slots": slots})
}
