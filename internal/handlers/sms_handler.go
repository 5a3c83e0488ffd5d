package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ospreyBack/internal/models"
	"ospreyBack/internal/reqctx"
	"ospreyBack/internal/services"
)

type SMSHandler struct {
	Service *services.NotificationService
	Log     *zap.Logger
}

func (h *SMSHandler) SendSMS(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	var req struct {
		To      string `json:"to"`
		Message string `json:"message"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	sid, err := h.Service.SendSMS(r.Context(), req.To, req.Message)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Message)
			return
		}
		log.Error("sms send failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to send SMS")
		return
	}
	writeSuccess(w, map[string]any{"message": "SMS sent successfully", "sid": sid})
}
