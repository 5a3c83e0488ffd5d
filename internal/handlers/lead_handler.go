package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ospreyBack/internal/models"
	"ospreyBack/internal/ratelimit"
	"ospreyBack/internal/reqctx"
	"ospreyBack/internal/services"
)

type LeadHandler struct {
	Service *services.LeadService
	Limiter ratelimit.Limiter
	// Enabled reports the lead submission feature flag.
	Enabled func() bool
	Log     *zap.Logger
}

// Submit accepts the public lead form. Responses keep the lead form's
// {"status"} / {"error"} shape.
func (h *LeadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	client := ratelimit.ClientID(r)
	log := reqctx.Logger(ctx, nopLogger(h.Log)).With(zap.String("identifier", client))

	if h.Limiter != nil && !h.Limiter.Allow(ctx, client) {
		log.Warn("lead_rate_limited")
		writeJSON(w, http.StatusTooManyRequests, map[string]string{
			"error": "Rate limit exceeded. Please wait before submitting again.",
		})
		return
	}

	var raw map[string]any
	if err := decodeJSON(w, r, &raw); err != nil {
		log.Error("lead_invalid_json", zap.String("remediation", "Send valid JSON body."), zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		return
	}

	if h.Enabled != nil && !h.Enabled() {
		log.Warn("lead_submission_feature_disabled")
		writeJSON(w, http.StatusAccepted, map[string]string{"status": string(models.LeadDisabled)})
		return
	}

	payload, err := services.ParseLeadPayload(raw)
	var status models.LeadStatus
	if err == nil {
		status, err = h.Service.Submit(ctx, payload)
	}
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			log.Warn("lead_submission_failure", zap.String("field", verr.Field), zap.Error(err))
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Message})
			return
		}
		log.Error("lead_submission_failure",
			zap.String("remediation", "Verify Supabase credentials and payload schema."),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Unable to process lead"})
		return
	}

	log.Info("lead_submission_success", zap.String("status", string(status)))
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}
