package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ospreyBack/internal/reqctx"
	"ospreyBack/internal/services"
)

type HubSpotHandler struct {
	Service *services.CRMSyncService
	// DBConfigured reports whether the database connection is available.
	DBConfigured func() bool
	Log          *zap.Logger
}

func (h *HubSpotHandler) Sync(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	var req struct {
		LeadID string `json:"leadId"`
		Action string `json:"action"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	contactID, err := h.Service.SyncLead(r.Context(), req.LeadID, req.Action)
	if errors.Is(err, services.ErrContactSync) {
		log.Error("hubspot contact sync failed", zap.String("lead_id", req.LeadID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to sync contact to HubSpot")
		return
	}
	if err != nil {
		respondError(w, log, err)
		return
	}
	writeSuccess(w, map[string]any{"hubspot_contact_id": contactID})
}

func (h *HubSpotHandler) Status(w http.ResponseWriter, r *http.Request) {
	dbReady := h.DBConfigured != nil && h.DBConfigured()
	writeSuccess(w, map[string]any{
		"hubspot_configured":  h.Service.Configured(),
		"supabase_configured": dbReady,
	})
}
