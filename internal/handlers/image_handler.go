package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"ospreyBack/internal/reqctx"
	"ospreyBack/internal/services"
)

type ImageHandler struct {
	Service *services.ImageAssetService
	Log     *zap.Logger
}

func (h *ImageHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	var req services.ImageAssetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	asset, err := h.Service.Register(r.Context(), req)
	if err != nil {
		respondError(w, log, err)
		return
	}
	writeSuccess(w, map[string]any{"asset": asset})
}

func (h *ImageHandler) ListByJob(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	jobID := firstParam(r, "jobId", "job_id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "Job ID required")
		return
	}
	assets, err := h.Service.ListByJob(r.Context(), jobID)
	if err != nil {
		respondError(w, log, err)
		return
	}
	writeSuccess(w, map[string]any{"images": assets})
}
