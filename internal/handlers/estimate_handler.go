package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"ospreyBack/internal/models"
	"ospreyBack/internal/reqctx"
	"ospreyBack/internal/services"
)

type EstimateHandler struct {
	Service *services.EstimateService
	Log     *zap.Logger
}

func (h *EstimateHandler) CreateEstimate(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	var req models.EstimateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	res, err := h.Service.CreateEstimate(r.Context(), req)
	if err != nil {
		respondError(w, log, err)
		return
	}
	writeSuccess(w, map[string]any{
		"estimate_id": res.EstimateID,
		"amount":      res.Amount,
		"pdf_url":     res.PDFURL,
		"expires_at":  res.ExpiresAt,
	})
}

func (h *EstimateHandler) GetEstimates(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	if id := getParam(r, "id"); id != "" {
		est, err := h.Service.GetEstimate(r.Context(), id)
		if err != nil {
			respondError(w, log, err)
			return
		}
		writeSuccess(w, map[string]any{"estimate": est})
		return
	}
	if customerID := getParam(r, "customer_id"); customerID != "" {
		list, err := h.Service.ListCustomerEstimates(r.Context(), customerID)
		if err != nil {
			respondError(w, log, err)
			return
		}
		writeSuccess(w, map[string]any{"estimates": list})
		return
	}
	writeError(w, http.StatusBadRequest, "Estimate ID or customer ID required")
}

func (h *EstimateHandler) UpdateEstimateStatus(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	id := getParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Estimate ID required")
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	est, err := h.Service.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		respondError(w, log, err)
		return
	}
	writeSuccess(w, map[string]any{"estimate": est})
}

// GetEstimateDocument serves the printable estimate behind pdf_url.
func (h *EstimateHandler) GetEstimateDocument(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	id := getParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Estimate ID required")
		return
	}
	doc, err := h.Service.RenderDocument(r.Context(), id)
	if err != nil {
		respondError(w, log, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="estimate-`+id+`.txt"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
