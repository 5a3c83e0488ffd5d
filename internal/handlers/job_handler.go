package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"ospreyBack/internal/models"
	"ospreyBack/internal/reqctx"
	"ospreyBack/internal/services"
)

type JobHandler struct {
	Service *services.JobService
	Log     *zap.Logger
}

// jobPatchRequest accepts dates as YYYY-MM-DD or RFC 3339.
type jobPatchRequest struct {
	Status        *string  `json:"status"`
	ScheduledDate *string  `json:"scheduled_date"`
	CompletedDate *string  `json:"completed_date"`
	TotalAmount   *float64 `json:"total_amount"`
	Notes         *string  `json:"notes"`
	Crew          *string  `json:"crew"`
}

func parseDateTime(field string, v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, *v); err == nil {
			return &t, nil
		}
	}
	return nil, models.NewValidationError(field, "Invalid date")
}

func (req jobPatchRequest) toPatch() (models.JobPatch, error) {
	scheduled, err := parseDateTime("scheduled_date", req.ScheduledDate)
	if err != nil {
		return models.JobPatch{}, err
	}
	completed, err := parseDateTime("completed_date", req.CompletedDate)
	if err != nil {
		return models.JobPatch{}, err
	}
	return models.JobPatch{
		Status:        req.Status,
		ScheduledDate: scheduled,
		CompletedDate: completed,
		TotalAmount:   req.TotalAmount,
		Notes:         req.Notes,
		Crew:          req.Crew,
	}, nil
}

func (h *JobHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	if id := getParam(r, "job_id"); id != "" {
		job, err := h.Service.GetJob(r.Context(), id)
		if err != nil {
			respondError(w, log, err)
			return
		}
		writeSuccess(w, map[string]any{"job": job})
		return
	}
	if customerID := getParam(r, "customer_id"); customerID != "" {
		jobs, err := h.Service.ListCustomerJobs(r.Context(), customerID)
		if err != nil {
			respondError(w, log, err)
			return
		}
		writeSuccess(w, map[string]any{"jobs": jobs})
		return
	}
	writeError(w, http.StatusBadRequest, "Job ID or customer ID required")
}

func (h *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	id := firstParam(r, "id", "job_id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Job ID required")
		return
	}
	var req jobPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		respondError(w, log, err)
		return
	}
	job, err := h.Service.UpdateJob(r.Context(), id, patch)
	if err != nil {
		respondError(w, log, err)
		return
	}
	writeSuccess(w, map[string]any{"job": job})
}
