package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"ospreyBack/internal/reqctx"
	"ospreyBack/internal/services"
)

type RecurringHandler struct {
	Service *services.RecurringServiceService
	Log     *zap.Logger
}

func (h *RecurringHandler) CreateRecurringService(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	var req services.RecurringServiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	svc, err := h.Service.Create(r.Context(), req)
	if err != nil {
		respondError(w, log, err)
		return
	}
	writeSuccess(w, map[string]any{"service": svc})
}

// GetRecurringServices lists by customer, by ?due_soon=true, or all active.
func (h *RecurringHandler) GetRecurringServices(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	ctx := r.Context()
	var (
		list any
		err  error
	)
	switch {
	case getParam(r, "customer_id") != "":
		list, err = h.Service.ListByCustomer(ctx, getParam(r, "customer_id"))
	case getParam(r, "due_soon") == "true":
		list, err = h.Service.ListDueSoon(ctx)
	default:
		list, err = h.Service.ListActive(ctx)
	}
	if err != nil {
		respondError(w, log, err)
		return
	}
	writeSuccess(w, map[string]any{"services": list})
}
