package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"ospreyBack/internal/reqctx"
	"ospreyBack/internal/services"
)

type CustomerHandler struct {
	Service *services.CustomerService
	Log     *zap.Logger
}

// GetCustomers serves ?id= lookups and ?search= queries.
func (h *CustomerHandler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	if id := getParam(r, "id"); id != "" {
		customer, err := h.Service.GetCustomer(r.Context(), id)
		if err != nil {
			respondError(w, log, err)
			return
		}
		writeSuccess(w, map[string]any{"customer": customer})
		return
	}
	if q := getParam(r, "search"); q != "" {
		customers, err := h.Service.SearchCustomers(r.Context(), q)
		if err != nil {
			respondError(w, log, err)
			return
		}
		writeSuccess(w, map[string]any{"customers": customers})
		return
	}
	writeError(w, http.StatusBadRequest, "Customer ID or search query required")
}

func nopLogger(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
