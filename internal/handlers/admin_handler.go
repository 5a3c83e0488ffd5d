package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"ospreyBack/internal/reqctx"
	"ospreyBack/internal/services"
)

type AdminHandler struct {
	Service *services.AdminService
	Log     *zap.Logger
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	res, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, log, err)
		return
	}
	log.Info("admin login", zap.String("admin_id", res.User.ID))
	writeSuccess(w, map[string]any{
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"user":       res.User,
	})
}

func (h *AdminHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	m, err := h.Service.Metrics(r.Context())
	if err != nil {
		respondError(w, log, err)
		return
	}
	writeSuccess(w, map[string]any{"metrics": m})
}
