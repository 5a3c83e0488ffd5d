package handlers

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"ospreyBack/internal/models"
	"ospreyBack/internal/pay"
	"ospreyBack/internal/reqctx"
	"ospreyBack/internal/services"
)

type PaymentHandler struct {
	Service *services.PaymentService
	Log     *zap.Logger
}

func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	var req models.PaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	res, err := h.Service.CreatePayment(r.Context(), req)
	if errors.Is(err, models.ErrProviderNotConfigured) {
		writeError(w, http.StatusInternalServerError, "Stripe not configured")
		return
	}
	if err != nil {
		respondError(w, log, err)
		return
	}
	writeSuccess(w, map[string]any{
		"client_secret":     res.ClientSecret,
		"payment_intent_id": res.PaymentIntentID,
	})
}

func (h *PaymentHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	if id := getParam(r, "id"); id != "" {
		p, err := h.Service.GetPayment(r.Context(), id)
		if err != nil {
			respondError(w, log, err)
			return
		}
		writeSuccess(w, map[string]any{"payment": p})
		return
	}
	if customerID := getParam(r, "customer_id"); customerID != "" {
		list, err := h.Service.ListCustomerPayments(r.Context(), customerID)
		if err != nil {
			respondError(w, log, err)
			return
		}
		writeSuccess(w, map[string]any{"payments": list})
		return
	}
	writeError(w, http.StatusBadRequest, "Payment ID or customer ID required")
}

// Webhook receives Stripe events. The raw body is needed for the signature.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), nopLogger(h.Log))
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unable to read body")
		return
	}
	err = h.Service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	switch {
	case errors.Is(err, pay.ErrInvalidSignature), errors.Is(err, pay.ErrExpiredSignature):
		log.Warn("stripe webhook rejected", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid signature")
		return
	case err != nil:
		respondError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"received": true})
}
