package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ospreyBack/internal/crm"
	"ospreyBack/internal/models"
	"ospreyBack/internal/pay"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeSuccess writes {"success":true} merged with fields.
func writeSuccess(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// providerErrorStatus propagates upstream 4xx statuses and maps everything
// else to 502.
func providerErrorStatus(err error) int {
	var stripeErr *pay.APIError
	if errors.As(err, &stripeErr) && stripeErr.StatusCode >= 400 && stripeErr.StatusCode < 500 {
		return stripeErr.StatusCode
	}
	var hubErr *crm.APIError
	if errors.As(err, &hubErr) && hubErr.StatusCode >= 400 && hubErr.StatusCode < 500 {
		return hubErr.StatusCode
	}
	return http.StatusBadGateway
}

var notFoundMessages = []struct {
	err     error
	message string
}{
	{models.ErrCustomerNotFound, "Customer not found"},
	{models.ErrLeadNotFound, "Lead not found"},
	{models.ErrJobNotFound, "Job not found"},
	{models.ErrAppointmentNotFound, "Appointment not found"},
	{models.ErrEstimateNotFound, "Estimate not found"},
	{models.ErrPaymentNotFound, "Payment not found"},
	{models.ErrNoRecord, "Not found"},
}

// errorResponse maps a service error onto a status code and client message.
func errorResponse(err error) (int, string) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Message
	}
	for _, nf := range notFoundMessages {
		if errors.Is(err, nf.err) {
			return http.StatusNotFound, nf.message
		}
	}
	switch {
	case errors.Is(err, models.ErrInvalidStatus):
		return http.StatusBadRequest, "Valid status required"
	case errors.Is(err, models.ErrEmptyPatch):
		return http.StatusBadRequest, "No updatable fields provided"
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case isUniqueViolation(err):
		return http.StatusConflict, "Record already exists"
	case isForeignKeyConstraintError(err):
		return http.StatusBadRequest, "Referenced record does not exist"
	}
	var stripeErr *pay.APIError
	var hubErr *crm.APIError
	if errors.As(err, &stripeErr) || errors.As(err, &hubErr) {
		return providerErrorStatus(err), err.Error()
	}
	return http.StatusInternalServerError, "Internal server error"
}

// respondError logs server-side failures and writes the error envelope.
func respondError(w http.ResponseWriter, log *zap.Logger, err error) {
	status, message := errorResponse(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeError(w, status, message)
}
