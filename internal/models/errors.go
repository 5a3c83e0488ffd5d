package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecord               = errors.New("models: no matching record found")
	ErrInvalidCredentials     = errors.New("models: invalid credentials")
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrLeadNotFound           = errors.New("lead not found")
	ErrJobNotFound            = errors.New("job not found")
	ErrAppointmentNotFound    = errors.New("appointment not found")
	ErrEstimateNotFound       = errors.New("estimate not found")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrEmptyPatch             = errors.New("no updatable fields in patch")
	ErrProviderNotConfigured  = errors.New("provider not configured")
	ErrInvalidTableIdentifier = errors.New("invalid table identifier")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
