package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ospreyBack/internal/models"
	"ospreyBack/internal/pay"
)

func newPaymentService(gw *fakeGateway) (*PaymentService, *fakePayments, *fakeInvoices, *recordingPublisher) {
	email := "jane@example.com"
	payments := &fakePayments{}
	invoices := &fakeInvoices{}
	pub := &recordingPublisher{}
	svc := &PaymentService{
		PaymentRepo:   payments,
		CustomerRepo:  newFakeCustomers(models.Customer{ID: "cust-1", FullName: "Jane", Email: &email}),
		InvoiceRepo:   invoices,
		Gateway:       gw,
		WebhookSecret: "whsec_test",
		Events:        pub,
		Now:           func() time.Time { return fixedNow },
	}
	return svc, payments, invoices, pub
}

func TestCreatePayment(t *testing.T) {
	gw := &fakeGateway{configured: true}
	svc, payments, invoices, pub := newPaymentService(gw)

	res, err := svc.CreatePayment(context.Background(), models.PaymentRequest{
		Amount: 249.99, CustomerID: "cust-1", JobID: "job-1", InvoiceID: "inv-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", res.PaymentIntentID)
	assert.Equal(t, "pi_123_secret", res.ClientSecret)

	assert.Equal(t, "Payment for job-1", gw.got.Description)
	assert.Equal(t, "usd", gw.got.Currency)
	assert.Equal(t, "jane@example.com", gw.got.ReceiptEmail)

	require.Len(t, payments.rows, 1)
	assert.Equal(t, models.PaymentPending, payments.rows[0].Status)
	assert.Equal(t, []string{"inv-1"}, invoices.paid)
	assert.Equal(t, []string{models.TopicPaymentCreated}, pub.topics())
}

func TestCreatePaymentDescription(t *testing.T) {
	assert.Equal(t, "Payment for service", paymentDescription(models.PaymentRequest{}))
	assert.Equal(t, "Payment for inv-2", paymentDescription(models.PaymentRequest{InvoiceID: "inv-2"}))
	assert.Equal(t, "Deposit", paymentDescription(models.PaymentRequest{Description: "Deposit", JobID: "j"}))
}

func TestCreatePaymentErrors(t *testing.T) {
	svc, _, _, _ := newPaymentService(&fakeGateway{configured: true})
	_, err := svc.CreatePayment(context.Background(), models.PaymentRequest{CustomerID: "cust-1"})
	assert.EqualError(t, err, "Amount and customer ID required")

	_, err = svc.CreatePayment(context.Background(), models.PaymentRequest{Amount: 10, CustomerID: "ghost"})
	assert.ErrorIs(t, err, models.ErrCustomerNotFound)

	svc, _, _, _ = newPaymentService(&fakeGateway{})
	_, err = svc.CreatePayment(context.Background(), models.PaymentRequest{Amount: 10, CustomerID: "cust-1"})
	assert.ErrorIs(t, err, models.ErrProviderNotConfigured)

	stripeErr := &pay.APIError{StatusCode: 402, Message: "card declined"}
	svc, payments, _, _ := newPaymentService(&fakeGateway{configured: true, err: stripeErr})
	_, err = svc.CreatePayment(context.Background(), models.PaymentRequest{Amount: 10, CustomerID: "cust-1"})
	assert.ErrorIs(t, err, stripeErr)
	assert.Empty(t, payments.rows)
}

func TestCreatePaymentRecordFailureIsNotFatal(t *testing.T) {
	svc, payments, _, _ := newPaymentService(&fakeGateway{configured: true})
	payments.createErr = errors.New("constraint")

	res, err := svc.CreatePayment(context.Background(), models.PaymentRequest{Amount: 10, CustomerID: "cust-1"})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", res.PaymentIntentID)
}

func TestHandleWebhook(t *testing.T) {
	svc, payments, _, _ := newPaymentService(&fakeGateway{configured: true})
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)
	sig := pay.SignPayload(payload, "whsec_test", fixedNow)

	require.NoError(t, svc.HandleWebhook(context.Background(), payload, sig))
	assert.Equal(t, models.PaymentCompleted, payments.marked["pi_123"])
	require.NotNil(t, payments.paidAt)
	assert.Equal(t, fixedNow, *payments.paidAt)

	failed := []byte(`{"id":"evt_2","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_456"}}}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), failed, pay.SignPayload(failed, "whsec_test", fixedNow)))
	assert.Equal(t, models.PaymentFailed, payments.marked["pi_456"])

	other := []byte(`{"id":"evt_3","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), other, pay.SignPayload(other, "whsec_test", fixedNow)))
	assert.NotContains(t, payments.marked, "ch_1")
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	svc, _, _, _ := newPaymentService(&fakeGateway{configured: true})
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123"}}}`)

	err := svc.HandleWebhook(context.Background(), payload, pay.SignPayload(payload, "wrong", fixedNow))
	assert.ErrorIs(t, err, pay.ErrInvalidSignature)

	err = svc.HandleWebhook(context.Background(), payload, pay.SignPayload(payload, "whsec_test", fixedNow.Add(-time.Hour)))
	assert.ErrorIs(t, err, pay.ErrExpiredSignature)
}

func TestHandleWebhookUnknownIntentAcknowledged(t *testing.T) {
	svc, payments, _, _ := newPaymentService(&fakeGateway{configured: true})
	payments.markErr = models.ErrNoRecord
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_x"}}}`)
	assert.NoError(t, svc.HandleWebhook(context.Background(), payload, pay.SignPayload(payload, "whsec_test", fixedNow)))
}
