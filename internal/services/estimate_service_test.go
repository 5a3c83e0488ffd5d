package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ospreyBack/internal/models"
)

var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func newEstimateService() (*EstimateService, *fakeEstimates, *fakeCustomers, *fakeJobs, *recordingPublisher) {
	estimates := newFakeEstimates()
	customers := newFakeCustomers(models.Customer{ID: "cust-1", FullName: "Jane Doe"})
	jobs := newFakeJobs()
	pub := &recordingPublisher{}
	svc := &EstimateService{
		EstimateRepo: estimates,
		CustomerRepo: customers,
		JobRepo:      jobs,
		Events:       pub,
		Now:          func() time.Time { return fixedNow },
	}
	return svc, estimates, customers, jobs, pub
}

func TestCreateEstimate(t *testing.T) {
	svc, estimates, _, _, pub := newEstimateService()

	res, err := svc.CreateEstimate(context.Background(), models.EstimateRequest{
		CustomerID:  "cust-1",
		ServiceType: "roof-cleaning",
		LineItems: []models.LineItem{
			{Description: "Roof wash", Quantity: 1, UnitPrice: 450},
			{Description: "Moss treatment", Quantity: 2, UnitPrice: 75.5},
		},
		Notes: "North side steep",
	})
	require.NoError(t, err)
	assert.InDelta(t, 601.0, res.Amount, 0.0001)
	assert.Equal(t, fixedNow.AddDate(0, 0, 30), res.ExpiresAt)
	assert.Equal(t, "/api/estimates/"+res.EstimateID+"/pdf", res.PDFURL)

	stored, err := estimates.GetByID(context.Background(), res.EstimateID)
	require.NoError(t, err)
	assert.Equal(t, models.EstimatePending, stored.Status)
	var notes models.EstimateNotes
	require.NoError(t, json.Unmarshal([]byte(*stored.Notes), &notes))
	assert.Len(t, notes.LineItems, 2)
	assert.Equal(t, "North side steep", *notes.OriginalNotes)

	assert.Equal(t, []string{models.TopicEstimateCreated}, pub.topics())
}

func TestCreateEstimateByEmailCreatesCustomer(t *testing.T) {
	svc, _, customers, _, _ := newEstimateService()
	days := 7

	res, err := svc.CreateEstimate(context.Background(), models.EstimateRequest{
		CustomerEmail: "new@example.com",
		CustomerName:  "New Person",
		ServiceType:   "pressure-washing",
		LineItems:     []models.LineItem{{Description: "Driveway", Quantity: 1, UnitPrice: 200}},
		ExpiresDays:   &days,
	})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.AddDate(0, 0, 7), res.ExpiresAt)

	c, err := customers.GetByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "New Person", c.FullName)
}

func TestCreateEstimateValidation(t *testing.T) {
	svc, _, _, _, _ := newEstimateService()
	item := []models.LineItem{{Description: "x", Quantity: 1, UnitPrice: 1}}

	_, err := svc.CreateEstimate(context.Background(), models.EstimateRequest{CustomerID: "cust-1", ServiceType: "x"})
	assert.EqualError(t, err, "Missing required fields")

	_, err = svc.CreateEstimate(context.Background(), models.EstimateRequest{ServiceType: "x", LineItems: item})
	assert.EqualError(t, err, "customer_id: Customer ID or email required")

	_, err = svc.CreateEstimate(context.Background(), models.EstimateRequest{CustomerID: "missing", ServiceType: "x", LineItems: item})
	assert.ErrorIs(t, err, models.ErrCustomerNotFound)

	_, err = svc.CreateEstimate(context.Background(), models.EstimateRequest{
		CustomerID: "cust-1", ServiceType: "x",
		LineItems: []models.LineItem{{Description: "x", Quantity: 0, UnitPrice: 1}},
	})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdateStatusApprovedCreatesJob(t *testing.T) {
	svc, estimates, _, jobs, pub := newEstimateService()
	deal := "deal-9"
	_, _ = estimates.Create(context.Background(), models.Estimate{
		ID: "est-1", CustomerID: "cust-1", ServiceType: "roof-cleaning", Amount: 601,
		Status: models.EstimatePending, HubSpotDealID: &deal,
	})

	est, err := svc.UpdateStatus(context.Background(), "est-1", models.EstimateApproved)
	require.NoError(t, err)
	assert.Equal(t, models.EstimateApproved, est.Status)

	list, _ := jobs.ListByCustomer(context.Background(), "cust-1")
	require.Len(t, list, 1)
	assert.Equal(t, "est-1", *list[0].EstimateID)
	assert.Equal(t, 601.0, *list[0].TotalAmount)
	assert.Equal(t, "deal-9", *list[0].HubSpotDealID)
	assert.Equal(t, []string{models.TopicEstimateApproved}, pub.topics())
}

func TestUpdateStatusWithoutDealSkipsJob(t *testing.T) {
	svc, estimates, _, jobs, pub := newEstimateService()
	_, _ = estimates.Create(context.Background(), models.Estimate{ID: "est-1", CustomerID: "cust-1", Status: models.EstimatePending})

	_, err := svc.UpdateStatus(context.Background(), "est-1", models.EstimateApproved)
	require.NoError(t, err)
	list, _ := jobs.ListByCustomer(context.Background(), "cust-1")
	assert.Empty(t, list)
	assert.Empty(t, pub.topics())

	_, err = svc.UpdateStatus(context.Background(), "est-1", "maybe")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
	_, err = svc.UpdateStatus(context.Background(), "nope", models.EstimateRejected)
	assert.ErrorIs(t, err, models.ErrEstimateNotFound)
}

func TestRenderDocument(t *testing.T) {
	svc, _, _, _, _ := newEstimateService()
	res, err := svc.CreateEstimate(context.Background(), models.EstimateRequest{
		CustomerID:  "cust-1",
		ServiceType: "gutter-cleaning",
		LineItems:   []models.LineItem{{Description: "Gutter clean", Quantity: 2, UnitPrice: 125}},
	})
	require.NoError(t, err)

	doc, err := svc.RenderDocument(context.Background(), res.EstimateID)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Service: gutter-cleaning")
	assert.Contains(t, string(doc), "Gutter clean")
	assert.Contains(t, string(doc), "Total: $250.00")
	assert.Contains(t, string(doc), "Valid until: 2026-04-09")
}
