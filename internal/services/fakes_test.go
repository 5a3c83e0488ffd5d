package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"firebase.google.com/go/messaging"

	"ospreyBack/internal/crm"
	"ospreyBack/internal/models"
	"ospreyBack/internal/pay"
	"ospreyBack/internal/queue"
)

type fakeCustomers struct {
	mu   sync.Mutex
	rows map[string]models.Customer
}

func newFakeCustomers(cs ...models.Customer) *fakeCustomers {
	f := &fakeCustomers{rows: map[string]models.Customer{}}
	for _, c := range cs {
		f.rows[c.ID] = c
	}
	return f
}

func (f *fakeCustomers) Create(_ context.Context, c models.Customer) (models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[c.ID] = c
	return c, nil
}

func (f *fakeCustomers) GetByID(_ context.Context, id string) (models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return models.Customer{}, models.ErrNoRecord
	}
	return c, nil
}

func (f *fakeCustomers) GetByEmail(_ context.Context, email string) (models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.rows {
		if c.Email != nil && strings.EqualFold(*c.Email, email) {
			return c, nil
		}
	}
	return models.Customer{}, models.ErrNoRecord
}

func (f *fakeCustomers) Search(_ context.Context, q string, limit int) ([]models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Customer{}
	for _, c := range f.rows {
		if strings.Contains(strings.ToLower(c.FullName), strings.ToLower(q)) && len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCustomers) UpdateHubSpotContactID(_ context.Context, id, contactID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return models.ErrNoRecord
	}
	c.HubSpotContactID = &contactID
	f.rows[id] = c
	return nil
}

func (f *fakeCustomers) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows), nil
}

type fakeLeads struct {
	mu         sync.Mutex
	existsErr  error
	exists     bool
	insertErrs []error
	inserts    int
	records    []models.LeadRecord
	leads      map[string]models.Lead
	pending    int
}

func (f *fakeLeads) ExistsByContact(context.Context, string, string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeLeads) Insert(_ context.Context, rec models.LeadRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.inserts
	f.inserts++
	if n < len(f.insertErrs) && f.insertErrs[n] != nil {
		return f.insertErrs[n]
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeLeads) GetByID(_ context.Context, id string) (models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leads[id]
	if !ok {
		return models.Lead{}, models.ErrNoRecord
	}
	return l, nil
}

func (f *fakeLeads) SetHubSpotContactID(_ context.Context, id, contactID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.leads[id]
	l.HubSpotContactID = &contactID
	f.leads[id] = l
	return nil
}

func (f *fakeLeads) SetHubSpotDealID(_ context.Context, id, dealID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.leads[id]
	l.HubSpotDealID = &dealID
	f.leads[id] = l
	return nil
}

func (f *fakeLeads) CountPendingSync(context.Context) (int, error) { return f.pending, nil }

type fakeJobs struct {
	mu          sync.Mutex
	rows        map[string]models.Job
	order       []string
	completed   int
	average     float64
	repeat      int
	byStatus    map[string]int
	minJobsSeen int
	dealErr     error
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{rows: map[string]models.Job{}, byStatus: map[string]int{}}
}

func (f *fakeJobs) Create(_ context.Context, j models.Job) (models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[j.ID] = j
	f.order = append(f.order, j.ID)
	return j, nil
}

func (f *fakeJobs) GetByID(_ context.Context, id string) (models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.rows[id]
	if !ok {
		return models.Job{}, models.ErrNoRecord
	}
	return j, nil
}

func (f *fakeJobs) ListByCustomer(_ context.Context, customerID string) ([]models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Job{}
	for _, id := range f.order {
		if f.rows[id].CustomerID == customerID {
			out = append(out, f.rows[id])
		}
	}
	return out, nil
}

func (f *fakeJobs) Update(_ context.Context, id string, p models.JobPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.rows[id]
	if !ok {
		return models.ErrNoRecord
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.TotalAmount != nil {
		j.TotalAmount = p.TotalAmount
	}
	if p.Notes != nil {
		j.Notes = p.Notes
	}
	if p.Crew != nil {
		j.Crew = p.Crew
	}
	f.rows[id] = j
	return nil
}

func (f *fakeJobs) SetHubSpotDealID(_ context.Context, id, dealID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dealErr != nil {
		return f.dealErr
	}
	j := f.rows[id]
	j.HubSpotDealID = &dealID
	f.rows[id] = j
	return nil
}

func (f *fakeJobs) GetHubSpotDealID(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.rows[id]
	if !ok {
		return "", models.ErrNoRecord
	}
	return deref(j.HubSpotDealID), nil
}

func (f *fakeJobs) CountByStatus(_ context.Context, status string) (int, error) {
	return f.byStatus[status], nil
}

func (f *fakeJobs) CountCompletedSince(context.Context, time.Time) (int, error) {
	return f.completed, nil
}

func (f *fakeJobs) AverageCompletedAmount(context.Context) (float64, error) { return f.average, nil }

func (f *fakeJobs) CountCustomersWithCompleted(_ context.Context, minJobs int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.minJobsSeen = minJobs
	return f.repeat, nil
}

type fakeAppointments struct {
	mu        sync.Mutex
	rows      map[string]models.Appointment
	linkErr   error
	createErr error
	dealErr   error
}

func newFakeAppointments() *fakeAppointments {
	return &fakeAppointments{rows: map[string]models.Appointment{}}
}

func (f *fakeAppointments) Create(_ context.Context, a models.Appointment) (models.Appointment, error) {
	if f.createErr != nil {
		return models.Appointment{}, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[a.ID] = a
	return a, nil
}

func (f *fakeAppointments) GetByID(_ context.Context, id string) (models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	if !ok {
		return models.Appointment{}, models.ErrNoRecord
	}
	return a, nil
}

func (f *fakeAppointments) ListByCustomer(_ context.Context, customerID string) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Appointment{}
	for _, a := range f.rows {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledTime.Before(out[j].ScheduledTime) })
	return out, nil
}

func (f *fakeAppointments) LinkJob(_ context.Context, id, jobID string) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.rows[id]
	a.JobID = &jobID
	f.rows[id] = a
	return nil
}

func (f *fakeAppointments) SetHubSpotDealID(_ context.Context, id, dealID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dealErr != nil {
		return f.dealErr
	}
	a := f.rows[id]
	a.HubSpotDealID = &dealID
	f.rows[id] = a
	return nil
}

type fakeEstimates struct {
	mu      sync.Mutex
	rows    map[string]models.Estimate
	expired int64
}

func newFakeEstimates() *fakeEstimates {
	return &fakeEstimates{rows: map[string]models.Estimate{}}
}

func (f *fakeEstimates) Create(_ context.Context, e models.Estimate) (models.Estimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[e.ID] = e
	return e, nil
}

func (f *fakeEstimates) GetByID(_ context.Context, id string) (models.Estimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[id]
	if !ok {
		return models.Estimate{}, models.ErrNoRecord
	}
	return e, nil
}

func (f *fakeEstimates) ListByCustomer(_ context.Context, customerID string) ([]models.Estimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Estimate{}
	for _, e := range f.rows {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEstimates) UpdateStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[id]
	if !ok {
		return models.ErrNoRecord
	}
	e.Status = status
	f.rows[id] = e
	return nil
}

func (f *fakeEstimates) SetHubSpotDealID(_ context.Context, id, dealID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.rows[id]
	e.HubSpotDealID = &dealID
	f.rows[id] = e
	return nil
}

func (f *fakeEstimates) ExpirePending(context.Context, time.Time) (int64, error) {
	return f.expired, nil
}

type fakePayments struct {
	mu        sync.Mutex
	rows      []models.Payment
	createErr error
	markErr   error
	marked    map[string]string
	paidAt    *time.Time
	revenue   float64
	sumErr    error
}

func (f *fakePayments) Create(_ context.Context, p models.Payment) (models.Payment, error) {
	if f.createErr != nil {
		return models.Payment{}, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, p)
	return p, nil
}

func (f *fakePayments) GetByID(_ context.Context, id string) (models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Payment{}, models.ErrNoRecord
}

func (f *fakePayments) ListByCustomer(context.Context, string) ([]models.Payment, error) {
	return f.rows, nil
}

func (f *fakePayments) MarkByIntent(_ context.Context, intentID, status string, paidAt *time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.marked == nil {
		f.marked = map[string]string{}
	}
	f.marked[intentID] = status
	f.paidAt = paidAt
	return nil
}

func (f *fakePayments) SumCompletedSince(context.Context, time.Time) (float64, error) {
	if f.sumErr != nil {
		return 0, f.sumErr
	}
	return f.revenue, nil
}

type fakeInvoices struct {
	paid []string
}

func (f *fakeInvoices) MarkPaid(_ context.Context, id string, _ time.Time) error {
	f.paid = append(f.paid, id)
	return nil
}

type fakeGateway struct {
	configured bool
	err        error
	got        pay.PaymentIntentRequest
}

func (f *fakeGateway) Configured() bool { return f.configured }

func (f *fakeGateway) CreatePaymentIntent(_ context.Context, req pay.PaymentIntentRequest) (pay.PaymentIntent, error) {
	f.got = req
	if f.err != nil {
		return pay.PaymentIntent{}, f.err
	}
	return pay.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret", Status: "requires_payment_method"}, nil
}

type fakeCRM struct {
	mu         sync.Mutex
	configured bool
	contactErr error
	dealErr    error
	contacts   []crm.Contact
	deals      []crm.Deal
	dealOwners []string
	updates    map[string]map[string]string
}

func newFakeCRM() *fakeCRM {
	return &fakeCRM{configured: true, updates: map[string]map[string]string{}}
}

func (f *fakeCRM) Configured() bool { return f.configured }

func (f *fakeCRM) UpsertContact(_ context.Context, c crm.Contact) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.contactErr != nil {
		return "", f.contactErr
	}
	f.contacts = append(f.contacts, c)
	return "contact-1", nil
}

func (f *fakeCRM) CreateDeal(_ context.Context, d crm.Deal, contactID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dealErr != nil {
		return "", f.dealErr
	}
	f.deals = append(f.deals, d)
	f.dealOwners = append(f.dealOwners, contactID)
	return "deal-1", nil
}

func (f *fakeCRM) UpdateDeal(_ context.Context, dealID string, props map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[dealID] = props
	return nil
}

type fakeSMS struct {
	configured bool
	err        error
	to, body   string
}

func (f *fakeSMS) Configured() bool { return f.configured }

func (f *fakeSMS) SendSMS(_ context.Context, to, body string) (string, error) {
	f.to, f.body = to, body
	if f.err != nil {
		return "", f.err
	}
	return "SM123", nil
}

// recordingPublisher captures published events in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Topic)
	}
	return out
}

// syncQueue delivers events inline to subscribers.
type syncQueue struct {
	handlers map[string][]queue.Handler
}

func newSyncQueue() *syncQueue { return &syncQueue{handlers: map[string][]queue.Handler{}} }

func (q *syncQueue) Publish(ctx context.Context, ev models.Event) error {
	var errs []error
	for _, h := range q.handlers[ev.Topic] {
		errs = append(errs, h(ctx, ev))
	}
	return errors.Join(errs...)
}

func (q *syncQueue) Subscribe(topic string, h queue.Handler) error {
	q.handlers[topic] = append(q.handlers[topic], h)
	return nil
}

func (q *syncQueue) Close() error { return nil }

type fakeMessaging struct {
	mu   sync.Mutex
	sent []*messaging.Message
}

func (f *fakeMessaging) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return "projects/x/messages/1", nil
}
