package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, requestIdentity, app.logRequest, secureHeaders, makeResponseJSON)
	adminMiddleware := standardMiddleware.Append(app.requireAdmin)
	socketMiddleware := alice.New(app.recoverPanic, requestIdentity, app.logRequest, app.requireAdmin)

	mux := pat.New()

	// Leads
	mux.Post("/api/leads", standardMiddleware.ThenFunc(app.leadHandler.Submit))

	// Customers
	mux.Get("/api/customers", standardMiddleware.ThenFunc(app.customerHandler.GetCustomers))

	// Bookings
	mux.Post("/api/bookings", standardMiddleware.ThenFunc(app.bookingHandler.CreateBooking))
	mux.Get("/api/bookings", standardMiddleware.ThenFunc(app.bookingHandler.AvailableSlots))

	// Jobs
	mux.Get("/api/jobs", standardMiddleware.ThenFunc(app.jobHandler.GetJobs))
	mux.Add("PATCH", "/api/jobs", standardMiddleware.ThenFunc(app.jobHandler.UpdateJob))

	// Appointments
	mux.Get("/api/appointments", standardMiddleware.ThenFunc(app.appointmentHandler.GetAppointments))

	// Estimates
	mux.Post("/api/estimates", standardMiddleware.ThenFunc(app.estimateHandler.CreateEstimate))
	mux.Get("/api/estimates", standardMiddleware.ThenFunc(app.estimateHandler.GetEstimates))
	mux.Add("PATCH", "/api/estimates", standardMiddleware.ThenFunc(app.estimateHandler.UpdateEstimateStatus))
	mux.Get("/api/estimates/:id/pdf", standardMiddleware.ThenFunc(app.estimateHandler.GetEstimateDocument))

	// Payments
	mux.Post("/api/payments/webhook", standardMiddleware.ThenFunc(app.paymentHandler.Webhook))
	mux.Post("/api/payments", standardMiddleware.ThenFunc(app.paymentHandler.CreatePayment))
	mux.Get("/api/payments", standardMiddleware.ThenFunc(app.paymentHandler.GetPayments))

	// Recurring services
	mux.Post("/api/recurring-services", standardMiddleware.ThenFunc(app.recurringHandler.CreateRecurringService))
	mux.Get("/api/recurring-services", standardMiddleware.ThenFunc(app.recurringHandler.GetRecurringServices))

	// Notifications
	mux.Post("/api/sms", standardMiddleware.ThenFunc(app.smsHandler.SendSMS))

	// HubSpot
	mux.Post("/api/hubspot-sync", standardMiddleware.ThenFunc(app.hubspotHandler.Sync))
	mux.Get("/api/hubspot-sync", standardMiddleware.ThenFunc(app.hubspotHandler.Status))

	// Images
	mux.Post("/api/images", standardMiddleware.ThenFunc(app.imageHandler.Register))
	mux.Get("/api/images", standardMiddleware.ThenFunc(app.imageHandler.ListByJob))

	// Admin
	mux.Post("/api/admin/login", standardMiddleware.ThenFunc(app.adminHandler.Login))
	mux.Get("/api/admin/metrics", adminMiddleware.ThenFunc(app.adminHandler.Metrics))
	mux.Get("/ws/admin/events", socketMiddleware.ThenFunc(app.hub.ServeWS))

	return mux
}
