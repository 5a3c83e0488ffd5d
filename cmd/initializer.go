package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ospreyBack/internal/config"
	"ospreyBack/internal/crm"
	"ospreyBack/internal/handlers"
	"ospreyBack/internal/models"
	"ospreyBack/internal/notify"
	"ospreyBack/internal/pay"
	"ospreyBack/internal/queue"
	"ospreyBack/internal/ratelimit"
	"ospreyBack/internal/repositories"
	"ospreyBack/internal/services"
	"ospreyBack/utils"
)

type application struct {
	log    *zap.Logger
	db     *sql.DB
	redis  *redis.Client
	queue  queue.Queue
	hub    *EventHub
	tokens *utils.Manager

	estimateService *services.EstimateService

	leadHandler        *handlers.LeadHandler
	customerHandler    *handlers.CustomerHandler
	bookingHandler     *handlers.BookingHandler
	appointmentHandler *handlers.AppointmentHandler
	jobHandler         *handlers.JobHandler
	estimateHandler    *handlers.EstimateHandler
	paymentHandler     *handlers.PaymentHandler
	recurringHandler   *handlers.RecurringHandler
	smsHandler         *handlers.SMSHandler
	hubspotHandler     *handlers.HubSpotHandler
	adminHandler       *handlers.AdminHandler
	imageHandler       *handlers.ImageHandler
}

func initializeApp(ctx context.Context, cfg config.Config, db *sql.DB, logger *zap.Logger) (*application, error) {
	dialect := repositories.DialectFor(cfg.Database.Driver)
	httpClient := &http.Client{Timeout: 15 * time.Second}

	// Repositories
	leadRepo, err := repositories.NewLeadRepository(db, dialect, cfg.Database.LeadsTable)
	if err != nil {
		return nil, err
	}
	customerRepo := repositories.NewCustomerRepository(db, dialect)
	appointmentRepo := repositories.NewAppointmentRepository(db, dialect)
	jobRepo := repositories.NewJobRepository(db, dialect)
	estimateRepo := repositories.NewEstimateRepository(db, dialect)
	paymentRepo := repositories.NewPaymentRepository(db, dialect)
	invoiceRepo := repositories.NewInvoiceRepo(db, dialect)
	recurringRepo := repositories.NewRecurringServiceRepository(db, dialect)
	adminRepo := repositories.NewAdminUserRepository(db, dialect)
	assetRepo := repositories.NewImageAssetRepository(db, dialect)

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	}
	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.Max, window)
	if rdb != nil {
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimit.Max, window, logger)
	}

	var q queue.Queue
	if cfg.AMQP.URL != "" {
		amqpQueue, err := queue.DialAMQP(cfg.AMQP.URL, logger.Named("amqp"))
		if err != nil {
			return nil, fmt.Errorf("dial amqp: %w", err)
		}
		q = amqpQueue
	} else {
		q = queue.NewInMemoryQueue(logger.Named("queue"))
	}
	hub := NewEventHub(logger.Named("ws"))
	events := &hubPublisher{next: q, hub: hub}

	tokens, err := utils.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	// External providers
	hubspot := crm.NewClient(httpClient, cfg.HubSpot.APIKey, cfg.HubSpot.BaseURL)
	stripe := pay.NewClient(httpClient, cfg.Stripe.SecretKey, cfg.Stripe.BaseURL)
	twilio := notify.NewTwilioClient(httpClient, notify.TwilioConfig{
		AccountSID:  cfg.Twilio.AccountSID,
		AuthToken:   cfg.Twilio.AuthToken,
		PhoneNumber: cfg.Twilio.PhoneNumber,
		BaseURL:     cfg.Twilio.BaseURL,
	})
	pusher := &notify.Pusher{Topic: cfg.FCM.Topic}
	if cfg.FCM.CredentialsFile != "" {
		client, err := notify.NewFCMClient(ctx, cfg.FCM.CredentialsFile)
		if err != nil {
			logger.Warn("fcm disabled", zap.Error(err))
		} else {
			pusher.Sender = client
		}
	}

	// Services
	leadService := &services.LeadService{LeadRepo: leadRepo, Events: events, Log: logger}
	customerService := &services.CustomerService{CustomerRepo: customerRepo}
	bookingService := &services.BookingService{
		CustomerRepo:    customerRepo,
		AppointmentRepo: appointmentRepo,
		JobRepo:         jobRepo,
		Events:          events,
		Log:             logger,
	}
	appointmentService := &services.AppointmentService{AppointmentRepo: appointmentRepo}
	jobService := &services.JobService{JobRepo: jobRepo}
	estimateService := &services.EstimateService{
		EstimateRepo: estimateRepo,
		CustomerRepo: customerRepo,
		JobRepo:      jobRepo,
		Events:       events,
		Log:          logger,
	}
	paymentService := &services.PaymentService{
		PaymentRepo:   paymentRepo,
		CustomerRepo:  customerRepo,
		InvoiceRepo:   invoiceRepo,
		Gateway:       stripe,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Events:        events,
		Log:           logger,
	}
	recurringService := &services.RecurringServiceService{RecurringRepo: recurringRepo}
	notificationService := &services.NotificationService{SMS: twilio, Push: pusher, Log: logger}
	crmSyncService := &services.CRMSyncService{
		LeadRepo:        leadRepo,
		CustomerRepo:    customerRepo,
		AppointmentRepo: appointmentRepo,
		EstimateRepo:    estimateRepo,
		JobRepo:         jobRepo,
		CRM:             hubspot,
		Log:             logger,
	}
	adminService := &services.AdminService{
		AdminRepo:    adminRepo,
		CustomerRepo: customerRepo,
		LeadRepo:     leadRepo,
		JobRepo:      jobRepo,
		PaymentRepo:  paymentRepo,
		TokenManager: tokens,
	}
	imageService := &services.ImageAssetService{AssetRepo: assetRepo, Bucket: cfg.Storage.Bucket}

	// With a broker the crmworker process owns the consumers.
	if cfg.AMQP.URL == "" {
		if err := crmSyncService.Subscribe(q); err != nil {
			return nil, err
		}
		if err := notificationService.SubscribePush(q); err != nil {
			return nil, err
		}
	}

	return &application{
		log:             logger,
		db:              db,
		redis:           rdb,
		queue:           q,
		hub:             hub,
		tokens:          tokens,
		estimateService: estimateService,

		leadHandler: &handlers.LeadHandler{
			Service: leadService,
			Limiter: limiter,
			Enabled: cfg.LeadSubmissionEnabled,
			Log:     logger,
		},
		customerHandler:    &handlers.CustomerHandler{Service: customerService, Log: logger},
		bookingHandler:     &handlers.BookingHandler{Service: bookingService, Log: logger},
		appointmentHandler: &handlers.AppointmentHandler{Service: appointmentService, Log: logger},
		jobHandler:         &handlers.JobHandler{Service: jobService, Log: logger},
		estimateHandler:    &handlers.EstimateHandler{Service: estimateService, Log: logger},
		paymentHandler:     &handlers.PaymentHandler{Service: paymentService, Log: logger},
		recurringHandler:   &handlers.RecurringHandler{Service: recurringService, Log: logger},
		smsHandler:         &handlers.SMSHandler{Service: notificationService, Log: logger},
		hubspotHandler: &handlers.HubSpotHandler{
			Service:      crmSyncService,
			DBConfigured: func() bool { return db != nil },
			Log:          logger,
		},
		adminHandler: &handlers.AdminHandler{Service: adminService, Log: logger},
		imageHandler: &handlers.ImageHandler{Service: imageService, Log: logger},
	}, nil
}

func (app *application) close() {
	if err := app.queue.Close(); err != nil {
		app.log.Warn("queue close", zap.Error(err))
	}
	if app.redis != nil {
		_ = app.redis.Close()
	}
}

// hubPublisher mirrors every published event to connected admin sockets.
type hubPublisher struct {
	next queue.Queue
	hub  *EventHub
}

func (p *hubPublisher) Publish(ctx context.Context, ev models.Event) error {
	p.hub.Broadcast(ev)
	return p.next.Publish(ctx, ev)
}
