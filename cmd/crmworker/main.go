// Command crmworker consumes domain events from the broker and keeps HubSpot
// and staff push notifications in step with the API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ospreyBack/internal/config"
	"ospreyBack/internal/crm"
	"ospreyBack/internal/notify"
	"ospreyBack/internal/queue"
	"ospreyBack/internal/repositories"
	"ospreyBack/internal/services"
)

var withPush bool

var rootCmd = &cobra.Command{
	Use:           "crmworker",
	Short:         "Sync booking, estimate and payment events to HubSpot",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runWorker,
}

func init() {
	rootCmd.Flags().BoolVar(&withPush, "push", true, "also deliver staff push notifications")
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "crmworker:", err)
		os.Exit(1)
	}
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.AMQP.URL == "" {
		return errors.New("AMQP_URL is required")
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := repositories.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	dialect := repositories.DialectFor(cfg.Database.Driver)

	leadRepo, err := repositories.NewLeadRepository(db, dialect, cfg.Database.LeadsTable)
	if err != nil {
		return err
	}

	q, err := queue.DialAMQP(cfg.AMQP.URL, log.Named("amqp"))
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	defer q.Close()

	httpClient := &http.Client{Timeout: 15 * time.Second}
	sync := &services.CRMSyncService{
		LeadRepo:        leadRepo,
		CustomerRepo:    repositories.NewCustomerRepository(db, dialect),
		AppointmentRepo: repositories.NewAppointmentRepository(db, dialect),
		EstimateRepo:    repositories.NewEstimateRepository(db, dialect),
		JobRepo:         repositories.NewJobRepository(db, dialect),
		CRM:             crm.NewClient(httpClient, cfg.HubSpot.APIKey, cfg.HubSpot.BaseURL),
		Log:             log,
	}
	if !sync.Configured() {
		log.Warn("HUBSPOT_API_KEY not set, CRM events will be acknowledged without syncing")
	}
	if err := sync.Subscribe(q); err != nil {
		return err
	}

	if withPush && cfg.FCM.CredentialsFile != "" {
		client, err := notify.NewFCMClient(ctx, cfg.FCM.CredentialsFile)
		if err != nil {
			return fmt.Errorf("fcm: %w", err)
		}
		notifier := &services.NotificationService{
			Push: &notify.Pusher{Sender: client, Topic: cfg.FCM.Topic},
			Log:  log,
		}
		if err := notifier.SubscribePush(q); err != nil {
			return err
		}
	}

	log.Info("crm worker started")
	<-ctx.Done()
	log.Info("crm worker stopping")
	return nil
}
