// Command imagepipeline turns field photos into uploaded, indexed job
// galleries. `run` processes the incoming directory once and `watch` keeps
// processing it as new files land.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ospreyBack/internal/config"
	"ospreyBack/internal/photos"
	"ospreyBack/internal/repositories"
	"ospreyBack/internal/services"
	"ospreyBack/utils"
)

var rootCmd = &cobra.Command{
	Use:           "imagepipeline",
	Short:         "Process job photos into web galleries",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the incoming directory once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPipeline(cmd.Context(), func(ctx context.Context, p *photos.Pipeline, _ config.Config, log *zap.Logger) error {
			res, err := p.Run(ctx)
			if err != nil {
				return err
			}
			log.Info("pipeline finished", zap.Int("files", res.Files), zap.Strings("jobs", res.Jobs))
			return nil
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process the incoming directory whenever files are added",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPipeline(cmd.Context(), func(ctx context.Context, p *photos.Pipeline, cfg config.Config, log *zap.Logger) error {
			if _, err := p.Run(ctx); err != nil {
				return err
			}
			w := &photos.Watcher{
				Dir:      cfg.Pipeline.IncomingDir,
				Ignore:   cfg.Pipeline.ProcessedDir,
				Debounce: time.Duration(cfg.Pipeline.WatchDebounceMS) * time.Millisecond,
				OnChange: func(ctx context.Context) error {
					res, err := p.Run(ctx)
					if err == nil && res.Files > 0 {
						log.Info("pipeline finished", zap.Int("files", res.Files), zap.Strings("jobs", res.Jobs))
					}
					return err
				},
				Log: log,
			}
			log.Info("watching for photos", zap.String("dir", w.Dir))
			return w.Watch(ctx)
		})
	},
}

var (
	incomingDir string
	jobsDir     string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&incomingDir, "incoming", "", "incoming photo directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&jobsDir, "jobs", "", "job JSON output directory (overrides config)")
	rootCmd.AddCommand(runCmd, watchCmd)
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "imagepipeline:", err)
		os.Exit(1)
	}
}

type pipelineFunc func(ctx context.Context, p *photos.Pipeline, cfg config.Config, log *zap.Logger) error

// withPipeline builds the pipeline from config and releases its resources
// after fn returns.
func withPipeline(ctx context.Context, fn pipelineFunc) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if incomingDir != "" {
		cfg.Pipeline.IncomingDir = incomingDir
	}
	if jobsDir != "" {
		cfg.Pipeline.JobsDir = jobsDir
	}

	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	if !cfg.Storage.Configured() {
		return photos.ErrStorageNotConfigured
	}
	uploader, err := utils.NewS3Uploader(cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}

	p := &photos.Pipeline{
		Cfg:      cfg.Pipeline,
		Geocoder: photos.NewGeocoder(cfg.Pipeline.GeocoderURL, cfg.Pipeline.GeocoderUserAgent, rdb, log.Named("geocode")),
		Uploader: uploader,
		Log:      log,
	}

	// Asset rows are optional; without a database only the JSON index is written.
	if cfg.Database.URL != "" {
		db, err := repositories.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			log.Warn("database unavailable, skipping image asset rows", zap.Error(err))
		} else {
			defer func(db *sql.DB) { _ = db.Close() }(db)
			p.Assets = &services.ImageAssetService{
				AssetRepo: repositories.NewImageAssetRepository(db, repositories.DialectFor(cfg.Database.Driver)),
				Bucket:    uploader.Bucket(),
			}
		}
	}

	return fn(ctx, p, cfg, log)
}
