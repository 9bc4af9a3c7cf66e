// Package bootstrap provides dependency initialization for the black bar detection API.
package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/blackbarhq/blackbar/internal/config"
	"github.com/blackbarhq/blackbar/internal/detect"
	"github.com/blackbarhq/blackbar/internal/job"
	"github.com/blackbarhq/blackbar/internal/notify"
	"github.com/blackbarhq/blackbar/internal/probe"
	"github.com/blackbarhq/blackbar/internal/storage"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	DetectionService *job.DetectionService
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Initialize input fetching
	fetcher, err := initFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize probing and detection
	prober := probe.NewFFprobe(cfg.FFprobePath)
	detector := detect.NewDetector(logger,
		detect.WithRunner(detect.NewFFmpegRunner(cfg.FFmpegPath)),
		detect.WithSampleTimeout(time.Duration(cfg.SampleTimeoutSec)*time.Second),
	)

	// Initialize webhook notifications when configured per job; the
	// client itself is stateless and shared.
	var notifier notify.Notifier = notify.NewWebhookClient()

	// Initialize job repository
	repo := job.NewMemoryRepository()

	svc := job.NewDetectionService(
		repo,
		fetcher,
		prober,
		detector,
		notifier,
		logger,
		job.WithDefaultWebhookURL(cfg.WebhookURL),
	)

	return &Dependencies{
		DetectionService: svc,
	}, nil
}

// initFetcher creates the appropriate input fetcher based on configuration.
func initFetcher(cfg *config.Config, logger *slog.Logger) (storage.Fetcher, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Fetcher, err := storage.NewS3Fetcher(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 fetcher: %w", err)
		}
		logger.Info("S3 input fetching configured",
			slog.String("region", cfg.S3Region),
		)
		return s3Fetcher, nil
	}

	localFetcher, err := storage.NewLocalFetcher(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local fetcher: %w", err)
	}
	logger.Info("local input fetching configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localFetcher, nil
}
