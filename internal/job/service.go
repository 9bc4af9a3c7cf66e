package job

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/blackbarhq/blackbar/internal/detect"
	"github.com/blackbarhq/blackbar/internal/notify"
	"github.com/blackbarhq/blackbar/internal/probe"
	"github.com/blackbarhq/blackbar/internal/storage"
)

// Detector decides the crop rectangle for a probed media file.
// A nil rectangle means no black bars were found.
type Detector interface {
	Detect(ctx context.Context, input string, meta *probe.Data) (*detect.Rectangle, error)
}

// DetectionInput contains the parameters for a new detection job.
type DetectionInput struct {
	// Input is a local path or s3:// URL of the media to analyze.
	Input string
	// WebhookURL optionally receives the job outcome.
	WebhookURL string
}

// DetectionService orchestrates the detection workflow: it resolves the
// input to a local file, probes it, runs black bar detection and records
// the outcome on the job.
type DetectionService struct {
	repo              Repository
	fetcher           storage.Fetcher
	prober            probe.Prober
	detector          Detector
	notifier          notify.Notifier
	logger            *slog.Logger
	defaultWebhookURL string

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

// ServiceOption is a function that configures a DetectionService.
type ServiceOption func(*DetectionService)

// WithDefaultWebhookURL sets a server-wide webhook URL applied to jobs
// that do not carry their own.
func WithDefaultWebhookURL(url string) ServiceOption {
	return func(s *DetectionService) {
		s.defaultWebhookURL = url
	}
}

// NewDetectionService creates a new DetectionService.
// The notifier may be nil, in which case webhook URLs are ignored.
func NewDetectionService(
	repo Repository,
	fetcher storage.Fetcher,
	prober probe.Prober,
	detector Detector,
	notifier notify.Notifier,
	logger *slog.Logger,
	opts ...ServiceOption,
) *DetectionService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DetectionService{
		repo:     repo,
		fetcher:  fetcher,
		prober:   prober,
		detector: detector,
		notifier: notifier,
		logger:   logger,
		running:  make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateJob creates a new job in QUEUED status and persists it.
func (s *DetectionService) CreateJob(ctx context.Context, input DetectionInput) (*Job, error) {
	j := New(input.Input)
	j.WebhookURL = input.WebhookURL
	if j.WebhookURL == "" {
		j.WebhookURL = s.defaultWebhookURL
	}

	s.logger.Info("creating detection job",
		slog.String("job_id", j.ID),
		slog.String("input", input.Input),
	)

	if err := s.repo.Save(ctx, j); err != nil {
		s.logger.Error("failed to save job",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return j, nil
}

// GetJob retrieves a job by ID.
func (s *DetectionService) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.FindByID(ctx, id)
}

// ListJobs returns all jobs.
func (s *DetectionService) ListJobs(ctx context.Context) ([]*Job, error) {
	return s.repo.List(ctx)
}

// CancelJob cancels a queued or running job. A running analysis is
// interrupted through its context.
func (s *DetectionService) CancelJob(ctx context.Context, id string) (*Job, error) {
	j, err := s.repo.Update(ctx, id, func(stored *Job) error {
		return stored.Cancel()
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if cancel, ok := s.running[id]; ok {
		cancel()
	}
	s.mu.Unlock()

	s.logger.Info("job cancelled", slog.String("job_id", id))
	return j, nil
}

// DeleteJob removes a job record. A still-active job is cancelled
// before removal.
func (s *DetectionService) DeleteJob(ctx context.Context, id string) error {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !j.IsTerminal() {
		if _, err := s.CancelJob(ctx, id); err != nil && !errors.Is(err, ErrInvalidTransition) {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("job deleted", slog.String("job_id", id))
	return nil
}

// Run executes the detection workflow for an existing QUEUED job. It is
// expected to be called once per job, typically on a background
// goroutine. The final state and any detected crop are persisted; a
// webhook notification is sent when the job carries a webhook URL.
func (s *DetectionService) Run(ctx context.Context, jobID string) {
	j, err := s.repo.Update(ctx, jobID, func(stored *Job) error {
		return stored.Start()
	})
	if err != nil {
		// Missing, already cancelled or otherwise out of QUEUED.
		s.logger.Warn("job not runnable",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.running[jobID] = cancel
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.running, jobID)
		s.mu.Unlock()
	}()

	crop, err := s.analyze(runCtx, j)
	if err != nil {
		s.fail(ctx, j, err)
		return
	}

	// The transition runs against the stored job under the repository
	// lock, so a cancellation that landed during the analysis rejects
	// the result instead of being overwritten.
	updated, err := s.repo.Update(ctx, jobID, func(stored *Job) error {
		stored.SetMediaInfo(j.SourceWidth, j.SourceHeight, j.DurationSec)
		return stored.Complete(crop)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			s.logger.Info("job no longer running, result discarded",
				slog.String("job_id", jobID),
			)
			return
		}
		s.logger.Error("failed to persist job result",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.notify(ctx, updated)
}

// analyze resolves, probes and analyzes the job input.
func (s *DetectionService) analyze(ctx context.Context, j *Job) (*detect.Rectangle, error) {
	path, err := s.fetcher.Fetch(ctx, j.Input)
	if err != nil {
		return nil, err
	}
	if path != j.Input {
		// Downloaded copy, remove it when the analysis is done.
		defer func() {
			if err := s.fetcher.CleanupTemp(context.WithoutCancel(ctx), []string{path}); err != nil {
				s.logger.Warn("failed to remove downloaded input",
					slog.String("job_id", j.ID),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	meta, err := s.prober.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	width, height := meta.VideoDimensions()
	duration := detect.ResolveDuration(meta)
	j.SetMediaInfo(width, height, duration.Seconds)

	return s.detector.Detect(ctx, path, meta)
}

// fail marks the job FAILED unless it was cancelled meanwhile.
func (s *DetectionService) fail(ctx context.Context, j *Job, cause error) {
	s.logger.Error("detection failed",
		slog.String("job_id", j.ID),
		slog.String("input", j.Input),
		slog.String("error", cause.Error()),
	)

	updated, err := s.repo.Update(ctx, j.ID, func(stored *Job) error {
		return stored.Fail(cause.Error())
	})
	if err != nil {
		// Cancelled during the analysis or removed meanwhile.
		return
	}

	s.notify(ctx, updated)
}

// notify delivers the job outcome to its webhook, if any.
func (s *DetectionService) notify(ctx context.Context, j *Job) {
	if s.notifier == nil || j.WebhookURL == "" {
		return
	}

	snapshot := j.Clone()
	event := notify.Event{
		JobID:       snapshot.ID,
		Input:       snapshot.Input,
		Status:      string(snapshot.Status),
		Crop:        snapshot.Crop,
		Error:       snapshot.Error,
		CompletedAt: snapshot.CompletedAt,
	}

	if err := s.notifier.Notify(ctx, snapshot.WebhookURL, event); err != nil {
		s.logger.Error("webhook delivery failed",
			slog.String("job_id", snapshot.ID),
			slog.String("error", err.Error()),
		)
	}
}
