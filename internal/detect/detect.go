package detect

import (
	"context"
	"log/slog"
	"time"

	"github.com/blackbarhq/blackbar/internal/probe"
)

// Detector ties the detection pipeline together: it resolves the media
// duration from probe metadata, schedules sample windows for it, and
// feeds the resulting observations to the quorum engine.
type Detector struct {
	runner        Runner
	sampleTimeout time.Duration
	logger        *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithRunner replaces the default ffmpeg-based analyzer runner.
func WithRunner(r Runner) Option {
	return func(d *Detector) {
		d.runner = r
	}
}

// WithSampleTimeout bounds each analyzer invocation. Zero means no
// per-invocation limit.
func WithSampleTimeout(timeout time.Duration) Option {
	return func(d *Detector) {
		d.sampleTimeout = timeout
	}
}

// NewDetector creates a Detector. By default it analyzes windows with
// ffmpeg's cropdetect filter found via PATH.
func NewDetector(logger *slog.Logger, opts ...Option) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Detector{
		runner: NewFFmpegRunner(""),
		logger: logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect decides whether the video at input contains black bars and, if
// so, which rectangle should be cropped. A nil rectangle means "no
// crop". The meta parameter is the probe report for the same file; its
// duration fields drive the sampling schedule and its video dimensions
// are used to suppress full-frame pseudo-crops.
//
// Detection holds no state across calls; concurrent calls for different
// files are independent.
func (d *Detector) Detect(ctx context.Context, input string, meta *probe.Data) (*Rectangle, error) {
	srcWidth, srcHeight := meta.VideoDimensions()
	duration := ResolveDuration(meta)
	windows := Schedule(duration)

	d.logger.Info("sampling video to detect black bars",
		slog.String("input", input),
		slog.Bool("duration_known", duration.Known),
		slog.Float64("duration_seconds", duration.Seconds),
		slog.Int("scheduled_windows", len(windows)),
	)

	runner := d.runner
	if d.sampleTimeout > 0 {
		runner = &timeoutRunner{runner: runner, timeout: d.sampleTimeout}
	}
	executor := NewExecutor(runner, input, srcWidth, srcHeight, d.logger)
	rect, err := Decide(ctx, windows, executor, d.logger)
	if err != nil {
		return nil, err
	}

	if rect == nil {
		d.logger.Info("no crop detected", slog.String("input", input))
	} else {
		d.logger.Info("crop detected",
			slog.String("input", input),
			slog.String("crop", rect.String()),
		)
	}
	return rect, nil
}

// timeoutRunner wraps a Runner with a per-invocation deadline.
type timeoutRunner struct {
	runner  Runner
	timeout time.Duration
}

func (r *timeoutRunner) Run(ctx context.Context, input string, w SampleWindow) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.runner.Run(ctx, input, w)
}
