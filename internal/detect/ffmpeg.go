package detect

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// FFmpegRunner implements Runner using ffmpeg's cropdetect filter.
// Each run decodes only the video stream of the requested window and
// discards the output; the crop reports are read from ffmpeg's combined
// output text.
type FFmpegRunner struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
}

// NewFFmpegRunner creates a new FFmpegRunner.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpegRunner(ffmpegPath string) *FFmpegRunner {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegRunner{ffmpegPath: ffmpegPath}
}

// Run invokes ffmpeg with cropdetect over the given window and returns
// the combined stdout/stderr text.
func (r *FFmpegRunner) Run(ctx context.Context, input string, w SampleWindow) (string, error) {
	args := []string{
		"-hide_banner",
		"-ss", strconv.Itoa(w.Start),
		"-i", input,
		"-an", "-sn", "-dn", // video only: no audio, subtitle or data streams
		"-vf", "cropdetect",
	}
	if w.Length > 0 {
		args = append(args, "-t", strconv.Itoa(w.Length))
	}
	// Analysis-only pass: decode and throw the frames away.
	args = append(args, "-f", "null", "-")

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("cropdetect cancelled: %w", ctx.Err())
		}
		return "", &AnalyzerError{
			Args:   args,
			Output: combined.String(),
			Err:    err,
		}
	}

	return combined.String(), nil
}

// AnalyzerError represents a failed analyzer invocation, including the
// arguments used and the combined process output.
type AnalyzerError struct {
	Args   []string
	Output string
	Err    error
}

func (e *AnalyzerError) Error() string {
	return fmt.Sprintf("cropdetect error: %v\nargs: %v\noutput: %s", e.Err, e.Args, e.Output)
}

func (e *AnalyzerError) Unwrap() error {
	return e.Err
}

// Verify interface implementation at compile time.
var _ Runner = (*FFmpegRunner)(nil)
