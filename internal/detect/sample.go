package detect

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
)

// Runner executes the external frame analyzer over one sample window of
// an input file and returns its combined text output. Implementations
// invoke a real tool; tests substitute scripted output.
type Runner interface {
	Run(ctx context.Context, input string, w SampleWindow) (string, error)
}

// Sampler realizes sample windows as normalized observations.
type Sampler interface {
	Sample(ctx context.Context, w SampleWindow) (Observation, error)
}

// cropReportRe matches one crop report line in analyzer output. Later
// matches supersede earlier ones: the analyzer's estimate stabilizes
// over the sampled frames.
var cropReportRe = regexp.MustCompile(`crop=(\d+):(\d+):(\d+):(\d+)`)

// Executor runs the analyzer for a single input file and reduces each
// raw report to an Observation, using the source frame dimensions to
// suppress spurious full-frame "crops".
type Executor struct {
	runner    Runner
	input     string
	srcWidth  int
	srcHeight int
	logger    *slog.Logger
}

// NewExecutor creates an Executor for one input file. srcWidth and
// srcHeight are the probe-reported frame dimensions; they may be zero
// for degenerate sources, in which case no observation is ever
// normalized away.
func NewExecutor(runner Runner, input string, srcWidth, srcHeight int, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		runner:    runner,
		input:     input,
		srcWidth:  srcWidth,
		srcHeight: srcHeight,
		logger:    logger,
	}
}

// Sample runs the analyzer over one window and returns the normalized
// observation. Output with no crop report yields NoCrop; a rectangle
// matching the full source frame carries no cropping information and is
// normalized to NoCrop as well. Analyzer process failures are returned
// as errors, not folded into NoCrop.
func (e *Executor) Sample(ctx context.Context, w SampleWindow) (Observation, error) {
	raw, err := e.runner.Run(ctx, e.input, w)
	if err != nil {
		return Observation{}, err
	}

	rect, ok := lastCropReport(raw)
	if !ok {
		return NoCrop(), nil
	}

	if rect.Width == e.srcWidth && rect.Height == e.srcHeight {
		e.logger.Debug("sample returned native-sized crop, treating as no crop",
			slog.Int("start", w.Start),
			slog.String("crop", rect.String()),
		)
		return NoCrop(), nil
	}

	return Crop(rect), nil
}

// lastCropReport extracts the last crop rectangle reported in raw
// analyzer output.
func lastCropReport(output string) (Rectangle, bool) {
	matches := cropReportRe.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return Rectangle{}, false
	}
	m := matches[len(matches)-1]
	// Submatches are \d+ so conversion cannot fail.
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	return Rectangle{Width: w, Height: h, X: x, Y: y}, true
}

// Verify interface implementation at compile time.
var _ Sampler = (*Executor)(nil)
