// Package main provides a one-shot CLI for black bar detection.
// It probes the given file, runs the detection pipeline and prints the
// result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackbarhq/blackbar/internal/detect"
	"github.com/blackbarhq/blackbar/internal/probe"
)

// result is the CLI output document.
type result struct {
	Input       string            `json:"input"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	DurationSec float64           `json:"duration_sec,omitempty"`
	Crop        *detect.Rectangle `json:"crop"`
	Filter      string            `json:"filter,omitempty"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ffmpegPath := flag.String("ffmpeg", "ffmpeg", "path to the ffmpeg binary")
	ffprobePath := flag.String("ffprobe", "ffprobe", "path to the ffprobe binary")
	sampleTimeout := flag.Duration("sample-timeout", 120*time.Second, "timeout per analyzer invocation")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: %s [flags] <media file>", os.Args[0])
	}
	input := flag.Arg(0)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prober := probe.NewFFprobe(*ffprobePath)
	meta, err := prober.Probe(ctx, input)
	if err != nil {
		return fmt.Errorf("probe input: %w", err)
	}

	detector := detect.NewDetector(logger,
		detect.WithRunner(detect.NewFFmpegRunner(*ffmpegPath)),
		detect.WithSampleTimeout(*sampleTimeout),
	)

	crop, err := detector.Detect(ctx, input, meta)
	if err != nil {
		return fmt.Errorf("detect black bars: %w", err)
	}

	width, height := meta.VideoDimensions()
	out := result{
		Input:       input,
		Width:       width,
		Height:      height,
		DurationSec: detect.ResolveDuration(meta).Seconds,
		Crop:        crop,
	}
	if crop != nil {
		out.Filter = crop.FilterSpec()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
