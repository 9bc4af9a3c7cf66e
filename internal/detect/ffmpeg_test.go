package detect

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not available.
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH, skipping test")
	}
}

// createLetterboxedVideo creates a short test video whose picture is
// padded with black bars top and bottom.
func createLetterboxedVideo(t *testing.T, path string, duration float64) {
	t.Helper()

	cmd := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=white:s=320x180:d=%.1f", duration),
		"-vf", "pad=320:240:0:30:black",
		"-c:v", "libx264",
		"-preset", "ultrafast",
		path,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to create test video: %v\noutput: %s", err, output)
	}
}

func TestFFmpegRunner_Run(t *testing.T) {
	skipIfNoFFmpeg(t)

	tmpDir := t.TempDir()
	ctx := context.Background()
	r := NewFFmpegRunner("")

	t.Run("reports the picture area of a letterboxed video", func(t *testing.T) {
		video := filepath.Join(tmpDir, "letterboxed.mp4")
		createLetterboxedVideo(t, video, 2.0)

		raw, err := r.Run(ctx, video, SampleWindow{Start: 0, Length: 0})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		rect, ok := lastCropReport(raw)
		if !ok {
			t.Fatalf("no crop report in output:\n%s", raw)
		}
		// cropdetect rounds to even dimensions; the padded bars are 30px
		// each so the detected height must be well below the frame.
		if rect.Height >= 240 || rect.Height < 170 {
			t.Errorf("expected cropped height near 180, got %d", rect.Height)
		}
	})

	t.Run("fails for a missing input", func(t *testing.T) {
		_, err := r.Run(ctx, filepath.Join(tmpDir, "missing.mp4"), SampleWindow{Start: 0, Length: 10})
		if err == nil {
			t.Fatal("expected error for missing input, got nil")
		}
		if _, ok := err.(*AnalyzerError); !ok {
			t.Errorf("expected AnalyzerError, got %T", err)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		video := filepath.Join(tmpDir, "cancel.mp4")
		createLetterboxedVideo(t, video, 1.0)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := r.Run(ctx, video, SampleWindow{Start: 0, Length: 0}); err == nil {
			t.Error("expected error for cancelled context, got nil")
		}
	})
}

func TestNewFFmpegRunner(t *testing.T) {
	t.Run("default path", func(t *testing.T) {
		r := NewFFmpegRunner("")
		if r.ffmpegPath != "ffmpeg" {
			t.Errorf("expected default path 'ffmpeg', got %q", r.ffmpegPath)
		}
	})

	t.Run("custom path", func(t *testing.T) {
		r := NewFFmpegRunner("/opt/ffmpeg/bin/ffmpeg")
		if r.ffmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
			t.Errorf("expected custom path, got %q", r.ffmpegPath)
		}
	})
}

func TestAnalyzerError(t *testing.T) {
	err := &AnalyzerError{
		Args:   []string{"-i", "input.mkv", "-vf", "cropdetect"},
		Output: "input.mkv: No such file or directory",
		Err:    fmt.Errorf("exit status 1"),
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "exit status 1") {
		t.Error("Error() should contain underlying error")
	}
	if !strings.Contains(errStr, "No such file or directory") {
		t.Error("Error() should contain process output")
	}

	unwrapped := err.Unwrap()
	if unwrapped == nil || unwrapped.Error() != "exit status 1" {
		t.Errorf("Unwrap() returned wrong error: %v", unwrapped)
	}
}
