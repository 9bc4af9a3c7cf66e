package detect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackbarhq/blackbar/internal/probe"
)

// scriptedRunner replays one raw analyzer output per invocation and
// records the windows it was asked to analyze.
type scriptedRunner struct {
	outputs []string
	windows []SampleWindow
}

func (r *scriptedRunner) Run(_ context.Context, _ string, w SampleWindow) (string, error) {
	r.windows = append(r.windows, w)
	return r.outputs[len(r.windows)-1], nil
}

func metaFor(duration string, width, height int) *probe.Data {
	return &probe.Data{
		Format: probe.Format{Duration: duration},
		Streams: []probe.Stream{
			{CodecType: "video", Width: width, Height: height},
		},
	}
}

func TestDetector_ShortFile(t *testing.T) {
	runner := &scriptedRunner{outputs: []string{
		"[Parsed_cropdetect_0 @ 0x1] crop=1920:800:0:140\n",
	}}
	d := NewDetector(nil, WithRunner(runner))

	rect, err := d.Detect(context.Background(), "short.mkv", metaFor("45", 1920, 1080))
	require.NoError(t, err)
	require.NotNil(t, rect)
	assert.Equal(t, Rectangle{Width: 1920, Height: 800, X: 0, Y: 140}, *rect)

	// One whole-file window, no length limit.
	require.Len(t, runner.windows, 1)
	assert.Equal(t, SampleWindow{Start: 0, Length: 0}, runner.windows[0])
}

func TestDetector_UnknownDurationNoCrop(t *testing.T) {
	runner := &scriptedRunner{outputs: []string{
		"frame=250 fps=25\n",
		"frame=250 fps=25\n",
	}}
	d := NewDetector(nil, WithRunner(runner))

	rect, err := d.Detect(context.Background(), "stream.ts", metaFor("", 1280, 720))
	require.NoError(t, err)
	assert.Nil(t, rect)

	// Two agreeing no-crop samples stop the run after exactly 2 invocations.
	require.Len(t, runner.windows, 2)
	assert.Equal(t, SampleWindow{Start: 0, Length: 10}, runner.windows[0])
	assert.Equal(t, SampleWindow{Start: 30, Length: 10}, runner.windows[1])
}

func TestDetector_LongFileEarlyExit(t *testing.T) {
	runner := &scriptedRunner{outputs: []string{
		"crop=1920:800:0:140\n",
		"crop=1920:800:0:140\n",
		"crop=1920:960:0:60\n",
	}}
	d := NewDetector(nil, WithRunner(runner))

	rect, err := d.Detect(context.Background(), "movie.mkv", metaFor("700", 1920, 1080))
	require.NoError(t, err)
	require.NotNil(t, rect)
	assert.Equal(t, Rectangle{Width: 1920, Height: 800, X: 0, Y: 140}, *rect)

	// Early exit after the second of the 300/410/520/630 windows.
	require.Len(t, runner.windows, 2)
	assert.Equal(t, 300, runner.windows[0].Start)
	assert.Equal(t, 410, runner.windows[1].Start)
}

func TestDetector_FullFrameCropIsNoCrop(t *testing.T) {
	runner := &scriptedRunner{outputs: []string{
		"crop=1920:1080:0:0\n",
	}}
	d := NewDetector(nil, WithRunner(runner))

	rect, err := d.Detect(context.Background(), "clean.mp4", metaFor("30", 1920, 1080))
	require.NoError(t, err)
	assert.Nil(t, rect)
}

func TestDetector_FilterSpec(t *testing.T) {
	r := Rectangle{Width: 1920, Height: 800, X: 0, Y: 140}
	assert.Equal(t, "1920:800:0:140", r.String())
	assert.Equal(t, "crop=1920:800:0:140", r.FilterSpec())
}
