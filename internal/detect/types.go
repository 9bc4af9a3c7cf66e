// Package detect implements adaptive black-bar (letterbox/pillarbox)
// detection for video files. It samples a bounded number of windows of
// the input with an external crop-analysis tool and reduces the noisy
// per-window measurements to a single crop decision through a rolling
// quorum vote.
package detect

import "fmt"

// Rectangle is a candidate crop region in source pixel coordinates.
type Rectangle struct {
	// Width is the width of the region to retain.
	Width int `json:"width"`
	// Height is the height of the region to retain.
	Height int `json:"height"`
	// X is the horizontal offset of the region.
	X int `json:"x"`
	// Y is the vertical offset of the region.
	Y int `json:"y"`
}

// String returns the rectangle in ffmpeg's W:H:X:Y notation.
func (r Rectangle) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", r.Width, r.Height, r.X, r.Y)
}

// FilterSpec returns the crop filter expression for this rectangle,
// ready to be placed in an encoder's -vf argument.
func (r Rectangle) FilterSpec() string {
	return "crop=" + r.String()
}

// Observation is one normalized measurement: either a crop rectangle or
// the no-crop sentinel (the zero value). Observations are comparable so
// the quorum engine can count agreement with ==.
type Observation struct {
	// Rect is the observed crop region. Only meaningful when HasCrop is true.
	Rect Rectangle
	// HasCrop reports whether the sample produced a usable crop rectangle.
	HasCrop bool
}

// Crop returns an observation carrying a crop rectangle.
func Crop(r Rectangle) Observation {
	return Observation{Rect: r, HasCrop: true}
}

// NoCrop returns the no-crop observation.
func NoCrop() Observation {
	return Observation{}
}

// String returns a log-friendly representation of the observation.
func (o Observation) String() string {
	if !o.HasCrop {
		return "NO_CROP"
	}
	return o.Rect.String()
}

// Duration is a best-effort media duration in seconds. Known is false
// when no duration could be resolved from probe metadata; the scheduler
// treats that as its own bracket rather than an error.
type Duration struct {
	Seconds float64
	Known   bool
}

// KnownDuration returns a resolved duration of secs seconds.
func KnownDuration(secs float64) Duration {
	return Duration{Seconds: secs, Known: true}
}

// UnknownDuration returns the unresolved duration sentinel.
func UnknownDuration() Duration {
	return Duration{}
}

// SampleWindow is a span of the source video over which one analyzer
// invocation runs. A Length of zero means "from Start to end of file".
type SampleWindow struct {
	// Start is the offset in seconds from the beginning of the stream.
	Start int
	// Length is the window length in seconds; 0 analyzes to end of file.
	Length int
}
