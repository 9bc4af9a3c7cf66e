package detect

// MaxSamples caps the number of analyzer invocations per detection run
// regardless of file length.
const MaxSamples = 7

// Schedule produces the ordered sample windows for a media duration.
// It is a pure function: the same duration always yields the same
// sequence, so a run can be replayed or inspected up front.
//
// Bracket rules:
//   - known and under 60s: one window over the whole file
//   - unknown: 10s windows starting at 0s, every 30s
//   - 60s to 5min: 10s windows starting at 30s, every 15s
//   - 5min to 10min: 20s windows starting at 90s, every 50s
//   - over 10min: 20s windows starting at 300s, every 110s
//
// Short files are cheap enough for one exhaustive pass; longer files
// skip a fixed lead-in (intros, logos) and widen the stride as the
// duration grows. For known durations each window keeps a 1s trailing
// buffer so no invocation reads past end-of-stream.
func Schedule(d Duration) []SampleWindow {
	if d.Known && d.Seconds < 60 {
		return []SampleWindow{{Start: 0, Length: 0}}
	}

	if !d.Known {
		windows := make([]SampleWindow, 0, MaxSamples)
		for i := 0; i < MaxSamples; i++ {
			windows = append(windows, SampleWindow{Start: i * 30, Length: 10})
		}
		return windows
	}

	var length, first, step int
	switch {
	case d.Seconds <= 5*60:
		length, first, step = 10, 30, 15
	case d.Seconds <= 10*60:
		length, first, step = 20, 90, 50
	default:
		length, first, step = 20, 300, 110
	}

	maxStart := int(d.Seconds) - length - 1
	windows := make([]SampleWindow, 0, MaxSamples)
	for start := first; start <= maxStart && len(windows) < MaxSamples; start += step {
		windows = append(windows, SampleWindow{Start: start, Length: length})
	}
	return windows
}
