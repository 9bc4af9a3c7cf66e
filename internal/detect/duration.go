package detect

import (
	"strconv"
	"strings"

	"github.com/blackbarhq/blackbar/internal/probe"
)

// ResolveDuration extracts a best-effort duration from probe metadata.
// It tries, in order: the container duration field, the duration of the
// first video stream, and a container DURATION tag in HH:MM:SS[.frac]
// form. Missing or malformed fields are skipped; when everything fails
// the duration is unknown. Resolution never errors.
func ResolveDuration(data *probe.Data) Duration {
	if data == nil {
		return UnknownDuration()
	}

	if secs, ok := parseSeconds(data.Format.Duration); ok {
		return KnownDuration(secs)
	}

	if s, ok := data.VideoStream(); ok {
		if secs, ok := parseSeconds(s.Duration); ok {
			return KnownDuration(secs)
		}
	}

	for key, val := range data.Format.Tags {
		if !strings.HasPrefix(strings.ToUpper(key), "DURATION") {
			continue
		}
		if secs, ok := parseClock(val); ok {
			return KnownDuration(secs)
		}
	}

	return UnknownDuration()
}

// parseSeconds parses a decimal seconds value such as ffprobe's
// format.duration field. Values that are absent, non-numeric or
// negative are rejected.
func parseSeconds(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return secs, true
}

// parseClock parses an HH:MM:SS[.frac] timestamp into total seconds.
func parseClock(s string) (float64, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 3 {
		return 0, false
	}
	h, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, false
	}
	m, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, false
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, false
	}
	total := h*3600 + m*60 + sec
	if total < 0 {
		return 0, false
	}
	return total, true
}
