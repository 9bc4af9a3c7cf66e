package detect

import (
	"context"
	"log/slog"
)

// quorumSize is the capacity of the rolling observation window used for
// the consensus check.
const quorumSize = 3

// Decide pulls observations for the scheduled windows one at a time and
// stops at the first decision. It returns the consensus crop rectangle,
// or nil when the consensus is "no crop".
//
// Rules, applied after each sample:
//   - after exactly 2 samples: if both agree, decide immediately
//   - from 3 samples on: if any crop value occurs at least twice within
//     the rolling window of the last 3, decide that crop; if no-crop
//     occurs at least twice, decide no crop; otherwise keep sampling
//
// If the window sequence is exhausted without consensus, the 3rd sample
// is the designated tie-breaker; with fewer than 3 samples ever taken,
// the most recent crop observation wins, else no crop. Windows after a
// decision are never executed.
func Decide(ctx context.Context, windows []SampleWindow, sampler Sampler, logger *slog.Logger) (*Rectangle, error) {
	if logger == nil {
		logger = slog.Default()
	}

	rolling := make([]Observation, 0, quorumSize)
	var thirdSample Observation
	haveThird := false
	taken := 0

	for _, w := range windows {
		obs, err := sampler.Sample(ctx, w)
		if err != nil {
			return nil, err
		}

		taken++
		if taken == 3 {
			thirdSample, haveThird = obs, true
		}

		rolling = append(rolling, obs)
		if len(rolling) > quorumSize {
			rolling = rolling[1:]
		}

		logger.Debug("crop sample taken",
			slog.Int("sample", taken),
			slog.Int("start", w.Start),
			slog.String("observed", obs.String()),
		)

		if taken == 2 && rolling[0] == rolling[1] {
			logger.Debug("crop decision by 2/2 agreement",
				slog.String("observed", rolling[0].String()),
			)
			return outcome(rolling[0]), nil
		}

		if taken >= 3 {
			if obs, ok := evalQuorum(rolling); ok {
				logger.Debug("crop decision by rolling quorum",
					slog.String("observed", obs.String()),
					slog.Int("samples", taken),
				)
				return outcome(obs), nil
			}
		}
	}

	// Exhausted without consensus.
	if haveThird {
		logger.Debug("no quorum, falling back to third sample",
			slog.Int("samples", taken),
			slog.String("observed", thirdSample.String()),
		)
		return outcome(thirdSample), nil
	}

	for i := len(rolling) - 1; i >= 0; i-- {
		if rolling[i].HasCrop {
			logger.Debug("no quorum, falling back to most recent crop",
				slog.Int("samples", taken),
				slog.String("observed", rolling[i].String()),
			)
			return outcome(rolling[i]), nil
		}
	}

	logger.Debug("no quorum and no usable fallback",
		slog.Int("samples", taken),
	)
	return nil, nil
}

// evalQuorum checks a rolling window of 3 observations for a 2-of-3
// majority. The no-crop sentinel only wins when no crop value repeats.
// Scanning from the most recent observation backwards breaks ties in
// favour of recency, though with a window of 3 at most one value can
// reach the threshold.
func evalQuorum(window []Observation) (Observation, bool) {
	if len(window) < quorumSize {
		return Observation{}, false
	}

	for i := len(window) - 1; i >= 0; i-- {
		if !window[i].HasCrop {
			continue
		}
		if countOf(window, window[i]) >= 2 {
			return window[i], true
		}
	}

	if countOf(window, NoCrop()) >= 2 {
		return NoCrop(), true
	}

	return Observation{}, false
}

// countOf counts occurrences of an observation value within the window.
func countOf(window []Observation, obs Observation) int {
	n := 0
	for _, o := range window {
		if o == obs {
			n++
		}
	}
	return n
}

// outcome converts a winning observation into the engine's result: nil
// for no crop, else the rectangle.
func outcome(obs Observation) *Rectangle {
	if !obs.HasCrop {
		return nil
	}
	rect := obs.Rect
	return &rect
}
