// Package scoring fuses visual, audio and content-moment signals into one
// virality score.
package scoring

import (
	"math"

	"github.com/clipforge/clipforge/internal/types"
)

// Fixed policy weights: the content signal carries the most weight.
const (
	visualWeight = 0.3
	audioWeight  = 0.3
	momentWeight = 0.4

	defaultEngagement = 5.0
)

// Combined computes the virality score at a timestamp, in [0,10] rounded to
// two decimals. Visual comes from the nearest analyzed frame (absolute time
// difference, first-encountered wins ties), moment from the first viral
// moment covering the timestamp, audio from the optional sentiment.
func Combined(timestamp float64, analyses map[float64]types.FrameAnalysis, moments []types.ViralMoment, sentiment *types.Sentiment) float64 {
	visual := defaultEngagement
	if ts, ok := nearest(timestamp, analyses); ok {
		visual = analyses[ts].EngagementScore
	}

	moment := 0.0
	for _, m := range moments {
		if m.Start <= timestamp && timestamp <= m.End {
			moment = m.ViralityScore
			break
		}
	}

	audio := defaultEngagement
	if sentiment != nil {
		audio = sentiment.EngagementScore
	}

	combined := visual*visualWeight + audio*audioWeight + moment*momentWeight
	return math.Round(combined*100) / 100
}

// nearest returns the analyzed timestamp closest to t. Map iteration order is
// random, so ties are resolved toward the smaller timestamp to stay
// deterministic.
func nearest(t float64, analyses map[float64]types.FrameAnalysis) (float64, bool) {
	best := 0.0
	bestDiff := math.Inf(1)
	found := false
	for ts := range analyses {
		diff := math.Abs(ts - t)
		if diff < bestDiff || (diff == bestDiff && ts < best) {
			best = ts
			bestDiff = diff
			found = true
		}
	}
	return best, found
}
