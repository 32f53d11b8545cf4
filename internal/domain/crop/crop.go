// Package crop decides the horizontal crop center for the 9:16 reframe from
// per-frame face analyses.
package crop

import "github.com/clipforge/clipforge/internal/types"

// DefaultThreshold is the minimum fraction of single-face frames required to
// follow the speaker instead of center-cropping.
const DefaultThreshold = 0.7

// Decide is a majority-vote heuristic: if strictly more than threshold of the
// analyzed frames show exactly one face with a known position, the crop
// centers on the mean face position; otherwise it stays centered. Favoring
// the centered crop keeps transient multi-face frames from yanking the crop
// around.
func Decide(analyses []types.FrameAnalysis, threshold float64) types.CropDecision {
	if len(analyses) == 0 {
		return types.CropDecision{FacePositionRatio: 0.5}
	}

	var sum float64
	var qualifying int
	for _, a := range analyses {
		if a.FaceCount == 1 && a.FacePositionX != nil {
			sum += *a.FacePositionX
			qualifying++
		}
	}

	fraction := float64(qualifying) / float64(len(analyses))
	if fraction <= threshold {
		return types.CropDecision{FacePositionRatio: 0.5}
	}

	mean := sum / float64(qualifying)
	ratio := mean / 100
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	return types.CropDecision{FacePositionRatio: ratio}
}
