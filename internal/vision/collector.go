// Package vision collects per-frame visual signals. It wraps the raw vision
// model with bounded retries, a deterministic default on exhaustion and
// fingerprint-based duplicate skipping, so downstream scoring always has an
// analysis for every sampled timestamp.
package vision

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clipforge/clipforge/internal/domain/frames"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/retry"
	"github.com/clipforge/clipforge/internal/types"
)

type Collector struct {
	model          ports.VisionModel
	policy         retry.Policy
	dedupThreshold int
	log            zerolog.Logger
}

func New(model ports.VisionModel, dedupThreshold int, log zerolog.Logger) *Collector {
	return &Collector{
		model:          model,
		policy:         retry.Default(),
		dedupThreshold: dedupThreshold,
		log:            log,
	}
}

// WithPolicy overrides the retry policy. Used by tests to skip real waits.
func (c *Collector) WithPolicy(p retry.Policy) *Collector {
	c.policy = p
	return c
}

// DefaultAnalysis is the neutral fallback used when the vision model stays
// unreachable past the retry budget. A mid-scale engagement score keeps a
// blind spot from either burying or inflating a segment.
func DefaultAnalysis() types.FrameAnalysis {
	return types.FrameAnalysis{
		HasFace:         false,
		FaceCount:       0,
		Expression:      "neutral",
		SceneType:       "other",
		TextOnScreen:    false,
		EngagementScore: 5.0,
	}
}

// AnalyzeFrame analyzes one image with retries and never fails: after the
// last attempt it logs and returns DefaultAnalysis.
func (c *Collector) AnalyzeFrame(ctx context.Context, imagePath string) types.FrameAnalysis {
	var analysis types.FrameAnalysis
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var err error
		analysis, err = c.model.AnalyzeFrame(ctx, imagePath)
		return err
	})
	if err != nil {
		c.log.Warn().Err(err).Str("frame", imagePath).
			Msg("frame analysis failed after retries, using default")
		return DefaultAnalysis()
	}
	return analysis
}

// BatchAnalyze fingerprints the sampled frames, skips near-duplicates and
// returns one analysis per timestamp. Duplicates receive a copy of their
// reference frame's analysis instead of a model call. Frames are processed
// strictly in order; only context cancellation aborts the batch.
func (c *Collector) BatchAnalyze(ctx context.Context, framePaths []string, fps float64) (map[float64]types.FrameAnalysis, frames.Stats, error) {
	samples := frames.NewSamples(framePaths, fps)
	decisions, stats := frames.Dedup(samples, c.dedupThreshold)

	analyses := make(map[float64]types.FrameAnalysis, len(decisions))
	for _, d := range decisions {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		if d.Duplicate {
			analyses[d.Sample.Timestamp] = analyses[d.RefTimestamp]
			continue
		}
		analyses[d.Sample.Timestamp] = c.AnalyzeFrame(ctx, d.Sample.Path)
	}

	c.log.Info().
		Int("total", stats.TotalFrames).
		Int("analyzed", stats.AnalyzedFrames).
		Int("skipped", stats.SkippedFrames).
		Float64("skip_ratio", stats.SkipRatio()).
		Msg("frame batch analyzed")
	return analyses, stats, nil
}
