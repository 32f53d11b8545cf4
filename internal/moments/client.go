// Package moments asks the content model for candidate viral time ranges and
// validates them against the video bounds. Content failures degrade to an
// empty candidate list so a video without usable moments still completes.
package moments

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/retry"
	"github.com/clipforge/clipforge/internal/types"
)

// maxMoments caps the candidate list regardless of how many the model emits.
const maxMoments = 5

type Client struct {
	model  ports.ContentModel
	policy retry.Policy
	log    zerolog.Logger
}

func New(model ports.ContentModel, log zerolog.Logger) *Client {
	return &Client{model: model, policy: retry.Default(), log: log}
}

// WithPolicy overrides the retry policy. Used by tests to skip real waits.
func (c *Client) WithPolicy(p retry.Policy) *Client {
	c.policy = p
	return c
}

// Identify returns the validated viral moments for a transcript. After the
// retry budget is exhausted it returns an empty list, never an error: the
// pipeline treats "no moments" as a completed run with zero clips.
func (c *Client) Identify(ctx context.Context, transcript string, duration float64) []types.ViralMoment {
	var raw []types.ViralMoment
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var err error
		raw, err = c.model.IdentifyMoments(ctx, transcript, duration)
		return err
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("moment identification failed after retries, continuing with none")
		return nil
	}

	valid := raw[:0]
	for _, m := range raw {
		if m.Start < 0 || m.End > duration || m.Start >= m.End {
			c.log.Warn().
				Float64("start", m.Start).
				Float64("end", m.End).
				Float64("video_duration", duration).
				Msg("moment with out-of-range timestamps dropped")
			continue
		}
		valid = append(valid, m)
	}
	if len(valid) > maxMoments {
		valid = valid[:maxMoments]
	}
	return valid
}

// Sentiment analyzes the emotional tone of a segment's text. It returns nil
// when the model stays unreachable; scoring falls back to its neutral audio
// default.
func (c *Client) Sentiment(ctx context.Context, text string) *types.Sentiment {
	var s types.Sentiment
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var err error
		s, err = c.model.AnalyzeSentiment(ctx, text)
		return err
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("sentiment analysis failed after retries, using default")
		return nil
	}
	return &s
}
