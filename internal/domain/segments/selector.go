// Package segments turns viral moments into duration-constrained,
// sentence-snapped candidate segments and picks the best of them.
package segments

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/clipforge/clipforge/internal/domain/scoring"
	"github.com/clipforge/clipforge/internal/domain/transcript"
	"github.com/clipforge/clipforge/internal/types"
)

type Config struct {
	MinDuration float64
	MaxDuration float64
	TopN        int
	MinScore    float64
}

// SentimentFn scores the audio engagement of a candidate segment's text.
// A nil function (or nil result) falls back to the default audio score.
type SentimentFn func(text string) *types.Sentiment

type Selector struct {
	Config    Config
	Sentiment SentimentFn
	Log       zerolog.Logger
}

// Select derives one candidate per valid moment, keeps the first N in moment
// order, then drops any below the minimum score. The threshold filter runs
// strictly after the top-N cut: a candidate outside the top N is never
// promoted, even if one inside the cut falls below the threshold.
func (s Selector) Select(
	tr types.Transcript,
	words []types.Word,
	analyses map[float64]types.FrameAnalysis,
	moments []types.ViralMoment,
	videoDuration float64,
) []types.CandidateSegment {
	var candidates []types.CandidateSegment
	for _, m := range moments {
		c, ok := s.build(tr, words, analyses, moments, m, videoDuration)
		if !ok {
			continue
		}
		candidates = append(candidates, c)
	}

	if n := s.Config.TopN; n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ViralityScore > candidates[j].ViralityScore
	})

	selected := candidates[:0]
	for _, c := range candidates {
		if c.ViralityScore < s.Config.MinScore {
			s.Log.Warn().
				Float64("score", c.ViralityScore).
				Float64("min_score", s.Config.MinScore).
				Msg("segment below score threshold, dropped")
			continue
		}
		selected = append(selected, c)
	}
	return selected
}

func (s Selector) build(
	tr types.Transcript,
	words []types.Word,
	analyses map[float64]types.FrameAnalysis,
	moments []types.ViralMoment,
	m types.ViralMoment,
	videoDuration float64,
) (types.CandidateSegment, bool) {
	start, end := m.Start, m.End
	if d := end - start; d < s.Config.MinDuration {
		start, end = extend(start, end, s.Config.MinDuration, videoDuration)
	} else if d > s.Config.MaxDuration {
		end = start + s.Config.MaxDuration
	}

	start, end = transcript.FindSentenceBoundaries(tr, start, end)
	if end <= start {
		s.Log.Warn().Float64("start", start).Float64("end", end).
			Msg("degenerate segment after snapping, dropped")
		return types.CandidateSegment{}, false
	}

	// Snapping can shrink the window below the minimum; one more symmetric
	// extension is allowed before giving up.
	if end-start < s.Config.MinDuration {
		start, end = extend(start, end, s.Config.MinDuration, videoDuration)
		if end-start < s.Config.MinDuration {
			s.Log.Warn().Float64("duration", end-start).
				Msg("segment too short after adjustment, dropped")
			return types.CandidateSegment{}, false
		}
	}

	segTranscript := transcript.ExtractSegment(tr, start, end, true)

	var sentiment *types.Sentiment
	if s.Sentiment != nil {
		sentiment = s.Sentiment(joinText(segTranscript))
	}
	mid := (start + end) / 2
	score := scoring.Combined(mid, analyses, moments, sentiment)

	hookType := m.HookType
	if hookType == "" {
		hookType = "insight"
	}

	return types.CandidateSegment{
		Start:          start,
		End:            end,
		Duration:       end - start,
		ViralityScore:  score,
		Transcript:     segTranscript,
		WordTranscript: transcript.WindowWords(words, start, end),
		Keywords:       m.Keywords,
		HookType:       hookType,
		Reason:         m.Reason,
		Moment:         m,
	}, true
}

func extend(start, end, minDuration, videoDuration float64) (float64, float64) {
	pad := (minDuration - (end - start)) / 2
	start -= pad
	if start < 0 {
		start = 0
	}
	end += pad
	if end > videoDuration {
		end = videoDuration
	}
	return start, end
}

func joinText(segs []types.Segment) string {
	out := ""
	for _, seg := range segs {
		if seg.Text == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += seg.Text
	}
	return out
}
