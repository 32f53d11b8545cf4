// Package transcript provides boundary-snapping and sub-range extraction
// over a time-coded transcript. All inputs are absolute-time and segments are
// expected in non-decreasing time order.
package transcript

import (
	"strings"

	"github.com/clipforge/clipforge/internal/types"
)

// FindSentenceBoundaries snaps [start,end] to segment edges so clips never
// begin or end mid-sentence. Start snaps to the start of the segment
// containing it, or forward to the next segment's start; end snaps to the end
// of the segment containing it, or back to the last segment ending before it.
// Idempotent: applying it to its own output returns the same bounds.
func FindSentenceBoundaries(tr types.Transcript, start, end float64) (float64, float64) {
	snappedStart := start
	snappedEnd := end

	// Containment is half-open on both sides so a bound sitting exactly on a
	// shared segment edge resolves to one segment and re-snapping is a no-op.
	for _, seg := range tr.Segments {
		if seg.Start <= start && start < seg.End {
			snappedStart = seg.Start
			break
		}
		if seg.Start > start {
			snappedStart = seg.Start
			break
		}
	}

	for i := len(tr.Segments) - 1; i >= 0; i-- {
		seg := tr.Segments[i]
		if seg.Start < end && end <= seg.End {
			snappedEnd = seg.End
			break
		}
		if seg.End < end {
			snappedEnd = seg.End
			break
		}
	}

	return snappedStart, snappedEnd
}

// ExtractSegment returns the transcript segments overlapping [start,end],
// clipping partial overlaps to the window. When relative is true, timestamps
// are rebased so the window start is zero.
func ExtractSegment(tr types.Transcript, start, end float64, relative bool) []types.Segment {
	window := end - start
	var out []types.Segment
	for _, seg := range tr.Segments {
		if seg.End <= start || seg.Start >= end {
			continue
		}
		if !relative {
			out = append(out, seg)
			continue
		}
		relStart := seg.Start - start
		if relStart < 0 {
			relStart = 0
		}
		relEnd := seg.End - start
		if relEnd > window {
			relEnd = window
		}
		out = append(out, types.Segment{
			Start:      relStart,
			End:        relEnd,
			Text:       seg.Text,
			Confidence: seg.Confidence,
		})
	}
	return out
}

// Words flattens all word timestamps across segments into one absolute-time
// ordered sequence. Empty words are dropped.
func Words(tr types.Transcript) []types.Word {
	var out []types.Word
	for _, seg := range tr.Segments {
		for _, w := range seg.Words {
			word := strings.TrimSpace(w.Word)
			if word == "" {
				continue
			}
			out = append(out, types.Word{Start: w.Start, End: w.End, Word: word})
		}
	}
	return out
}

// FullText joins all segment texts into one string for content reasoning.
func FullText(tr types.Transcript) string {
	parts := make([]string, 0, len(tr.Segments))
	for _, seg := range tr.Segments {
		if t := strings.TrimSpace(seg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// WindowWords returns the words overlapping [start,end] rebased to be
// relative to start, retaining the absolute source times. Relative times are
// clamped to the window.
func WindowWords(words []types.Word, start, end float64) []types.SegmentWord {
	window := end - start
	var out []types.SegmentWord
	for _, w := range words {
		if w.End < start || w.Start > end {
			continue
		}
		relStart := w.Start - start
		if relStart < 0 {
			relStart = 0
		}
		relEnd := w.End - start
		if relEnd > window {
			relEnd = window
		}
		if relEnd < relStart {
			relEnd = relStart
		}
		out = append(out, types.SegmentWord{
			Start:         relStart,
			End:           relEnd,
			AbsoluteStart: w.Start,
			AbsoluteEnd:   w.End,
			Word:          w.Word,
		})
	}
	return out
}
