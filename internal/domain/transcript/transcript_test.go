package transcript

import (
	"math"
	"testing"

	"github.com/clipforge/clipforge/internal/types"
)

func testTranscript() types.Transcript {
	return types.Transcript{Segments: []types.Segment{
		{Start: 0, End: 5, Text: "First sentence.", Confidence: -0.2},
		{Start: 5, End: 12, Text: "Second one here.", Confidence: -0.3},
		{Start: 14, End: 20, Text: "Third after a pause.", Confidence: -0.1},
		{Start: 20, End: 28, Text: "Fourth and last.", Confidence: -0.4},
	}}
}

func TestFindSentenceBoundaries(t *testing.T) {
	tr := testTranscript()

	tests := []struct {
		name               string
		start, end         float64
		wantStart, wantEnd float64
	}{
		{"inside segments", 6, 18, 5, 20},
		{"start in gap snaps forward", 12.5, 25, 14, 28},
		{"end in gap snaps back", 2, 13, 0, 12},
		{"already snapped", 5, 20, 5, 20},
		{"before first segment", -1, 3, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e := FindSentenceBoundaries(tr, tt.start, tt.end)
			if s != tt.wantStart || e != tt.wantEnd {
				t.Fatalf("got (%v,%v), want (%v,%v)", s, e, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestFindSentenceBoundaries_Idempotent(t *testing.T) {
	tr := testTranscript()
	for _, in := range [][2]float64{{6, 18}, {0, 28}, {12.5, 13}, {3, 22}} {
		s1, e1 := FindSentenceBoundaries(tr, in[0], in[1])
		s2, e2 := FindSentenceBoundaries(tr, s1, e1)
		if s1 != s2 || e1 != e2 {
			t.Fatalf("not idempotent for %v: first (%v,%v), second (%v,%v)", in, s1, e1, s2, e2)
		}
	}
}

func TestExtractSegment_RelativeRoundTrip(t *testing.T) {
	tr := testTranscript()
	start, end := 5.0, 20.0

	rel := ExtractSegment(tr, start, end, true)
	abs := ExtractSegment(tr, start, end, false)
	if len(rel) != 2 || len(abs) != 2 {
		t.Fatalf("expected 2 overlapping segments, got %d/%d", len(rel), len(abs))
	}
	for i := range rel {
		if got := rel[i].Start + start; math.Abs(got-abs[i].Start) > 1e-9 {
			t.Fatalf("segment %d: relative start %v + window start != absolute %v", i, rel[i].Start, abs[i].Start)
		}
	}
}

func TestExtractSegment_ClipsPartialOverlap(t *testing.T) {
	tr := testTranscript()
	// Window cuts into the second and fourth segment.
	got := ExtractSegment(tr, 8, 22, true)
	if len(got) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(got))
	}
	if got[0].Start != 0 {
		t.Fatalf("partial head overlap should clamp to 0, got %v", got[0].Start)
	}
	if got[2].End != 14 {
		t.Fatalf("partial tail overlap should clamp to window, got %v", got[2].End)
	}
	if got[1].Start != 6 || got[1].End != 12 {
		t.Fatalf("contained segment rebased wrong: %v-%v", got[1].Start, got[1].End)
	}
}

func TestWordsAndFullText(t *testing.T) {
	tr := types.Transcript{Segments: []types.Segment{
		{Start: 0, End: 2, Text: " hello world ", Words: []types.Word{
			{Start: 0, End: 0.5, Word: " hello "},
			{Start: 0.6, End: 1.0, Word: ""},
			{Start: 1.1, End: 1.8, Word: "world"},
		}},
		{Start: 2, End: 3, Text: ""},
		{Start: 3, End: 4, Text: "again"},
	}}
	words := Words(tr)
	if len(words) != 2 || words[0].Word != "hello" || words[1].Word != "world" {
		t.Fatalf("unexpected words: %+v", words)
	}
	if got := FullText(tr); got != "hello world again" {
		t.Fatalf("unexpected full text: %q", got)
	}
}

func TestWindowWords(t *testing.T) {
	words := []types.Word{
		{Start: 4, End: 6, Word: "edge"},
		{Start: 7, End: 8, Word: "inside"},
		{Start: 11, End: 13, Word: "tail"},
		{Start: 15, End: 16, Word: "outside"},
	}
	got := WindowWords(words, 5, 12)
	if len(got) != 3 {
		t.Fatalf("expected 3 words, got %d", len(got))
	}
	if got[0].Start != 0 || got[0].AbsoluteStart != 4 {
		t.Fatalf("head word should clamp relative start to 0 and keep absolute: %+v", got[0])
	}
	if got[2].End != 7 || got[2].AbsoluteEnd != 13 {
		t.Fatalf("tail word should clamp relative end to window: %+v", got[2])
	}
	for _, w := range got {
		if math.Abs(w.AbsoluteStart-(w.Start+5)) > 1e-9 && w.Start != 0 {
			t.Fatalf("relative/absolute mismatch: %+v", w)
		}
	}
}
