// Package subtitles builds word-grouped, keyword-highlighted ASS caption
// files. The header layout, style lines and per-cue field order are consumed
// by the transcoding layer's burn-in filter and must not change shape.
package subtitles

import (
	"fmt"
	"math"
	"strings"

	"github.com/clipforge/clipforge/internal/types"
)

const (
	wordLevelFontSize    = 60
	segmentLevelFontSize = 48

	highlightOpen  = "{\\c&H00FFFF&}"
	highlightClose = "{\\c&HFFFFFF&}"
)

const headerTemplate = `[Script Info]
Title: ClipForge Subtitles
ScriptType: v4.00+
WrapStyle: 0
PlayResX: 1080
PlayResY: 1920
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,%d,&H00FFFFFF,&H000000FF,&H00000000,&H80000000,-1,0,0,0,100,100,0,0,1,3,0,2,10,10,300,1
Style: Highlight,Arial,%d,&H0000FFFF,&H000000FF,&H00000000,&H80000000,-1,0,0,0,100,100,0,0,1,3,0,2,10,10,300,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// Cue is one subtitle event. Text already carries inline color overrides for
// highlighted words.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

type Options struct {
	Keywords      []string
	WordsPerGroup int
	Delay         float64
}

// WordCues groups consecutive words into cues of WordsPerGroup. Each cue
// spans its first word's start to its last word's end, shifted by Delay and
// clamped so no cue starts before zero. Empty words are skipped but still
// consume their slot in the grouping.
func WordCues(words []types.SegmentWord, opts Options) []Cue {
	group := opts.WordsPerGroup
	if group < 1 {
		group = 1
	}
	keywords := keywordSet(opts.Keywords)

	var cues []Cue
	for i := 0; i < len(words); {
		end := i + group
		if end > len(words) {
			end = len(words)
		}

		var parts []string
		for _, w := range words[i:end] {
			word := strings.TrimSpace(w.Word)
			if word == "" {
				continue
			}
			parts = append(parts, highlight(word, keywords))
		}
		if len(parts) > 0 {
			start := math.Max(0, words[i].Start+opts.Delay)
			cues = append(cues, Cue{
				Start: start,
				End:   math.Max(start, words[end-1].End+opts.Delay),
				Text:  strings.Join(parts, " "),
			})
		}
		i = end
	}
	return cues
}

// SegmentCues emits one cue per transcript segment with the same keyword
// highlighting rule.
func SegmentCues(segments []types.Segment, opts Options) []Cue {
	keywords := keywordSet(opts.Keywords)

	var cues []Cue
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if len(keywords) > 0 {
			words := strings.Fields(text)
			for i, w := range words {
				words[i] = highlight(w, keywords)
			}
			text = strings.Join(words, " ")
		}
		cues = append(cues, Cue{
			Start: math.Max(0, seg.Start+opts.Delay),
			End:   math.Max(0, seg.End+opts.Delay),
			Text:  text,
		})
	}
	return cues
}

// RenderWordLevel renders word-grouped cues with the larger font.
func RenderWordLevel(cues []Cue) string {
	return render(cues, wordLevelFontSize)
}

// RenderSegmentLevel renders per-segment cues with the smaller font.
func RenderSegmentLevel(cues []Cue) string {
	return render(cues, segmentLevelFontSize)
}

func render(cues []Cue, fontSize int) string {
	var b strings.Builder
	fmt.Fprintf(&b, headerTemplate, fontSize, fontSize)
	for _, c := range cues {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			Timestamp(c.Start), Timestamp(c.End), c.Text)
	}
	return b.String()
}

// Timestamp formats seconds as the ASS H:MM:SS.CC time field. Components are
// truncated, not rounded.
func Timestamp(seconds float64) string {
	h := int(seconds / 3600)
	m := int(math.Mod(seconds, 3600) / 60)
	s := int(math.Mod(seconds, 60))
	cs := int(math.Mod(seconds, 1) * 100)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

func keywordSet(keywords []string) map[string]struct{} {
	if len(keywords) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		set[strings.ToLower(k)] = struct{}{}
	}
	return set
}

// highlight wraps a word in yellow/white color overrides when it matches a
// keyword, compared case-insensitively with edge punctuation stripped.
func highlight(word string, keywords map[string]struct{}) string {
	if len(keywords) == 0 {
		return word
	}
	key := strings.Trim(strings.ToLower(word), ",.!?")
	if _, ok := keywords[key]; !ok {
		return word
	}
	return highlightOpen + word + highlightClose
}
