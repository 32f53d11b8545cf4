// Package openrouter talks to OpenRouter's OpenAI-compatible API for both
// the vision and the content-reasoning capabilities. Every method is a single
// attempt; bounded retries and fallbacks belong to the callers.
package openrouter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/clipforge/clipforge/internal/types"
)

const (
	defaultVisionModel  = "google/gemini-2.5-flash-lite"
	defaultContentModel = "google/gemini-2.5-flash"

	requestTimeout = 90 * time.Second
)

type Config struct {
	APIKey       string
	BaseURL      string
	VisionModel  string
	ContentModel string
	// Referer and Title fill OpenRouter's attribution headers.
	Referer string
	Title   string
}

type Adapter struct {
	client       openai.Client
	key          string
	visionModel  string
	contentModel string
}

func New(cfg Config) *Adapter {
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = defaultVisionModel
	}
	contentModel := cfg.ContentModel
	if contentModel == "" {
		contentModel = defaultContentModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(normalizeBaseURL(cfg.BaseURL)),
		option.WithRequestTimeout(requestTimeout),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}

	return &Adapter{
		client:       openai.NewClient(opts...),
		key:          cfg.APIKey,
		visionModel:  visionModel,
		contentModel: contentModel,
	}
}

const framePrompt = `Analyze this video frame and respond ONLY with valid JSON (no markdown, no extra text):
{
  "has_face": true/false,
  "face_count": 0-10 (number of faces detected),
  "face_position_x": 0-100 (horizontal position percentage from left, or null),
  "expression": "neutral" or "excited" or "serious" or "laughing",
  "scene_type": "talking_head" or "presentation" or "action" or "other",
  "text_on_screen": true/false,
  "engagement_score": 0-10 (number)
}

Rate engagement based on:
- Face presence and expression (higher for excited/laughing)
- Dynamic content (higher for action)
- Text overlays (slightly higher)
- Composition quality

Important instructions:
- Count the number of faces visible in the frame and set face_count accordingly
- If face_count is exactly 1, estimate the horizontal position of the face center as a percentage:
  * 0-20% = face is on far left edge
  * 20-40% = face is on left side
  * 40-60% = face is centered
  * 60-80% = face is on right side
  * 80-100% = face is on far right edge
- If face_count is 0 or more than 1, set face_position_x to null
- Be precise with the percentage estimate

Respond with ONLY the JSON object, nothing else.`

func (a *Adapter) AnalyzeFrame(ctx context.Context, imagePath string) (types.FrameAnalysis, error) {
	b, err := os.ReadFile(imagePath)
	if err != nil {
		return types.FrameAnalysis{}, fmt.Errorf("read frame: %w", err)
	}
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(b)

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.visionModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(framePrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
		Temperature: openai.Float(0.3),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	})
	if err != nil {
		return types.FrameAnalysis{}, a.wrap("analyze frame", err)
	}

	var analysis types.FrameAnalysis
	if err := a.decodeContent(resp, &analysis); err != nil {
		return types.FrameAnalysis{}, err
	}
	analysis.EngagementScore = clampScore(analysis.EngagementScore)
	if analysis.FaceCount != 1 {
		analysis.FacePositionX = nil
	}
	return analysis, nil
}

const momentsPromptFormat = `Analyze this video transcript and identify the TOP 5 most viral/engaging moments.

Video duration: %g seconds

Transcript:
%s

Respond ONLY with valid JSON (no markdown, no extra text):
{
  "moments": [
    {
      "start_time": <float seconds>,
      "end_time": <float seconds>,
      "reason": "<why this is viral>",
      "keywords": ["<key>", "<words>"],
      "virality_score": <0-10 number>,
      "hook_type": "question" or "revelation" or "humor" or "insight" or "story"
    }
  ]
}

Look for:
- Questions that create curiosity
- Surprising revelations or facts
- Humorous moments
- Valuable insights/tips
- Compelling stories
- Emotional peaks
- Controversial statements

Each moment should be 30-60 seconds. Ensure start_time and end_time are within 0-%g seconds.
Respond with ONLY the JSON object, nothing else.`

func (a *Adapter) IdentifyMoments(ctx context.Context, transcript string, duration float64) ([]types.ViralMoment, error) {
	prompt := fmt.Sprintf(momentsPromptFormat, duration, transcript, duration)

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.contentModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.4),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	})
	if err != nil {
		return nil, a.wrap("identify moments", err)
	}

	var out struct {
		Moments []types.ViralMoment `json:"moments"`
	}
	if err := a.decodeContent(resp, &out); err != nil {
		return nil, err
	}
	for i := range out.Moments {
		out.Moments[i].ViralityScore = clampScore(out.Moments[i].ViralityScore)
	}
	return out.Moments, nil
}

const sentimentPromptFormat = `Analyze the sentiment and engagement level of this text.

Text:
%s

Respond ONLY with valid JSON (no markdown, no extra text):
{
  "sentiment": "positive" or "negative" or "neutral",
  "emotion": "excited" or "calm" or "serious" or "humorous",
  "engagement_score": <0-10 number>
}

Respond with ONLY the JSON object, nothing else.`

func (a *Adapter) AnalyzeSentiment(ctx context.Context, text string) (types.Sentiment, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.contentModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(fmt.Sprintf(sentimentPromptFormat, text)),
		},
		Temperature: openai.Float(0.3),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	})
	if err != nil {
		return types.Sentiment{}, a.wrap("analyze sentiment", err)
	}

	var s types.Sentiment
	if err := a.decodeContent(resp, &s); err != nil {
		return types.Sentiment{}, err
	}
	s.EngagementScore = clampScore(s.EngagementScore)
	return s, nil
}

// decodeContent unmarshals the first choice's content into v, repairing
// fenced or chatty responses by extracting the first JSON object.
func (a *Adapter) decodeContent(resp *openai.ChatCompletion, v any) error {
	if resp == nil || len(resp.Choices) == 0 {
		return errors.New("openrouter: empty response")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	clean, err := extractJSONObject(content)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(clean), v); err != nil {
		return fmt.Errorf("openrouter: decode response: %w (content: %s)",
			err, truncate(redactSecrets(content, a.key), 200))
	}
	return nil
}

func (a *Adapter) wrap(op string, err error) error {
	return fmt.Errorf("openrouter %s: %s", op, redactSecrets(err.Error(), a.key))
}

func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("openrouter: empty content")
	}

	// Strip markdown code fences.
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	// Best-effort: take the first JSON object found.
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", fmt.Errorf("openrouter: could not locate JSON object in: %q", truncate(t, 200))
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
