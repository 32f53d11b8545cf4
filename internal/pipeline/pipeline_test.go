package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clipforge/clipforge/internal/usecase"
)

func validConfig(t *testing.T) Config {
	t.Helper()
	input := filepath.Join(t.TempDir(), "talk.mp4")
	if err := os.WriteFile(input, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return Config{
		Inputs:       []string{input},
		WhisperModel: "models/ggml-base.en.bin",
		Processing: usecase.Config{
			FPS:             0.1,
			ClipMinDuration: 30,
			ClipMaxDuration: 60,
			TopN:            3,
		},
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no inputs", func(c *Config) { c.Inputs = nil }},
		{"missing input file", func(c *Config) { c.Inputs = []string{"/nope/missing.mp4"} }},
		{"zero fps", func(c *Config) { c.Processing.FPS = 0 }},
		{"min above max", func(c *Config) { c.Processing.ClipMinDuration = 90 }},
		{"zero top clips", func(c *Config) { c.Processing.TopN = 0 }},
		{"no whisper model", func(c *Config) { c.WhisperModel = "" }},
		{"plain http base url", func(c *Config) { c.OpenRouterBaseURL = "http://openrouter.ai/api/v1" }},
		{"unlisted base url host", func(c *Config) { c.OpenRouterBaseURL = "https://evil.example.com/v1" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBuildVideoID(t *testing.T) {
	id := buildVideoID("/videos/My Great Talk!.mp4")
	if !strings.HasPrefix(id, "my-great-talk-") {
		t.Fatalf("unexpected id prefix: %q", id)
	}
	if len(id) != len("my-great-talk-")+8 {
		t.Fatalf("unexpected id length: %q", id)
	}

	// IDs stay unique across repeated runs of the same file.
	if buildVideoID("/videos/a.mp4") == buildVideoID("/videos/a.mp4") {
		t.Fatal("expected unique IDs per run")
	}
}

func TestNormalizePathSegment(t *testing.T) {
	cases := map[string]string{
		"My Great Talk!":   "my-great-talk",
		"  spaced  out  ":  "spaced-out",
		"---":              "",
		"already-fine-123": "already-fine-123",
	}
	for in, want := range cases {
		if got := normalizePathSegment(in); got != want {
			t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
		}
	}
}
