package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("explicit missing path should error")
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.FramesPerSecond != 0.1 {
		t.Fatalf("unexpected default fps: %v", cfg.Pipeline.FramesPerSecond)
	}
	if cfg.Pipeline.ClipMinDuration != 30 || cfg.Pipeline.ClipMaxDuration != 60 {
		t.Fatalf("unexpected default clip bounds: [%v,%v]", cfg.Pipeline.ClipMinDuration, cfg.Pipeline.ClipMaxDuration)
	}
	if cfg.Pipeline.DedupThreshold != 12 {
		t.Fatalf("unexpected default dedup threshold: %d", cfg.Pipeline.DedupThreshold)
	}
	if cfg.Sweep.StaleAfter != 30*time.Minute {
		t.Fatalf("unexpected default stale age: %v", cfg.Sweep.StaleAfter)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipforge.yaml")
	body := `
out_dir: /srv/clips
pipeline:
  top_clips: 5
  min_virality_score: 6.5
whisper:
  language: en
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OutDir != "/srv/clips" {
		t.Fatalf("out_dir not applied: %q", cfg.OutDir)
	}
	if cfg.Pipeline.TopClips != 5 || cfg.Pipeline.MinViralityScore != 6.5 {
		t.Fatalf("pipeline overrides not applied: %+v", cfg.Pipeline)
	}
	// Untouched keys keep their defaults.
	if cfg.Pipeline.CropThreshold != 0.7 {
		t.Fatalf("default lost on partial override: %v", cfg.Pipeline.CropThreshold)
	}
	if cfg.Whisper.Language != "en" {
		t.Fatalf("whisper language not applied: %q", cfg.Whisper.Language)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CLIPFORGE_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("OPENROUTER_CONTENT_MODEL", "google/gemini-2.5-pro")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FFmpeg.BinaryPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("env override not applied: %q", cfg.FFmpeg.BinaryPath)
	}
	if cfg.OpenRouter.ContentModel != "google/gemini-2.5-pro" {
		t.Fatalf("env override not applied: %q", cfg.OpenRouter.ContentModel)
	}
}
