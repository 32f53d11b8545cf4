// Package config loads pipeline configuration from YAML with sane defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	WorkDir string `yaml:"work_dir"`
	OutDir  string `yaml:"out_dir"`
	Workers int    `yaml:"workers"`

	FFmpeg     FFmpegConfig     `yaml:"ffmpeg"`
	Whisper    WhisperConfig    `yaml:"whisper"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Sweep      SweepConfig      `yaml:"sweep"`
}

// FFmpegConfig points at the ffmpeg and ffprobe binaries.
type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
}

// WhisperConfig points at the whisper.cpp binary and model.
type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
}

// OpenRouterConfig configures the OpenRouter API client. The API key is never
// read from YAML, only from the environment.
type OpenRouterConfig struct {
	BaseURL      string   `yaml:"base_url"`
	VisionModel  string   `yaml:"vision_model"`
	ContentModel string   `yaml:"content_model"`
	AllowedHosts []string `yaml:"allowed_hosts"`
	Referer      string   `yaml:"referer"`
	Title        string   `yaml:"title"`
}

// PipelineConfig holds the clip selection and rendering knobs.
type PipelineConfig struct {
	FramesPerSecond  float64 `yaml:"frames_per_second"`
	ClipMinDuration  float64 `yaml:"clip_min_duration"`
	ClipMaxDuration  float64 `yaml:"clip_max_duration"`
	TopClips         int     `yaml:"top_clips"`
	MinViralityScore float64 `yaml:"min_virality_score"`
	DedupThreshold   int     `yaml:"dedup_threshold"`
	CropFrames       int     `yaml:"crop_frames"`
	CropThreshold    float64 `yaml:"crop_threshold"`
	WordsPerGroup    int     `yaml:"words_per_group"`
	SubtitleDelay    float64 `yaml:"subtitle_delay_seconds"`
}

// SweepConfig controls the stale job sweeper.
type SweepConfig struct {
	StaleAfter time.Duration `yaml:"stale_after"`
}

func defaultConfig() Config {
	return Config{
		WorkDir: ".clipforge",
		OutDir:  "out",
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
		},
		Whisper: WhisperConfig{
			BinaryPath: "whisper-cli",
			ModelPath:  "models/ggml-base.en.bin",
		},
		Pipeline: PipelineConfig{
			FramesPerSecond:  0.1,
			ClipMinDuration:  30,
			ClipMaxDuration:  60,
			TopClips:         3,
			MinViralityScore: 5.0,
			DedupThreshold:   12,
			CropFrames:       5,
			CropThreshold:    0.7,
			WordsPerGroup:    2,
		},
		Sweep: SweepConfig{
			StaleAfter: 30 * time.Minute,
		},
	}
}

// Load reads the config file at path, or searches standard locations when
// path is empty. Missing files are not an error: defaults apply.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func findConfigFile() string {
	for _, candidate := range []string{"clipforge.yaml", "clipforge.yml", ".clipforge.yaml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// applyEnv lets deployment environments override binary locations and model
// choices without editing the config file.
func applyEnv(cfg *Config) {
	overrideString(&cfg.FFmpeg.BinaryPath, "CLIPFORGE_FFMPEG")
	overrideString(&cfg.FFmpeg.ProbePath, "CLIPFORGE_FFPROBE")
	overrideString(&cfg.Whisper.BinaryPath, "CLIPFORGE_WHISPER_BIN")
	overrideString(&cfg.Whisper.ModelPath, "CLIPFORGE_WHISPER_MODEL")
	overrideString(&cfg.OpenRouter.BaseURL, "OPENROUTER_BASE_URL")
	overrideString(&cfg.OpenRouter.VisionModel, "OPENROUTER_VISION_MODEL")
	overrideString(&cfg.OpenRouter.ContentModel, "OPENROUTER_CONTENT_MODEL")
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
