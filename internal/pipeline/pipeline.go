// Package pipeline wires the adapters together and fans out over input
// videos. Videos run in parallel up to the worker limit; the stages inside a
// single video stay strictly sequential.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/clipforge/clipforge/internal/moments"
	"github.com/clipforge/clipforge/internal/ports"
	"github.com/clipforge/clipforge/internal/ports/adapters/ffmpeg"
	"github.com/clipforge/clipforge/internal/ports/adapters/localstore"
	"github.com/clipforge/clipforge/internal/ports/adapters/openrouter"
	"github.com/clipforge/clipforge/internal/ports/adapters/whispercpp"
	"github.com/clipforge/clipforge/internal/system"
	"github.com/clipforge/clipforge/internal/types"
	"github.com/clipforge/clipforge/internal/usecase"
	"github.com/clipforge/clipforge/internal/vision"
)

type Config struct {
	Inputs  []string
	OutDir  string
	WorkDir string
	Workers int

	FFmpegPath  string
	FFprobePath string

	WhisperBin      string
	WhisperModel    string
	WhisperLanguage string

	OpenRouterAPIKey       string
	OpenRouterBaseURL      string
	OpenRouterVisionModel  string
	OpenRouterContentModel string
	OpenRouterAllowedHosts []string
	OpenRouterReferer      string
	OpenRouterTitle        string

	Processing     usecase.Config
	DedupThreshold int

	Log zerolog.Logger
}

func (c Config) Validate() error {
	if len(c.Inputs) == 0 {
		return errors.New("no input videos")
	}
	for _, in := range c.Inputs {
		if _, err := os.Stat(in); err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
	}
	if c.Processing.FPS <= 0 {
		return fmt.Errorf("frame sample rate must be > 0")
	}
	if c.Processing.ClipMinDuration <= 0 {
		return fmt.Errorf("min clip duration must be > 0")
	}
	if c.Processing.ClipMaxDuration <= 0 {
		return fmt.Errorf("max clip duration must be > 0")
	}
	if c.Processing.ClipMinDuration > c.Processing.ClipMaxDuration {
		return fmt.Errorf("min clip duration must be <= max clip duration")
	}
	if c.Processing.TopN <= 0 {
		return fmt.Errorf("top clips must be > 0")
	}
	if c.WhisperModel == "" {
		return fmt.Errorf("whisper model path is required")
	}
	return openrouter.ValidateBaseURL(
		c.OpenRouterBaseURL,
		c.OpenRouterAllowedHosts,
	)
}

func Run(ctx context.Context, cfg Config) error {
	log := cfg.Log

	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = ".clipforge"
	}
	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}

	store, err := localstore.New(filepath.Join(workDir, "jobs"))
	if err != nil {
		return err
	}

	video := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	asr := whispercpp.New(cfg.WhisperBin, cfg.WhisperModel, cfg.WhisperLanguage)
	llm := openrouter.New(openrouter.Config{
		APIKey:       cfg.OpenRouterAPIKey,
		BaseURL:      cfg.OpenRouterBaseURL,
		VisionModel:  cfg.OpenRouterVisionModel,
		ContentModel: cfg.OpenRouterContentModel,
		Referer:      cfg.OpenRouterReferer,
		Title:        cfg.OpenRouterTitle,
	})

	workers := cfg.Workers
	if workers <= 0 {
		workers = system.DefaultWorkers()
	}
	log.Info().Int("workers", workers).Int("videos", len(cfg.Inputs)).Msg("starting pipeline")

	// A plain group, not WithContext: one video failing must not cancel the
	// others mid-transcode.
	var g errgroup.Group
	g.SetLimit(workers)
	for _, input := range cfg.Inputs {
		input := input
		g.Go(func() error {
			videoID := buildVideoID(input)
			vlog := log.With().Str("video_id", videoID).Logger()

			uc := usecase.New(usecase.Deps{
				Video:   video,
				ASR:     asr,
				Vision:  vision.New(llm, cfg.DedupThreshold, vlog),
				Content: moments.New(llm, vlog),
				Store:   store,
				Progress: ports.ProgressFunc(func(pct int, stage string) {
					vlog.Info().Int("progress", pct).Msg(stage)
				}),
				Log: vlog,
			}, cfg.Processing)

			if err := store.CreateVideo(ctx, types.Video{ID: videoID, Path: input}); err != nil {
				return err
			}

			runDir := filepath.Join(outDir, videoID)
			if err := os.MkdirAll(runDir, 0o755); err != nil {
				return err
			}

			res, err := uc.ProcessVideo(ctx, usecase.Input{
				VideoID:   videoID,
				VideoPath: input,
				WorkDir:   runDir,
			})
			if err != nil {
				vlog.Error().Err(err).Str("input", input).Msg("video failed")
				return fmt.Errorf("process %s: %w", input, err)
			}

			if err := store.WriteManifest(ctx, videoID, res.Manifest); err != nil {
				return err
			}
			if err := writeManifestFile(runDir, res.Manifest); err != nil {
				return err
			}
			vlog.Info().Int("clips", len(res.Clips)).Str("dir", runDir).Msg("video completed")
			return nil
		})
	}
	return g.Wait()
}

func writeManifestFile(runDir string, m types.Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(runDir, "manifest.json"), b, 0o644)
}

// buildVideoID derives a readable, collision-free job ID from the input file
// name.
func buildVideoID(input string) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	return fmt.Sprintf("%s-%s", name, uuid.NewString()[:8])
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.VisionModel = (*openrouter.Adapter)(nil)
var _ ports.ContentModel = (*openrouter.Adapter)(nil)
var _ ports.JobStore = (*localstore.Store)(nil)
