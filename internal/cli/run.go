package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/pipeline"
	"github.com/clipforge/clipforge/internal/usecase"
)

// runTimeout bounds a whole invocation. Long-form source videos can take a
// while to transcode, but nothing should run for days.
const runTimeout = 3 * time.Hour

type rootFlags struct {
	configPath string
	outDir     string
	workDir    string
	clips      int
	workers    int
	verbose    bool
}

func run(cmd *cobra.Command, args []string, flags rootFlags) error {
	logging.Init(flags.verbose)
	log := logging.WithComponent("cli")

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.outDir != "" {
		cfg.OutDir = flags.outDir
	}
	if flags.workDir != "" {
		cfg.WorkDir = flags.workDir
	}
	if flags.clips > 0 {
		cfg.Pipeline.TopClips = flags.clips
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return errors.New("OPENROUTER_API_KEY is not set")
	}

	pcfg := pipeline.Config{
		Inputs:  args,
		OutDir:  cfg.OutDir,
		WorkDir: cfg.WorkDir,
		Workers: cfg.Workers,

		FFmpegPath:  cfg.FFmpeg.BinaryPath,
		FFprobePath: cfg.FFmpeg.ProbePath,

		WhisperBin:      cfg.Whisper.BinaryPath,
		WhisperModel:    cfg.Whisper.ModelPath,
		WhisperLanguage: cfg.Whisper.Language,

		OpenRouterAPIKey:       apiKey,
		OpenRouterBaseURL:      cfg.OpenRouter.BaseURL,
		OpenRouterVisionModel:  cfg.OpenRouter.VisionModel,
		OpenRouterContentModel: cfg.OpenRouter.ContentModel,
		OpenRouterAllowedHosts: cfg.OpenRouter.AllowedHosts,
		OpenRouterReferer:      cfg.OpenRouter.Referer,
		OpenRouterTitle:        getenvDefault("CLIPFORGE_APP_TITLE", cfg.OpenRouter.Title),

		Processing: usecase.Config{
			FPS:              cfg.Pipeline.FramesPerSecond,
			ClipMinDuration:  cfg.Pipeline.ClipMinDuration,
			ClipMaxDuration:  cfg.Pipeline.ClipMaxDuration,
			TopN:             cfg.Pipeline.TopClips,
			MinViralityScore: cfg.Pipeline.MinViralityScore,
			CropFrames:       cfg.Pipeline.CropFrames,
			CropThreshold:    cfg.Pipeline.CropThreshold,
			WordsPerGroup:    cfg.Pipeline.WordsPerGroup,
			SubtitleDelay:    cfg.Pipeline.SubtitleDelay,
		},
		DedupThreshold: cfg.Pipeline.DedupThreshold,

		Log: logging.WithComponent("pipeline"),
	}
	if err := pcfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if err := pipeline.Run(ctx, pcfg); err != nil {
		log.Error().Err(err).Msg("pipeline failed")
		return err
	}
	return nil
}
