package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/logging"
	"github.com/clipforge/clipforge/internal/ports/adapters/localstore"
	"github.com/clipforge/clipforge/internal/types"
)

// newSweepCmd marks jobs stuck in processing as failed. Useful after a crash
// or kill -9: the pipeline itself never resumes a half-finished job.
func newSweepCmd() *cobra.Command {
	var (
		configPath string
		workDir    string
		outDir     string
		staleAfter time.Duration
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "sweep",
		Short:         "Fail jobs stuck in processing",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(verbose)
			log := logging.WithComponent("sweep")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if workDir != "" {
				cfg.WorkDir = workDir
			}
			if outDir != "" {
				cfg.OutDir = outDir
			}
			if staleAfter > 0 {
				cfg.Sweep.StaleAfter = staleAfter
			}

			store, err := localstore.New(filepath.Join(cfg.WorkDir, "jobs"))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			stale, err := store.FindStale(ctx, cfg.Sweep.StaleAfter)
			if err != nil {
				return err
			}
			for _, v := range stale {
				v.Status = types.StatusFailed
				v.ErrorMessage = fmt.Sprintf("processing stalled for more than %s, forced to failed by sweep", cfg.Sweep.StaleAfter)
				if err := store.UpdateVideo(ctx, v); err != nil {
					return fmt.Errorf("sweep %s: %w", v.ID, err)
				}
				removeOrphans(filepath.Join(cfg.OutDir, v.ID))
				log.Warn().Str("video_id", v.ID).Time("updated_at", v.UpdatedAt).Msg("marked stale job failed")
			}
			log.Info().Int("swept", len(stale)).Msg("sweep finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file (default: clipforge.yaml if present)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory whose orphaned intermediates get removed")
	cmd.Flags().StringVar(&workDir, "work-dir", "", "directory holding job state")
	cmd.Flags().DurationVar(&staleAfter, "stale-after", 0, "age after which a processing job counts as stuck")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

// removeOrphans deletes the intermediates a killed pipeline instance left in
// its run directory. Finished clip outputs are left alone.
func removeOrphans(runDir string) {
	os.RemoveAll(filepath.Join(runDir, "frames"))
	os.Remove(filepath.Join(runDir, "audio.wav"))
	if matches, err := filepath.Glob(filepath.Join(runDir, "clips", "*_temp_*")); err == nil {
		for _, m := range matches {
			os.RemoveAll(m)
		}
	}
}
