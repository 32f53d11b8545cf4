// Package cli implements the clipforge command line interface.
package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	// Best effort: a missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	root := newRootCmd()
	root.AddCommand(newSweepCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "clipforge <video.mp4> [video.mp4 ...]",
		Short:         "Extract short vertical highlight clips from long-form videos",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "path to config file (default: clipforge.yaml if present)")
	cmd.Flags().StringVarP(&flags.outDir, "out", "o", "", "output directory for clips and manifests")
	cmd.Flags().StringVar(&flags.workDir, "work-dir", "", "directory for job state and intermediates")
	cmd.Flags().IntVarP(&flags.clips, "clips", "n", 0, "maximum number of clips per video")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "videos processed in parallel (0 = auto)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
