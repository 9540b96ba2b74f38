// Command envsync derives frontend/.env and backend/.env from the root .env.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carehub/storefront/internal/envsync"
	"github.com/carehub/storefront/pkg/logger"
)

var opts struct {
	source      string
	frontendOut string
	backendOut  string
	dryRun      bool
	logLevel    string
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envsync",
		Short: "Generate frontend and backend .env files from the root .env",
		Long: `envsync reads a flat KEY=VALUE file, fills in defaults for missing keys
and writes the frontend and backend variants with fixed key sets.

Examples:
  # Regenerate both files from ./.env
  envsync

  # Preview the output without touching the filesystem
  envsync --source .env.example --dry-run`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.InitWithOptions(logger.Options{Level: opts.logLevel, Encoding: "console"})
		},
		RunE: run,
	}

	cmd.Flags().StringVar(&opts.source, "source", envsync.DefaultSource, "Source KEY=VALUE file")
	cmd.Flags().StringVar(&opts.frontendOut, "frontend-out", envsync.DefaultFrontendOut, "Frontend output file")
	cmd.Flags().StringVar(&opts.backendOut, "backend-out", envsync.DefaultBackendOut, "Backend output file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the generated files instead of writing them")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	result, err := envsync.Sync(envsync.Options{
		Source:      opts.source,
		FrontendOut: opts.frontendOut,
		BackendOut:  opts.backendOut,
		DryRun:      opts.dryRun,
		Stdout:      cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	if len(result.Defaulted) > 0 {
		logger.WithModule("envsync").Debug("defaults applied", zap.Strings("keys", result.Defaulted))
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.WithModule("envsync").Error("env sync failed", zap.Error(err))
		_ = logger.Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
