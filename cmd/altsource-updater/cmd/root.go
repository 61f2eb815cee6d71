package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/altsource-updater/internal/logger"
	"github.com/oshokin/altsource-updater/internal/service/updater"
	"github.com/oshokin/altsource-updater/internal/version"
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return "exit status " + strconv.Itoa(e.code)
}

// flags holds the values of the root command flags.
type flags struct {
	// configPath to the optional settings YAML file.
	configPath string
	// manifestPath overrides the manifest location from the settings.
	manifestPath string
	// logLevel is the minimum level of emitted log entries.
	logLevel string
	// dryRun reconciles without writing the manifest.
	dryRun bool
	// detailedExitCode enables exit code 2 for failed fetches.
	detailedExitCode bool
}

// newRootCommand builds the altsource-updater command tree.
func newRootCommand() *cobra.Command {
	f := new(flags)

	rootCmd := &cobra.Command{
		Use:   "altsource-updater",
		Short: "Sync an AltStore source manifest with the latest GitHub releases.",
		Long: `Fetches the latest GitHub release of every configured app, picks the matching
IPA asset and updates the app entry in the AltStore source manifest.

The manifest is rewritten only when at least one entry changed.
Exit status is 0 when the manifest was updated and 1 otherwise.
With --detailed-exit-code, a run that changed nothing but had failed fetches exits with 2.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}

	rootCmd.Flags().StringVarP(&f.configPath, "config", "c", "", "path to settings YAML file (built-in sources when empty)")
	rootCmd.Flags().StringVarP(&f.manifestPath, "manifest", "m", "", "path to the manifest JSON file (overrides settings)")
	rootCmd.Flags().StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "reconcile without writing the manifest")
	rootCmd.Flags().BoolVar(&f.detailedExitCode, "detailed-exit-code", false, "exit with 2 when nothing changed and a fetch failed")

	rootCmd.AddCommand(version.NewCommand(), newConfigCommand())

	return rootCmd
}

// run applies the log level, executes one pass and maps the result to an exit status.
func run(ctx context.Context, f *flags) error {
	level, ok := logger.ParseLogLevel(f.logLevel)
	logger.SetLevel(level)

	if !ok {
		logger.Warnf(ctx, "Unknown log level %q, using %s", f.logLevel, logger.Level())
	}

	result, err := updater.Run(ctx, &updater.Options{
		ConfigPath:   f.configPath,
		ManifestPath: f.manifestPath,
		DryRun:       f.dryRun,
	})
	if err != nil {
		logger.ErrorKV(ctx, "Update failed", "error", err)
		return &exitError{code: updater.ExitNoUpdates}
	}

	if code := result.ExitCode(f.detailedExitCode); code != updater.ExitUpdated {
		return &exitError{code: code}
	}

	return nil
}

// Execute runs the altsource-updater CLI and exits with the status of the run.
func Execute() {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	code := exitCode(newRootCommand().ExecuteContext(ctx))

	stop()
	logger.Sync()
	os.Exit(code)
}

// exitCode converts a command error into a process exit status.
func exitCode(err error) int {
	if err == nil {
		return updater.ExitUpdated
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}

	// Flag and argument errors arrive here unlogged.
	logger.Logger().Error(err)

	return updater.ExitNoUpdates
}
