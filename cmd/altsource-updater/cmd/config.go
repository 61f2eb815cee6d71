package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/altsource-updater/internal/config"
	"github.com/oshokin/altsource-updater/internal/logger"
)

var errSettingsExist = errors.New("settings file already exists, use --force to overwrite")

// newConfigCommand returns the `config` command group.
func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file.",
	}

	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

// newConfigInitCommand writes the built-in sources to a settings file.
func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default settings to a YAML file.",
		Long: fmt.Sprintf(`Writes the built-in source table and defaults to a YAML settings file.
The file is named %s when no path is given.`, config.DefaultConfigFilename),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFilename
			if len(args) > 0 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s: %w", path, errSettingsExist)
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}

			logger.InfoKV(cmd.Context(), "Settings written", "path", path)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}
