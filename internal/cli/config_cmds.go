package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/cardforge/internal/config"
)

// NewConfigCmd creates the "config" command group with init and validate
// subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cardforge configuration",
	}

	cmd.AddCommand(newConfigInitCmd(), newConfigValidateCmd())
	return cmd
}

// newConfigInitCmd writes a default config file.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Example: `  # Create ~/.cardforge/config.yaml with defaults
  cardforge config init

  # Overwrite an existing config
  cardforge config init --force

  # Write to a custom location
  cardforge --config ./cardforge.yaml config init`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveConfigPath(cmd)
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%w: %s (use --force to overwrite)", config.ErrConfigExists, path)
			} else if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("checking config %s: %w", path, err)
			}

			if err := config.New().Save(path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

// newConfigValidateCmd checks that a config file parses and has a supported
// version.
func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Example: `  # Validate the default config
  cardforge config validate

  # Validate a specific file
  cardforge --config ./cardforge.yaml config validate`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveConfigPath(cmd)
			if err != nil {
				return err
			}

			if err := config.Validate(path); err != nil {
				return fmt.Errorf("config is invalid: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration %s is valid\n", path)
			return nil
		},
	}
}

// resolveConfigPath returns the --config flag value or the default location.
func resolveConfigPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return path, nil
	}
	return config.DefaultPath()
}
