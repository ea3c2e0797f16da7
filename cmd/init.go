package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/formpulse/internal/config"
	"github.com/conneroisu/formpulse/internal/store"
)

var (
	initForce  bool
	initPath   string
	initDriver = newDriverValue(store.DriverFile)
)

var initCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"i"},
	Short:   "Write a configuration file with every default filled in",
	Long: `Write .formpulse.yml (or --output) with the default configuration so every
option is visible and can be edited.

Examples:
  formpulse init                   # .formpulse.yml with the file store
  formpulse init --driver sqlite   # use the sqlite store
  formpulse init --force           # overwrite an existing file`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
	initCmd.Flags().StringVarP(&initPath, "output", "o", ".formpulse.yml", "File to write")
	initCmd.Flags().Var(initDriver, "driver", "Storage driver ("+driverNames()+")")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := &config.Config{}
	cfg.Storage.Driver = initDriver.String()
	config.ApplyDefaults(cfg)

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.WriteFile(initPath, cfg, initForce); err != nil {
		if errors.Is(err, config.ErrExists) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", initPath)
		}
		return fmt.Errorf("failed to write %s: %w", initPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", initPath)
	return nil
}
