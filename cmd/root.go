// Package cmd provides the formpulse command line.
//
// Configuration is read, highest priority first, from flags, FORMPULSE_*
// environment variables (a .env file in the working directory is loaded
// into the environment first), the file named by --config or
// FORMPULSE_CONFIG_FILE, and finally .formpulse.yml in the working directory.
//
//	FORMPULSE_SERVER_PORT=9000 formpulse serve
//	FORMPULSE_STORAGE_DRIVER=sqlite formpulse serve
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/formpulse/internal/config"
	"github.com/conneroisu/formpulse/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "formpulse",
	Short: "A live-validated registration form and interactive page",
	Long: `formpulse serves a single interactive page: a theme toggle, a counter with a
persisted high score, tabs, an FAQ accordion and a seven-field registration
form validated on the server as you type.

Quick Start:
  formpulse init                  Write a .formpulse.yml with defaults
  formpulse serve                 Start the page server
  formpulse validate --file f.yml Validate a submission headlessly
  formpulse strength              Score a password read from stdin`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .formpulse.yml, can also use FORMPULSE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig points viper at the config file and the environment. A missing
// file is not an error; a malformed one is reported by config.Load later.
func initConfig() {
	// .env only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: could not read .env:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("FORMPULSE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".formpulse")
	}

	viper.SetEnvPrefix("FORMPULSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads and validates configuration and prints its warnings.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if res := config.Check(cfg); res.HasWarnings() {
		fmt.Fprintln(cmd.ErrOrStderr(), res.String())
	}
	return cfg, nil
}

// newLogger builds the process logger for cfg. Callers Sync it on exit.
func newLogger(cfg *config.Config) *logging.ZapLogger {
	return logging.NewLogger(cfg.LoggerConfig())
}
