package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/formpulse/internal/server"
	"github.com/conneroisu/formpulse/internal/store"
	"github.com/conneroisu/formpulse/internal/watcher"
)

var serveDriver = newDriverValue(store.DriverMemory)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve the interactive page",
	Long: `Serve the page, its script and the websocket that validates the form live.

Widget state (theme, high score) is kept in the configured store so it
survives restarts with the file, sqlite or redis drivers.

Examples:
  formpulse serve                         # localhost:8080, in-memory state
  formpulse serve -p 9000 --driver sqlite # persist to .formpulse/state.db
  formpulse serve --host 0.0.0.0          # listen on every interface`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Var(serveDriver, "driver", "Storage driver ("+driverNames()+")")
	serveCmd.Flags().String("store-path", "", "State file for the file and sqlite drivers")
	serveCmd.Flags().Bool("watch-config", false, "Reload the log level when the config file changes")
	AddFlagValidation(serveCmd, "port", ValidatePort)

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("storage.driver", serveCmd.Flags().Lookup("driver"))
	_ = viper.BindPFlag("storage.path", serveCmd.Flags().Lookup("store-path"))
	_ = viper.BindPFlag("development.watch_config", serveCmd.Flags().Lookup("watch-config"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()
	log := logger.WithComponent("serve")

	// Cancel on interrupt; the server shuts down gracefully when ctx ends.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Storage.Driver, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn(context.Background(), err, "Failed to close store")
		}
	}()

	if cfg.Development.WatchConfig {
		if cfg.File == "" {
			log.Warn(ctx, nil, "Config watching requested but no config file is in use")
		} else {
			fw, err := watcher.WatchConfig(ctx, cfg.File, logger, log)
			if err != nil {
				return fmt.Errorf("failed to watch %s: %w", cfg.File, err)
			}
			defer fw.Stop()
		}
	}

	srv := server.New(cfg, st, logger)
	fmt.Fprintf(cmd.OutOrStdout(), "Starting formpulse at http://%s\n", cfg.Address())
	if err := srv.Start(ctx); err != nil {
		return err
	}
	log.Info(context.Background(), "Server stopped")
	return nil
}
