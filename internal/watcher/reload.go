package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/formpulse/internal/logging"
)

// LevelSetter is the part of the logger the reloader changes.
type LevelSetter interface {
	SetLevel(level logging.LogLevel)
	Level() logging.LogLevel
}

// ReloadLogLevel re-reads logging.level from configFile and applies it.
// It reads into a private Viper so the global instance is never touched
// from the watcher goroutine.
func ReloadLogLevel(configFile string, target LevelSetter) (logging.LogLevel, bool, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return target.Level(), false, fmt.Errorf("read %s: %w", configFile, err)
	}
	raw := v.GetString("logging.level")
	if raw == "" {
		return target.Level(), false, nil
	}
	level, err := logging.ParseLevel(raw)
	if err != nil {
		return target.Level(), false, err
	}
	if level == target.Level() {
		return level, false, nil
	}
	target.SetLevel(level)
	return level, true, nil
}

// WatchConfig starts a watcher that applies logging.level changes in
// configFile to target until ctx is done. Callers Stop the returned watcher.
func WatchConfig(ctx context.Context, configFile string, target LevelSetter, logger logging.Logger) (*FileWatcher, error) {
	fw, err := NewFileWatcher(200*time.Millisecond, logger)
	if err != nil {
		return nil, err
	}
	fw.AddFilter(NameFilter(configFile))
	fw.AddHandler(func(events []ChangeEvent) error {
		for _, ev := range events {
			if ev.Type == EventTypeDeleted {
				continue
			}
			level, changed, err := ReloadLogLevel(configFile, target)
			if err != nil {
				return err
			}
			if changed {
				fw.logger.Info(ctx, "Log level reloaded", "level", level.String(), "file", configFile)
			}
			return nil
		}
		return nil
	})

	if err := fw.AddPath(filepath.Dir(configFile)); err != nil {
		_ = fw.watcher.Close()
		return nil, err
	}
	fw.Start(ctx)
	return fw, nil
}
