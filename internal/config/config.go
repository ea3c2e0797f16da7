// Package config loads formpulse configuration through Viper from a YAML
// file, FORMPULSE_ environment variables and command-line flags.
//
// Load applies defaults for anything left unset and then checks the result
// against the struct tags with go-playground/validator. Warnings that do not
// prevent startup are available from Check.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/formpulse/internal/logging"
	"github.com/conneroisu/formpulse/internal/store"
)

// Default values applied by Load.
const (
	DefaultHost        = "localhost"
	DefaultPort        = 8080
	DefaultDriver      = "memory"
	DefaultPath        = ".formpulse/state.yml"
	DefaultRedisAddr   = "localhost:6379"
	DefaultRedisPrefix = "formpulse:"
	DefaultLanguage    = "en"
	DefaultSuccessHide = 5 * time.Second
	DefaultFailureCue  = 500 * time.Millisecond
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Storage     StorageConfig     `mapstructure:"storage" yaml:"storage"`
	Form        FormConfig        `mapstructure:"form" yaml:"form"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Development DevelopmentConfig `mapstructure:"development" yaml:"development"`
	// File is the config file Viper read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host" yaml:"host" validate:"required,hostname|ip"`
	Port           int      `mapstructure:"port" yaml:"port" validate:"gte=0,lte=65535"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins,omitempty" validate:"dive,required"`
}

type StorageConfig struct {
	Driver      string `mapstructure:"driver" yaml:"driver" validate:"oneof=memory file sqlite redis"`
	Path        string `mapstructure:"path" yaml:"path,omitempty" validate:"omitempty,safepath"`
	RedisAddr   string `mapstructure:"redis_addr" yaml:"redis_addr,omitempty" validate:"omitempty,hostname_port"`
	RedisPrefix string `mapstructure:"redis_prefix" yaml:"redis_prefix,omitempty"`
}

type FormConfig struct {
	Language string `mapstructure:"language" yaml:"language" validate:"langtag"`
	// SuccessHide is how long the success banner stays up.
	SuccessHide time.Duration `mapstructure:"success_hide" yaml:"success_hide" validate:"gte=0"`
	// FailureCue is how long the failed-submit shake lasts.
	FailureCue time.Duration `mapstructure:"failure_cue" yaml:"failure_cue" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
	File   string `mapstructure:"file" yaml:"file,omitempty" validate:"omitempty,safepath"`
}

type DevelopmentConfig struct {
	// WatchConfig reloads the log level when the config file changes.
	WatchConfig bool `mapstructure:"watch_config" yaml:"watch_config"`
}

// Load reads the configuration from the global Viper instance.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	// Viper leaves slices set through flags or env as a single string.
	if viper.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = viper.GetStringSlice("server.allowed_origins")
	}

	applyDefaults(&config)
	config.File = viper.ConfigFileUsed()

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var config Config
	applyDefaults(&config)
	return &config
}

// ApplyDefaults fills every option left at its zero value.
func ApplyDefaults(config *Config) { applyDefaults(config) }

func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = DefaultHost
	}
	if !viper.IsSet("server.port") && config.Server.Port == 0 {
		config.Server.Port = DefaultPort
	}

	if config.Storage.Driver == "" {
		config.Storage.Driver = DefaultDriver
	}
	if config.Storage.Path == "" {
		switch config.Storage.Driver {
		case string(store.DriverFile):
			config.Storage.Path = DefaultPath
		case string(store.DriverSQLite):
			config.Storage.Path = ".formpulse/state.db"
		}
	}
	if config.Storage.Driver == string(store.DriverRedis) {
		if config.Storage.RedisAddr == "" {
			config.Storage.RedisAddr = DefaultRedisAddr
		}
		if config.Storage.RedisPrefix == "" {
			config.Storage.RedisPrefix = DefaultRedisPrefix
		}
	}

	if config.Form.Language == "" {
		config.Form.Language = DefaultLanguage
	}
	if !viper.IsSet("form.success_hide") && config.Form.SuccessHide == 0 {
		config.Form.SuccessHide = DefaultSuccessHide
	}
	if !viper.IsSet("form.failure_cue") && config.Form.FailureCue == 0 {
		config.Form.FailureCue = DefaultFailureCue
	}

	if config.Logging.Level == "" {
		config.Logging.Level = DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = DefaultLogFormat
	}
}

// Address is the host:port the server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// StoreOptions maps the storage section to store.Options.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Driver:      store.Driver(c.Storage.Driver),
		Path:        c.Storage.Path,
		RedisAddr:   c.Storage.RedisAddr,
		RedisPrefix: c.Storage.RedisPrefix,
	}
}

// LoggerConfig maps the logging section to a logging.LoggerConfig.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	lc := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.Logging.Level); err == nil {
		lc.Level = level
	}
	lc.Format = c.Logging.Format
	lc.File = c.Logging.File
	return lc
}
