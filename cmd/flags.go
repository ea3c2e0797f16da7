package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conneroisu/formpulse/internal/store"
)

// driverValue is a pflag.Value restricted to the known storage drivers.
type driverValue struct {
	driver store.Driver
}

var _ pflag.Value = (*driverValue)(nil)

func newDriverValue(def store.Driver) *driverValue {
	return &driverValue{driver: def}
}

func (d *driverValue) String() string { return string(d.driver) }

func (d *driverValue) Set(s string) error {
	driver, err := store.ParseDriver(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return err
	}
	d.driver = driver
	return nil
}

func (d *driverValue) Type() string { return "driver" }

func driverNames() string {
	return strings.Join([]string{
		string(store.DriverMemory),
		string(store.DriverFile),
		string(store.DriverSQLite),
		string(store.DriverRedis),
	}, ", ")
}

// formatValue is a pflag.Value for output formats.
type formatValue struct {
	format  string
	allowed []string
}

var _ pflag.Value = (*formatValue)(nil)

func newFormatValue(def string, allowed ...string) *formatValue {
	return &formatValue{format: def, allowed: allowed}
}

func (f *formatValue) String() string { return f.format }

func (f *formatValue) Set(s string) error {
	for _, a := range f.allowed {
		if s == a {
			f.format = s
			return nil
		}
	}
	return fmt.Errorf("invalid output format %s, must be one of: %s", s, strings.Join(f.allowed, ", "))
}

func (f *formatValue) Type() string { return "format" }

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	// Store original value setter
	originalSet := flag.Value.Set

	// Create wrapper that validates
	flag.Value = &validatingValue{
		Value:       flag.Value,
		validator:   validator,
		originalSet: originalSet,
	}
}

type validatingValue struct {
	pflag.Value
	validator   func(string) error
	originalSet func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.originalSet(val)
}

// ValidatePort accepts 0 (any free port) through 65535.
func ValidatePort(portStr string) error {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", portStr)
	}

	if port < 0 || port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", port)
	}

	return nil
}

// ValidateFileExists rejects paths that do not exist. Empty is allowed.
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	return nil
}
