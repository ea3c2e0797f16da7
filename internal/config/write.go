package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	apperrors "github.com/conneroisu/formpulse/internal/errors"
)

const fileHeader = "# formpulse configuration\n# Every key can be overridden with FORMPULSE_<SECTION>_<KEY>.\n\n"

// ErrExists is returned by WriteFile when the target exists and overwrite is
// false.
var ErrExists = apperrors.NewConfigError("EXISTS", "configuration file already exists", nil)

// Marshal renders config as the YAML document Load reads back.
func Marshal(config *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config); err != nil {
		return nil, fmt.Errorf("encode configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes config to path.
func WriteFile(path string, config *Config, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return ErrExists
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	data, err := Marshal(config)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
