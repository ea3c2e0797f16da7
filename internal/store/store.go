// Package store persists the small amount of page state that outlives a
// session: the counter high score and the dark-mode preference.
package store

import (
	"context"
	"fmt"
	"strconv"

	apperrors "github.com/conneroisu/formpulse/internal/errors"
)

// Keys used by the page widgets.
const (
	KeyHighScore = "counterHighScore"
	KeyDarkMode  = "darkMode"
)

// Store is a string key-value store. Implementations are safe for concurrent
// use.
type Store interface {
	// Get returns the value of key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Driver names a Store implementation.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverFile   Driver = "file"
	DriverSQLite Driver = "sqlite"
	DriverRedis  Driver = "redis"
)

// Options selects and configures a driver.
type Options struct {
	Driver Driver
	// Path is the file for the file and sqlite drivers.
	Path string
	// RedisAddr and RedisPrefix configure the redis driver.
	RedisAddr   string
	RedisPrefix string
}

// Open creates the store selected by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	// Each case assigns through a typed local so a failed open never yields a
	// non-nil interface holding a nil pointer.
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverFile:
		var f *File
		if f, err = OpenFile(opts.Path); err == nil {
			s = f
		}
	case DriverSQLite:
		var db *SQLite
		if db, err = OpenSQLite(ctx, opts.Path); err == nil {
			s = db
		}
	case DriverRedis:
		var r *Redis
		if r, err = OpenRedis(ctx, opts.RedisAddr, opts.RedisPrefix); err == nil {
			s = r
		}
	default:
		return nil, apperrors.NewConfigError("UNKNOWN_DRIVER", fmt.Sprintf("unknown storage driver %q", opts.Driver), nil)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ParseDriver validates a driver name.
func ParseDriver(name string) (Driver, error) {
	switch d := Driver(name); d {
	case DriverMemory, DriverFile, DriverSQLite, DriverRedis:
		return d, nil
	}
	return "", apperrors.NewConfigError("UNKNOWN_DRIVER", fmt.Sprintf("unknown storage driver %q", name), nil)
}

// GetInt reads an integer value. Missing or unparsable values yield def.
func GetInt(ctx context.Context, s Store, key string, def int) (int, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	n, convErr := strconv.Atoi(raw)
	if convErr != nil {
		return def, nil
	}
	return n, nil
}

// GetBool reads a boolean stored as "true"/"false". Anything other than
// "true" is false.
func GetBool(ctx context.Context, s Store, key string) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	return raw == "true", nil
}

// SetInt stores an integer value.
func SetInt(ctx context.Context, s Store, key string, v int) error {
	return s.Set(ctx, key, strconv.Itoa(v))
}

// SetBool stores a boolean value.
func SetBool(ctx context.Context, s Store, key string, v bool) error {
	return s.Set(ctx, key, strconv.FormatBool(v))
}
