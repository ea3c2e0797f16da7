package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/conneroisu/formpulse/internal/errors"
)

func openDrivers(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	file, err := OpenFile(filepath.Join(dir, "state", "kv.yaml"))
	require.NoError(t, err)
	db, err := OpenSQLite(ctx, filepath.Join(dir, "kv.db"))
	require.NoError(t, err)

	stores := map[string]Store{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": db,
	}
	if addr := os.Getenv("FORMPULSE_TEST_REDIS_ADDR"); addr != "" {
		r, err := OpenRedis(ctx, addr, "formpulse-test:")
		require.NoError(t, err)
		stores["redis"] = r
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range openDrivers(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "missing-"+name)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, KeyHighScore, "7"))
			require.NoError(t, s.Set(ctx, KeyHighScore, "9"))

			v, ok, err := s.Get(ctx, KeyHighScore)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "9", v)
		})
	}
}

func TestTypedHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	n, err := GetInt(ctx, s, KeyHighScore, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, SetInt(ctx, s, KeyHighScore, 12))
	n, err = GetInt(ctx, s, KeyHighScore, 0)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	require.NoError(t, s.Set(ctx, KeyHighScore, "garbage"))
	n, err = GetInt(ctx, s, KeyHighScore, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	dark, err := GetBool(ctx, s, KeyDarkMode)
	require.NoError(t, err)
	assert.False(t, dark)
	require.NoError(t, SetBool(ctx, s, KeyDarkMode, true))
	dark, err = GetBool(ctx, s, KeyDarkMode)
	require.NoError(t, err)
	assert.True(t, dark)
}

func TestFileStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.yaml")

	first, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyDarkMode, "true"))

	second, err := OpenFile(path)
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, KeyDarkMode)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a mapping\n"), 0o644))

	_, err := OpenFile(path)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeStorage, apperrors.TypeOf(err))
}

func TestSQLiteStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, SetInt(ctx, first, KeyHighScore, 41))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer second.Close()
	n, err := GetInt(ctx, second, KeyHighScore, 0)
	require.NoError(t, err)
	assert.Equal(t, 41, n)
}

func TestConcurrentSets(t *testing.T) {
	ctx := context.Background()
	for name, s := range openDrivers(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					assert.NoError(t, SetInt(ctx, s, "concurrent", i))
				}(i)
			}
			wg.Wait()

			n, err := GetInt(ctx, s, "concurrent", -1)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, 0)
			assert.Less(t, n, 20)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, Options{Driver: DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	s.Close()

	_, err = Open(ctx, Options{Driver: "s3"})
	assert.True(t, errors.Is(err, apperrors.ErrUnknownDriver))

	s, err = Open(ctx, Options{Driver: DriverFile})
	assert.Error(t, err)
	assert.Nil(t, s)

	_, err = ParseDriver("redis")
	assert.NoError(t, err)
	_, err = ParseDriver("mongo")
	assert.Error(t, err)
}
