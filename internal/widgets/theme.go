package widgets

import (
	"context"

	"github.com/conneroisu/formpulse/internal/store"
)

// Theme tracks the dark-mode preference.
type Theme struct {
	store store.Store
	dark  bool
}

// NewTheme loads the saved preference. No saved value means light mode.
func NewTheme(ctx context.Context, s store.Store) (*Theme, error) {
	dark, err := store.GetBool(ctx, s, store.KeyDarkMode)
	if err != nil {
		return nil, err
	}
	return &Theme{store: s, dark: dark}, nil
}

// Dark reports whether dark mode is on.
func (t *Theme) Dark() bool { return t.dark }

// Toggle flips the theme and persists the choice.
func (t *Theme) Toggle(ctx context.Context) (bool, error) {
	next := !t.dark
	if err := store.SetBool(ctx, t.store, store.KeyDarkMode, next); err != nil {
		return t.dark, err
	}
	t.dark = next
	return t.dark, nil
}

// ApplySystemPreference follows the OS colour scheme for this session only.
func (t *Theme) ApplySystemPreference(dark bool) {
	t.dark = dark
}
