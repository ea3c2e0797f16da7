// Package widgets holds the page's simple interactive widgets: dark-mode
// theme, click counter with a persisted high score, tab switcher and FAQ
// accordion. All state lives in an explicit Session; nothing is global.
package widgets

import (
	"context"
	"fmt"

	"github.com/conneroisu/formpulse/internal/store"
)

// Session is the widget state of one page session.
type Session struct {
	Theme     *Theme
	Counter   *Counter
	Tabs      *Tabs
	Accordion *Accordion
}

// Snapshot is the serializable view of a Session.
type Snapshot struct {
	DarkMode   bool   `json:"darkMode"`
	Count      int    `json:"count"`
	Clicks     int    `json:"clicks"`
	HighScore  int    `json:"highScore"`
	ActiveTab  string `json:"activeTab"`
	OpenFAQ    int    `json:"openFaq"`
	NewHighest bool   `json:"newHighScore,omitempty"`
}

// NewSession loads persisted state from s and builds a fresh session.
func NewSession(ctx context.Context, s store.Store, tabs []string, faqItems int) (*Session, error) {
	theme, err := NewTheme(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("load theme: %w", err)
	}
	counter, err := NewCounter(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("load counter: %w", err)
	}
	tabSet, err := NewTabs(tabs...)
	if err != nil {
		return nil, err
	}
	return &Session{
		Theme:     theme,
		Counter:   counter,
		Tabs:      tabSet,
		Accordion: NewAccordion(faqItems),
	}, nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		DarkMode:  s.Theme.Dark(),
		Count:     s.Counter.Count(),
		Clicks:    s.Counter.Clicks(),
		HighScore: s.Counter.HighScore(),
		ActiveTab: s.Tabs.Active(),
		OpenFAQ:   s.Accordion.Open(),
	}
}
