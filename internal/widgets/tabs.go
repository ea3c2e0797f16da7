package widgets

import (
	"errors"
	"fmt"
)

// DefaultTabs are the tab panels of the page.
var DefaultTabs = []string{"features", "about", "contact"}

// Tabs keeps exactly one tab active.
type Tabs struct {
	ids    []string
	active int
}

// NewTabs creates a tab set with the first id active.
func NewTabs(ids ...string) (*Tabs, error) {
	if len(ids) == 0 {
		return nil, errors.New("tabs: at least one tab is required")
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("tabs: duplicate tab %q", id)
		}
		seen[id] = true
	}
	return &Tabs{ids: append([]string(nil), ids...)}, nil
}

// IDs returns the tab ids in order.
func (t *Tabs) IDs() []string { return append([]string(nil), t.ids...) }

// Active returns the active tab id.
func (t *Tabs) Active() string { return t.ids[t.active] }

// Switch activates id.
func (t *Tabs) Switch(id string) error {
	for i, candidate := range t.ids {
		if candidate == id {
			t.active = i
			return nil
		}
	}
	return fmt.Errorf("tabs: unknown tab %q", id)
}
