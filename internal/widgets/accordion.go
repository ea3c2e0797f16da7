package widgets

// ClosedAll is the Open value when no FAQ item is expanded.
const ClosedAll = -1

// Accordion keeps at most one of its items open.
type Accordion struct {
	items int
	open  int
}

// NewAccordion creates an accordion of n items, all closed.
func NewAccordion(n int) *Accordion {
	return &Accordion{items: n, open: ClosedAll}
}

// Open returns the open item index, or ClosedAll.
func (a *Accordion) Open() int { return a.open }

// Toggle closes item i if it is open, otherwise opens it and closes the
// rest. Out-of-range indexes are ignored and report false.
func (a *Accordion) Toggle(i int) bool {
	if i < 0 || i >= a.items {
		return false
	}
	if a.open == i {
		a.open = ClosedAll
	} else {
		a.open = i
	}
	return true
}
