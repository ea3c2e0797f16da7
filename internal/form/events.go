package form

import (
	"errors"
	"sync"
)

// EventKind names an interaction kind a host can report.
type EventKind string

const (
	// EventInput is a value-changing keystroke or paste.
	EventInput EventKind = "input"
	// EventBlur is focus leaving a field.
	EventBlur EventKind = "blur"
	// EventChange is a committed change, used by the consent checkbox.
	EventChange EventKind = "change"
	// EventSubmit is the form submission action. It carries no field.
	EventSubmit EventKind = "submit"
)

// ErrUnknownEvent is returned for event kinds other than the four above.
var ErrUnknownEvent = errors.New("unknown event kind")

// ParseEventKind converts a wire name into an EventKind.
func ParseEventKind(s string) (EventKind, bool) {
	switch k := EventKind(s); k {
	case EventInput, EventBlur, EventChange, EventSubmit:
		return k, true
	}
	return "", false
}

// Event is "an event of kind K occurred on field F with value V".
type Event struct {
	Kind  EventKind
	Field FieldName
	Value Value
	// HasValue marks a blur that reports the field's current value. Without
	// it a blur validates the stored value.
	HasValue bool
}

// Handler reacts to one event.
type Handler func(Event)

// EventSource is the host capability components register handlers on.
type EventSource interface {
	On(kind EventKind, h Handler)
}

// Bus is an in-process EventSource. Emit runs every handler for the event's
// kind to completion before returning.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventKind][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[EventKind][]Handler)}
}

// On registers h for kind.
func (b *Bus) On(kind EventKind, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], h)
}

// Emit delivers ev to the handlers registered for its kind, in registration
// order. It reports whether any handler ran.
func (b *Bus) Emit(ev Event) bool {
	b.mu.RLock()
	handlers := b.handlers[ev.Kind]
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
	return len(handlers) > 0
}
