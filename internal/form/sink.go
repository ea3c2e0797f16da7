package form

import "sync"

// NotificationSink displays per-field errors and the form-level outcome.
type NotificationSink interface {
	ShowFieldError(name FieldName, message string)
	ClearFieldError(name FieldName)
	ShowFormSuccess()
	ShowFormFailureCue()
}

// StrengthSink is implemented by sinks that display the strength meter.
type StrengthSink interface {
	ShowStrength(strength PasswordStrength)
	HideStrength()
}

// ResetSink is implemented by sinks that clear input widgets after a
// successful submit.
type ResetSink interface {
	ResetForm()
}

// NopSink discards every notification.
type NopSink struct{}

func (NopSink) ShowFieldError(FieldName, string) {}
func (NopSink) ClearFieldError(FieldName)        {}
func (NopSink) ShowFormSuccess()                 {}
func (NopSink) ShowFormFailureCue()              {}

// Notification is one call recorded by a RecordingSink.
type Notification struct {
	Kind     NotificationKind
	Field    FieldName
	Message  string
	Strength PasswordStrength
}

// NotificationKind names a sink call.
type NotificationKind string

const (
	NotifyFieldError   NotificationKind = "field-error"
	NotifyFieldClear   NotificationKind = "field-clear"
	NotifyFormSuccess  NotificationKind = "form-success"
	NotifyFormFailure  NotificationKind = "form-failure"
	NotifyStrength     NotificationKind = "strength"
	NotifyStrengthHide NotificationKind = "strength-hide"
	NotifyFormReset    NotificationKind = "form-reset"
)

// RecordingSink keeps every notification and the errors currently on
// display. It implements StrengthSink and ResetSink.
type RecordingSink struct {
	mu        sync.Mutex
	calls     []Notification
	displayed map[FieldName]string
	strength  *PasswordStrength
	succeeded bool
}

// NewRecordingSink creates an empty recording sink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{displayed: make(map[FieldName]string)}
}

func (s *RecordingSink) record(n Notification) {
	s.calls = append(s.calls, n)
}

func (s *RecordingSink) ShowFieldError(name FieldName, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displayed[name] = message
	s.record(Notification{Kind: NotifyFieldError, Field: name, Message: message})
}

func (s *RecordingSink) ClearFieldError(name FieldName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.displayed, name)
	s.record(Notification{Kind: NotifyFieldClear, Field: name})
}

func (s *RecordingSink) ShowFormSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.succeeded = true
	s.record(Notification{Kind: NotifyFormSuccess})
}

func (s *RecordingSink) ShowFormFailureCue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(Notification{Kind: NotifyFormFailure})
}

func (s *RecordingSink) ShowStrength(strength PasswordStrength) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strength = &strength
	s.record(Notification{Kind: NotifyStrength, Strength: strength})
}

func (s *RecordingSink) HideStrength() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strength = nil
	s.record(Notification{Kind: NotifyStrengthHide})
}

func (s *RecordingSink) ResetForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(Notification{Kind: NotifyFormReset})
}

// Calls returns a copy of every recorded notification in order.
func (s *RecordingSink) Calls() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.calls))
	copy(out, s.calls)
	return out
}

// Displayed returns the errors currently shown, keyed by field.
func (s *RecordingSink) Displayed() map[FieldName]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[FieldName]string, len(s.displayed))
	for k, v := range s.displayed {
		out[k] = v
	}
	return out
}

// Strength returns the strength on display, or ok=false when hidden.
func (s *RecordingSink) Strength() (PasswordStrength, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.strength == nil {
		return PasswordStrength{}, false
	}
	return *s.strength, true
}

// Succeeded reports whether a success was ever signalled.
func (s *RecordingSink) Succeeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.succeeded
}

// Reset forgets all recorded calls and displayed state.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
	s.displayed = make(map[FieldName]string)
	s.strength = nil
	s.succeeded = false
}

// MultiSink fans notifications out to several sinks.
type MultiSink []NotificationSink

func (m MultiSink) ShowFieldError(name FieldName, message string) {
	for _, s := range m {
		s.ShowFieldError(name, message)
	}
}

func (m MultiSink) ClearFieldError(name FieldName) {
	for _, s := range m {
		s.ClearFieldError(name)
	}
}

func (m MultiSink) ShowFormSuccess() {
	for _, s := range m {
		s.ShowFormSuccess()
	}
}

func (m MultiSink) ShowFormFailureCue() {
	for _, s := range m {
		s.ShowFormFailureCue()
	}
}

func (m MultiSink) ShowStrength(strength PasswordStrength) {
	for _, s := range m {
		if ss, ok := s.(StrengthSink); ok {
			ss.ShowStrength(strength)
		}
	}
}

func (m MultiSink) HideStrength() {
	for _, s := range m {
		if ss, ok := s.(StrengthSink); ok {
			ss.HideStrength()
		}
	}
}

func (m MultiSink) ResetForm() {
	for _, s := range m {
		if rs, ok := s.(ResetSink); ok {
			rs.ResetForm()
		}
	}
}
