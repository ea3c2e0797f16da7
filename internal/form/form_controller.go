package form

import (
	"context"
	"fmt"

	"github.com/conneroisu/formpulse/internal/logging"
)

// FormState is the live state of the seven fields and their latest results.
// After construction lastResults always has exactly one entry per field.
type FormState struct {
	fields      map[FieldName]*Field
	lastResults map[FieldName]ValidationResult
}

func newFormState() *FormState {
	s := &FormState{
		fields:      make(map[FieldName]*Field, len(fieldOrder)),
		lastResults: make(map[FieldName]ValidationResult, len(fieldOrder)),
	}
	for _, name := range fieldOrder {
		s.fields[name] = newField(name)
		s.lastResults[name] = ValidationResult{}
	}
	return s
}

func (s *FormState) password() string {
	return s.fields[FieldPassword].Value.Text
}

// FormController owns the form state and orchestrates validation.
type FormController struct {
	state       *FormState
	controllers map[FieldName]*FieldController
	sink        NotificationSink
	rules       *Rules
	logger      logging.Logger
}

// Option configures a FormController.
type Option func(*FormController)

// WithRules sets the rules used to validate, and so the message language.
func WithRules(rules *Rules) Option {
	return func(fc *FormController) { fc.rules = rules }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(fc *FormController) { fc.logger = logger }
}

// NewFormController creates a controller with all fields pristine. A nil
// sink discards notifications.
func NewFormController(sink NotificationSink, opts ...Option) *FormController {
	if sink == nil {
		sink = NopSink{}
	}
	fc := &FormController{
		state:       newFormState(),
		controllers: make(map[FieldName]*FieldController, len(fieldOrder)),
		sink:        sink,
		rules:       NewRules(nil),
		logger:      logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(fc)
	}

	for _, name := range fieldOrder {
		fc.controllers[name] = &FieldController{
			field:   fc.state.fields[name],
			rules:   fc.rules,
			form:    fc.state,
			sink:    fc.sink,
			results: fc.state.lastResults,
		}
	}
	return fc
}

// Field returns the controller for name.
func (fc *FormController) Field(name FieldName) (*FieldController, error) {
	c, ok := fc.controllers[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	return c, nil
}

// Bind registers the controller's handlers on src.
func (fc *FormController) Bind(src EventSource) {
	handle := func(ev Event) {
		if err := fc.Dispatch(ev); err != nil {
			fc.logger.Warn(context.Background(), err, "Dropped form event", "kind", string(ev.Kind))
		}
	}
	src.On(EventInput, handle)
	src.On(EventBlur, handle)
	src.On(EventChange, handle)
	src.On(EventSubmit, handle)
}

// Dispatch routes one event to the affected field, or submits the form.
func (fc *FormController) Dispatch(ev Event) error {
	if ev.Kind == EventSubmit {
		fc.HandleSubmit()
		return nil
	}

	c, err := fc.Field(ev.Field)
	if err != nil {
		return err
	}

	switch ev.Kind {
	case EventInput:
		c.Input(ev.Value)
	case EventBlur:
		if ev.HasValue {
			c.BlurWith(ev.Value)
		} else {
			c.Blur()
		}
	case EventChange:
		c.Change(ev.Value)
	default:
		return fmt.Errorf("%w %q", ErrUnknownEvent, ev.Kind)
	}
	return nil
}

// HandleSubmit validates every field and either resets the form on success
// or signals failure. It reports whether the form was valid.
func (fc *FormController) HandleSubmit() bool {
	valid, _ := fc.submit()
	return valid
}

func (fc *FormController) submit() (bool, map[FieldName]ValidationResult) {
	// Every field is evaluated so all errors surface at once.
	valid := true
	for _, name := range fieldOrder {
		if !fc.controllers[name].Validate() {
			valid = false
		}
	}
	results := fc.Results()

	if !valid {
		fc.logger.Debug(context.Background(), "Form submission rejected", "invalid_fields", invalidFields(results))
		fc.sink.ShowFormFailureCue()
		return false, results
	}

	for _, name := range fieldOrder {
		fc.sink.ClearFieldError(name)
	}
	if ss, ok := fc.sink.(StrengthSink); ok {
		ss.HideStrength()
	}
	fc.sink.ShowFormSuccess()

	for _, name := range fieldOrder {
		fc.controllers[name].Reset()
	}
	if rs, ok := fc.sink.(ResetSink); ok {
		rs.ResetForm()
	}
	fc.logger.Info(context.Background(), "Form submitted")
	return true, results
}

// ValidateValues loads values into the form, submits it and returns the
// per-field results of that submission. Fields missing from values are
// treated as empty.
func (fc *FormController) ValidateValues(values map[FieldName]Value) (bool, map[FieldName]ValidationResult) {
	for _, name := range fieldOrder {
		fc.state.fields[name].Value = values[name]
	}
	return fc.submit()
}

// Sync loads host-side values into the form without validating. Hosts use it
// to restore a form whose inputs outlived the session. Fields missing from
// values are left alone.
func (fc *FormController) Sync(values map[FieldName]Value) {
	for _, name := range fieldOrder {
		if v, ok := values[name]; ok {
			fc.controllers[name].Sync(v)
		}
	}
}

// State returns the state of name, or pristine for unknown names.
func (fc *FormController) State(name FieldName) State {
	if c, ok := fc.controllers[name]; ok {
		return c.State()
	}
	return StatePristine
}

// Value returns the raw value of name.
func (fc *FormController) Value(name FieldName) Value {
	if f, ok := fc.state.fields[name]; ok {
		return f.Value
	}
	return Value{}
}

// Result returns the latest result recorded for name.
func (fc *FormController) Result(name FieldName) ValidationResult {
	return fc.state.lastResults[name]
}

// Results returns a copy of the latest result of every field.
func (fc *FormController) Results() map[FieldName]ValidationResult {
	out := make(map[FieldName]ValidationResult, len(fc.state.lastResults))
	for k, v := range fc.state.lastResults {
		out[k] = v
	}
	return out
}

// Submittable reports whether every field's latest result is valid.
func (fc *FormController) Submittable() bool {
	for _, r := range fc.state.lastResults {
		if !r.Valid {
			return false
		}
	}
	return true
}

func invalidFields(results map[FieldName]ValidationResult) []string {
	var names []string
	for _, name := range fieldOrder {
		if !results[name].Valid {
			names = append(names, string(name))
		}
	}
	return names
}
