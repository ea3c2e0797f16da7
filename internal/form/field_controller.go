package form

// State is the display state of one field.
type State int

const (
	StatePristine State = iota
	StateValid
	StateInvalid
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StatePristine:
		return "pristine"
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// FieldController binds one field to its rule and tracks its state. It writes
// only its own entry of the form's results.
type FieldController struct {
	field   *Field
	state   State
	rules   *Rules
	form    *FormState
	sink    NotificationSink
	results map[FieldName]ValidationResult
}

// Name returns the controlled field's name.
func (fc *FieldController) Name() FieldName { return fc.field.Name }

// State returns the current state.
func (fc *FieldController) State() State { return fc.state }

// Value returns the current raw value.
func (fc *FieldController) Value() Value { return fc.field.Value }

// Input handles a value-changing interaction. An invalid field has its error
// cleared optimistically and returns to pristine without being re-validated.
func (fc *FieldController) Input(value Value) {
	fc.field.Value = value

	switch fc.state {
	case StateInvalid:
		fc.sink.ClearFieldError(fc.field.Name)
		fc.toPristine()
	case StateValid:
		fc.toPristine()
	}

	if fc.field.Kind == KindPassword {
		fc.updateStrength(value.Text)
	}
}

// Blur handles focus loss and, for the consent checkbox, a change.
func (fc *FieldController) Blur() ValidationResult {
	return fc.evaluate()
}

// BlurWith stores value and then handles focus loss.
func (fc *FieldController) BlurWith(value Value) ValidationResult {
	fc.field.Value = value
	return fc.evaluate()
}

// Sync stores value without validating or notifying. The field keeps its
// state unless the value changed, in which case it returns to pristine.
func (fc *FieldController) Sync(value Value) {
	if fc.field.Value == value {
		return
	}
	fc.field.Value = value
	fc.toPristine()
}

// Change sets the checkbox value and validates it.
func (fc *FieldController) Change(value Value) ValidationResult {
	fc.field.Value = value
	return fc.evaluate()
}

// Validate re-runs the rule regardless of state and reports validity.
func (fc *FieldController) Validate() bool {
	return fc.evaluate().Valid
}

// Reset empties the value and returns the field to pristine. No sink calls
// are made.
func (fc *FieldController) Reset() {
	fc.field.clear()
	fc.toPristine()
}

func (fc *FieldController) evaluate() ValidationResult {
	ctx := RuleContext{Password: fc.form.password()}
	result := fc.rules.Validate(fc.field.Kind, fc.field.Value, ctx)
	fc.results[fc.field.Name] = result

	if result.Valid {
		fc.state = StateValid
		fc.sink.ClearFieldError(fc.field.Name)
	} else {
		fc.state = StateInvalid
		fc.sink.ShowFieldError(fc.field.Name, result.Message)
	}
	return result
}

func (fc *FieldController) toPristine() {
	fc.state = StatePristine
	fc.results[fc.field.Name] = ValidationResult{}
}

func (fc *FieldController) updateStrength(password string) {
	ss, ok := fc.sink.(StrengthSink)
	if !ok {
		return
	}
	if strength, scored := ScoreStrength(password); scored {
		ss.ShowStrength(strength)
	} else {
		ss.HideStrength()
	}
}
