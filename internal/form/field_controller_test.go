package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestForm(t *testing.T) (*FormController, *RecordingSink) {
	t.Helper()
	sink := NewRecordingSink()
	return NewFormController(sink), sink
}

func mustField(t *testing.T, fc *FormController, name FieldName) *FieldController {
	t.Helper()
	c, err := fc.Field(name)
	require.NoError(t, err)
	return c
}

func TestFieldControllerInitialState(t *testing.T) {
	fc, sink := newTestForm(t)

	for _, name := range FieldNames() {
		assert.Equal(t, StatePristine, fc.State(name), name)
		assert.Equal(t, ValidationResult{}, fc.Result(name), name)
	}
	assert.Len(t, fc.Results(), 7)
	assert.False(t, fc.Submittable())
	assert.Empty(t, sink.Calls())
}

func TestFieldControllerBlurTransitions(t *testing.T) {
	fc, sink := newTestForm(t)
	email := mustField(t, fc, FieldEmail)

	email.Input(TextValue("a@b"))
	result := email.Blur()
	assert.False(t, result.Valid)
	assert.Equal(t, StateInvalid, email.State())
	assert.Equal(t, "Please enter a valid email address.", sink.Displayed()[FieldEmail])

	email.Input(TextValue("a@b.co"))
	assert.Equal(t, StatePristine, email.State())
	assert.NotContains(t, sink.Displayed(), FieldEmail)

	result = email.Blur()
	assert.True(t, result.Valid)
	assert.Equal(t, StateValid, email.State())
	assert.True(t, fc.Result(FieldEmail).Valid)
}

func TestFieldControllerInputDoesNotValidate(t *testing.T) {
	fc, sink := newTestForm(t)
	name := mustField(t, fc, FieldFullName)

	name.Blur()
	require.Equal(t, StateInvalid, name.State())
	sink.Reset()

	// Still invalid text, but input only clears optimistically.
	name.Input(TextValue("J"))
	assert.Equal(t, StatePristine, name.State())
	assert.Equal(t, []Notification{{Kind: NotifyFieldClear, Field: FieldFullName}}, sink.Calls())

	// A second keystroke from pristine makes no display calls.
	name.Input(TextValue("J1"))
	assert.Len(t, sink.Calls(), 1)
}

func TestFieldControllerValidFieldGoesStaleOnInput(t *testing.T) {
	fc, sink := newTestForm(t)
	phone := mustField(t, fc, FieldPhone)

	phone.Input(TextValue("+12345678901"))
	require.True(t, phone.Validate())
	sink.Reset()

	phone.Input(TextValue("+1234567890"))
	assert.Equal(t, StatePristine, phone.State())
	assert.False(t, fc.Result(FieldPhone).Valid)
	assert.Empty(t, sink.Calls())
}

func TestFieldControllerPasswordStrength(t *testing.T) {
	fc, sink := newTestForm(t)
	password := mustField(t, fc, FieldPassword)

	password.Input(TextValue("abc"))
	strength, shown := sink.Strength()
	require.True(t, shown)
	assert.Equal(t, 1, strength.Score)
	assert.Equal(t, LabelVeryWeak, strength.Label)

	password.Input(TextValue("Abcdefg1"))
	strength, shown = sink.Strength()
	require.True(t, shown)
	assert.Equal(t, 4, strength.Score)
	assert.Equal(t, LabelGood, strength.Label)

	password.Input(TextValue(""))
	_, shown = sink.Strength()
	assert.False(t, shown)
}

func TestFieldControllerStrengthUpdatesWhileInvalid(t *testing.T) {
	fc, sink := newTestForm(t)
	password := mustField(t, fc, FieldPassword)

	password.Input(TextValue("abc"))
	password.Blur()
	require.Equal(t, StateInvalid, password.State())

	password.Input(TextValue("abcD"))
	strength, shown := sink.Strength()
	require.True(t, shown)
	assert.Equal(t, 2, strength.Score)
}

func TestFieldControllerConsentChange(t *testing.T) {
	fc, sink := newTestForm(t)
	terms := mustField(t, fc, FieldTerms)

	result := terms.Change(BoolValue(false))
	assert.False(t, result.Valid)
	assert.Equal(t, "You must agree to the terms and conditions.", sink.Displayed()[FieldTerms])

	result = terms.Change(BoolValue(true))
	assert.True(t, result.Valid)
	assert.Equal(t, StateValid, terms.State())
	assert.NotContains(t, sink.Displayed(), FieldTerms)
}

func TestConfirmPasswordTracksLivePassword(t *testing.T) {
	fc, _ := newTestForm(t)
	password := mustField(t, fc, FieldPassword)
	confirm := mustField(t, fc, FieldConfirmPassword)

	confirm.Input(TextValue("Abcdefg1"))
	password.Input(TextValue("Abcdefg1"))
	assert.True(t, confirm.Validate())

	// Changing the password after the confirmation invalidates it.
	password.Input(TextValue("Abcdefg2"))
	assert.False(t, confirm.Validate())
	assert.Equal(t, CodeConfirmMismatch, fc.Result(FieldConfirmPassword).Code)
}

func TestFieldControllerValidateIdempotent(t *testing.T) {
	fc, _ := newTestForm(t)
	age := mustField(t, fc, FieldAge)
	age.Input(TextValue("abc"))

	age.Validate()
	first := fc.Result(FieldAge)
	age.Validate()
	second := fc.Result(FieldAge)

	assert.Equal(t, first, second)
	assert.Equal(t, StateInvalid, age.State())
}

func TestFieldControllerWithoutStrengthSink(t *testing.T) {
	fc := NewFormController(NopSink{})
	password := mustField(t, fc, FieldPassword)

	assert.NotPanics(t, func() { password.Input(TextValue("Abcdefg1")) })
	assert.Equal(t, TextValue("Abcdefg1"), password.Value())
}
