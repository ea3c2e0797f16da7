// Package form implements the registration form engine: per-field rules, the
// password strength scorer, per-field state machines and the form controller
// that aggregates them on submit.
//
// The engine is headless. Hosts feed it abstract interaction events (input,
// blur, change, submit) and receive feedback through a NotificationSink, so the
// same engine drives the websocket page host and the CLI.
package form

import (
	"errors"
	"fmt"
)

// FieldName identifies one of the seven fixed form fields.
type FieldName string

const (
	FieldFullName        FieldName = "fullName"
	FieldEmail           FieldName = "email"
	FieldPhone           FieldName = "phone"
	FieldPassword        FieldName = "password"
	FieldConfirmPassword FieldName = "confirmPassword"
	FieldAge             FieldName = "age"
	FieldTerms           FieldName = "terms"
)

// fieldOrder is the fixed evaluation order of the form.
var fieldOrder = [...]FieldName{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldPassword,
	FieldConfirmPassword,
	FieldAge,
	FieldTerms,
}

// FieldNames returns the seven field names in form order.
func FieldNames() []FieldName {
	names := make([]FieldName, len(fieldOrder))
	copy(names, fieldOrder[:])
	return names
}

// ErrUnknownField is wrapped by every error about a field name outside the
// fixed seven.
var ErrUnknownField = errors.New("unknown field")

// ParseFieldName converts a wire name into a FieldName.
func ParseFieldName(s string) (FieldName, error) {
	for _, name := range fieldOrder {
		if string(name) == s {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownField, s)
}

// Kind is the validation kind of a field.
type Kind int

const (
	KindText Kind = iota
	KindEmail
	KindPhone
	KindPassword
	KindConfirmPassword
	KindNumeric
	KindConsent
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindEmail:
		return "email"
	case KindPhone:
		return "phone"
	case KindPassword:
		return "password"
	case KindConfirmPassword:
		return "confirm-password"
	case KindNumeric:
		return "numeric"
	case KindConsent:
		return "boolean-consent"
	default:
		return "unknown"
	}
}

// KindOf returns the validation kind bound to a field name.
func KindOf(name FieldName) Kind {
	switch name {
	case FieldEmail:
		return KindEmail
	case FieldPhone:
		return KindPhone
	case FieldPassword:
		return KindPassword
	case FieldConfirmPassword:
		return KindConfirmPassword
	case FieldAge:
		return KindNumeric
	case FieldTerms:
		return KindConsent
	default:
		return KindText
	}
}

// Value is a field's raw value. Text kinds use Text, the consent checkbox
// uses Checked.
type Value struct {
	Text    string
	Checked bool
}

// TextValue wraps a string value.
func TextValue(s string) Value { return Value{Text: s} }

// BoolValue wraps a checkbox value.
func BoolValue(b bool) Value { return Value{Checked: b} }

// Field is one live form field.
type Field struct {
	Name  FieldName
	Kind  Kind
	Value Value
}

func newField(name FieldName) *Field {
	return &Field{Name: name, Kind: KindOf(name)}
}

// clear empties the field value
func (f *Field) clear() {
	f.Value = Value{}
}
