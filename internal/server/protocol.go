package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/conneroisu/formpulse/internal/errors"
	"github.com/conneroisu/formpulse/internal/form"
	"github.com/conneroisu/formpulse/internal/widgets"
)

// Inbound message types.
const (
	TypeField  = "field"
	TypeSubmit = "submit"
	TypeWidget = "widget"
	// TypeSync carries every field value the page currently shows. Clients
	// send it when a connection opens.
	TypeSync = "sync"
)

// Outbound message types.
const (
	MsgFieldError      = "field-error"
	MsgFieldClear      = "field-clear"
	MsgStrength        = "strength"
	MsgStrengthHide    = "strength-hide"
	MsgFormSuccess     = "form-success"
	MsgFormSuccessHide = "form-success-hide"
	MsgFormFailure     = "form-failure"
	MsgFormFailureEnd  = "form-failure-end"
	MsgFormReset       = "form-reset"
	MsgWidgetState     = "widget-state"
	MsgError           = "error"
)

var errBinaryFrame = apperrors.NewProtocolError("BINARY_FRAME", "only text frames are accepted")

// InboundMessage is a browser to server message.
type InboundMessage struct {
	Type   string `json:"type"`
	Event  string `json:"event,omitempty"`
	Field  string `json:"field,omitempty"`
	Value  string `json:"value,omitempty"`
	Widget string `json:"widget,omitempty"`
	Action string `json:"action,omitempty"`
	// Values holds field values of a sync message.
	Values map[string]string `json:"values,omitempty"`

	// hasValue records whether the frame carried a value key at all.
	hasValue bool
}

// OutboundMessage is a server to browser message.
type OutboundMessage struct {
	Type      string                 `json:"type"`
	Field     string                 `json:"field,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Code      string                 `json:"code,omitempty"`
	Strength  *form.PasswordStrength `json:"strength,omitempty"`
	Widgets   *widgets.Snapshot      `json:"widgets,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// DecodeInbound parses one websocket text frame.
func DecodeInbound(data []byte) (InboundMessage, error) {
	var frame struct {
		InboundMessage
		Value *string `json:"value"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return InboundMessage{}, apperrors.NewProtocolError("BAD_JSON", fmt.Sprintf("malformed message: %v", err))
	}
	msg := frame.InboundMessage
	if frame.Value != nil {
		msg.Value = *frame.Value
		msg.hasValue = true
	}
	if msg.Type == "" {
		return msg, apperrors.NewProtocolError("MISSING_TYPE", "message has no type")
	}
	return msg, nil
}

// FormEvent converts a field or submit message into an engine event.
func (m InboundMessage) FormEvent() (form.Event, error) {
	switch m.Type {
	case TypeSubmit:
		return form.Event{Kind: form.EventSubmit}, nil
	case TypeField:
	default:
		return form.Event{}, apperrors.NewProtocolError("NOT_FORM_EVENT", fmt.Sprintf("message type %q is not a form event", m.Type))
	}

	kind, ok := form.ParseEventKind(m.Event)
	if !ok || kind == form.EventSubmit {
		return form.Event{}, apperrors.NewProtocolError("UNKNOWN_EVENT", fmt.Sprintf("unknown field event %q", m.Event))
	}
	name, err := form.ParseFieldName(m.Field)
	if err != nil {
		return form.Event{}, apperrors.NewProtocolError("UNKNOWN_FIELD", err.Error())
	}

	return form.Event{
		Kind:     kind,
		Field:    name,
		Value:    wireValue(name, m.Value),
		HasValue: kind == form.EventBlur && m.hasValue,
	}, nil
}

// SyncValues converts a sync message into engine values.
func (m InboundMessage) SyncValues() (map[form.FieldName]form.Value, error) {
	values := make(map[form.FieldName]form.Value, len(m.Values))
	for field, raw := range m.Values {
		name, err := form.ParseFieldName(field)
		if err != nil {
			return nil, apperrors.NewProtocolError("UNKNOWN_FIELD", err.Error())
		}
		values[name] = wireValue(name, raw)
	}
	return values, nil
}

func wireValue(name form.FieldName, raw string) form.Value {
	if form.KindOf(name) == form.KindConsent {
		return form.BoolValue(raw == "true")
	}
	return form.TextValue(raw)
}

func errorMessage(err error) OutboundMessage {
	msg := OutboundMessage{Type: MsgError, Message: err.Error(), Timestamp: time.Now()}
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		msg.Code = ae.Code
		msg.Message = ae.Message
	}
	return msg
}
