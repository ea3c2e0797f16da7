package server

import (
	"context"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/conneroisu/formpulse/internal/errors"
	"github.com/conneroisu/formpulse/internal/form"
	"github.com/conneroisu/formpulse/internal/logging"
	"github.com/conneroisu/formpulse/internal/widgets"
)

// Session is the page state behind one websocket connection: a form engine
// and the widgets. Handle must be called from a single goroutine.
type Session struct {
	id        string
	form      *form.FormController
	widgets   *widgets.Session
	scheduler form.Scheduler
	emit      func(OutboundMessage)
	logger    logging.Logger

	successHide time.Duration
	failureCue  time.Duration
}

// SessionOptions configures NewSession.
type SessionOptions struct {
	ID          string
	Widgets     *widgets.Session
	Catalog     *form.Catalog
	Scheduler   form.Scheduler
	SuccessHide time.Duration
	FailureCue  time.Duration
	Logger      logging.Logger
	// Emit delivers an outbound message. It may be called from scheduler
	// goroutines and must be safe for concurrent use.
	Emit func(OutboundMessage)
}

// NewSession wires a form engine to emit through a sink.
func NewSession(opts SessionOptions) *Session {
	if opts.Scheduler == nil {
		opts.Scheduler = form.NoopScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Emit == nil {
		opts.Emit = func(OutboundMessage) {}
	}

	s := &Session{
		id:          opts.ID,
		widgets:     opts.Widgets,
		scheduler:   opts.Scheduler,
		emit:        opts.Emit,
		logger:      opts.Logger.With("session", opts.ID),
		successHide: opts.SuccessHide,
		failureCue:  opts.FailureCue,
	}
	s.form = form.NewFormController(&sessionSink{s: s},
		form.WithRules(form.NewRules(opts.Catalog)),
		form.WithLogger(s.logger),
	)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Form exposes the engine for inspection.
func (s *Session) Form() *form.FormController { return s.form }

// SendState emits the current widget state.
func (s *Session) SendState(newHigh bool) {
	if s.widgets == nil {
		return
	}
	snap := s.widgets.Snapshot()
	snap.NewHighest = newHigh
	s.send(OutboundMessage{Type: MsgWidgetState, Widgets: &snap})
}

// Handle processes one inbound frame. Protocol and storage problems are
// reported to the client and returned; none of them end the session.
func (s *Session) Handle(ctx context.Context, data []byte) error {
	err := s.handle(ctx, data)
	if err != nil {
		s.logger.Warn(ctx, err, "Message rejected")
		s.send(errorMessage(err))
	}
	return err
}

func (s *Session) handle(ctx context.Context, data []byte) error {
	msg, err := DecodeInbound(data)
	if err != nil {
		return err
	}

	switch msg.Type {
	case TypeField, TypeSubmit:
		ev, err := msg.FormEvent()
		if err != nil {
			return err
		}
		return s.form.Dispatch(ev)
	case TypeSync:
		values, err := msg.SyncValues()
		if err != nil {
			return err
		}
		s.form.Sync(values)
		return nil
	case TypeWidget:
		return s.handleWidget(ctx, msg)
	default:
		return apperrors.NewProtocolError("UNKNOWN_TYPE", fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (s *Session) handleWidget(ctx context.Context, msg InboundMessage) error {
	if s.widgets == nil {
		return apperrors.NewProtocolError("NO_WIDGETS", "session has no widgets")
	}

	var (
		newHigh bool
		err     error
	)
	switch msg.Widget {
	case "counter":
		c := s.widgets.Counter
		switch msg.Action {
		case "increment":
			newHigh, err = c.Increment(ctx)
		case "decrement":
			newHigh, err = c.Decrement(ctx)
		case "reset":
			newHigh, err = c.Reset(ctx)
		default:
			return unknownAction(msg)
		}
	case "key":
		var handled bool
		handled, newHigh, err = s.widgets.Counter.HandleKey(ctx, msg.Value)
		if !handled {
			return nil
		}
	case "theme":
		switch msg.Action {
		case "toggle":
			_, err = s.widgets.Theme.Toggle(ctx)
		case "system":
			s.widgets.Theme.ApplySystemPreference(msg.Value == "dark")
		default:
			return unknownAction(msg)
		}
	case "tabs":
		if msg.Action != "switch" {
			return unknownAction(msg)
		}
		if err := s.widgets.Tabs.Switch(msg.Value); err != nil {
			return apperrors.NewProtocolError("UNKNOWN_TAB", err.Error())
		}
	case "faq":
		if msg.Action != "toggle" {
			return unknownAction(msg)
		}
		i, convErr := strconv.Atoi(msg.Value)
		if convErr != nil || !s.widgets.Accordion.Toggle(i) {
			return apperrors.NewProtocolError("UNKNOWN_ITEM", fmt.Sprintf("no FAQ item %q", msg.Value))
		}
	default:
		return apperrors.NewProtocolError("UNKNOWN_WIDGET", fmt.Sprintf("unknown widget %q", msg.Widget))
	}

	// Session state already moved even if persisting failed.
	s.SendState(newHigh)
	if err != nil {
		return apperrors.NewStorageError("PERSIST", "could not save widget state", err)
	}
	return nil
}

func unknownAction(msg InboundMessage) error {
	return apperrors.NewProtocolError("UNKNOWN_ACTION", fmt.Sprintf("unknown %s action %q", msg.Widget, msg.Action))
}

func (s *Session) send(msg OutboundMessage) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.emit(msg)
}

// sessionSink turns engine notifications into outbound messages.
type sessionSink struct {
	s *Session
}

func (k *sessionSink) ShowFieldError(name form.FieldName, message string) {
	k.s.send(OutboundMessage{Type: MsgFieldError, Field: string(name), Message: message})
}

func (k *sessionSink) ClearFieldError(name form.FieldName) {
	k.s.send(OutboundMessage{Type: MsgFieldClear, Field: string(name)})
}

func (k *sessionSink) ShowFormSuccess() {
	k.s.send(OutboundMessage{Type: MsgFormSuccess})
	k.s.scheduler.After(k.s.successHide, func() {
		k.s.send(OutboundMessage{Type: MsgFormSuccessHide})
	})
}

func (k *sessionSink) ShowFormFailureCue() {
	k.s.send(OutboundMessage{Type: MsgFormFailure})
	k.s.scheduler.After(k.s.failureCue, func() {
		k.s.send(OutboundMessage{Type: MsgFormFailureEnd})
	})
}

func (k *sessionSink) ShowStrength(strength form.PasswordStrength) {
	k.s.send(OutboundMessage{Type: MsgStrength, Strength: &strength})
}

func (k *sessionSink) HideStrength() {
	k.s.send(OutboundMessage{Type: MsgStrengthHide})
}

func (k *sessionSink) ResetForm() {
	k.s.send(OutboundMessage{Type: MsgFormReset})
}
