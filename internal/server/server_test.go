package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/conneroisu/formpulse/internal/config"
	"github.com/conneroisu/formpulse/internal/form"
	"github.com/conneroisu/formpulse/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Driver = string(store.DriverMemory)
	cfg.Form.SuccessHide = 10 * time.Millisecond
	cfg.Form.FailureCue = 10 * time.Millisecond
	return New(cfg, store.NewMemory(), nil)
}

func serve(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexRendersPage(t *testing.T) {
	s := newTestServer(t)
	rec := serve(t, s, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="registrationForm"`)
	assert.Contains(t, body, `id="counterDisplay"`)
	assert.Contains(t, body, `data-ws="/ws"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestStaticScript(t *testing.T) {
	s := newTestServer(t)
	rec := serve(t, s, http.MethodGet, "/static/app.js", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "WebSocket")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := serve(t, s, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "healthy", got.Status)
	assert.Equal(t, "memory", got.Storage)
	assert.Equal(t, 0, got.Sessions)
}

func TestValidateAPI(t *testing.T) {
	s := newTestServer(t)

	t.Run("valid", func(t *testing.T) {
		rec := serve(t, s, http.MethodPost, "/api/validate", `{
			"fullName": "Ada Lovelace",
			"email": "ada@example.com",
			"phone": "+15551234567",
			"password": "Str0ng!Pass",
			"confirmPassword": "Str0ng!Pass",
			"age": 36,
			"terms": true
		}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var report form.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.True(t, report.Valid)
		assert.Empty(t, report.Invalid())
	})

	t.Run("invalid", func(t *testing.T) {
		rec := serve(t, s, http.MethodPost, "/api/validate", `{"email": "nope", "age": "9"}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var report form.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.False(t, report.Valid)
		assert.Equal(t, form.CodeEmailPattern, report.Fields[form.FieldEmail].Code)
		assert.Len(t, report.Invalid(), len(form.FieldNames()))
	})

	t.Run("malformed", func(t *testing.T) {
		rec := serve(t, s, http.MethodPost, "/api/validate", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := serve(t, s, http.MethodPost, "/api/validate", `{"nickname":"ada"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader("email=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestValidateAPISpanish(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/validate?lang=es", strings.NewReader(`{"email":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var report form.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, form.NewCatalog("es").Message(form.CodeEmailPattern), report.Fields[form.FieldEmail].Message)
}

func TestValidateAPILanguageOrder(t *testing.T) {
	es := form.NewCatalog("es").Message(form.CodeEmailPattern)
	en := form.NewCatalog("en").Message(form.CodeEmailPattern)

	testCases := []struct {
		name   string
		path   string
		accept string
		want   string
	}{
		{"query beats header", "/api/validate?lang=es", "en-US,en;q=0.9", es},
		{"header without query", "/api/validate", "es-MX,es;q=0.8", es},
		{"unsupported header falls back", "/api/validate", "fr-FR", en},
		{"english query beats spanish header", "/api/validate?lang=en", "es", en},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			req := httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader(`{"email":"nope"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept-Language", tc.accept)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			var report form.Report
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
			assert.Equal(t, tc.want, report.Fields[form.FieldEmail].Message)
		})
	}
}

func TestStrengthAPI(t *testing.T) {
	s := newTestServer(t)

	rec := serve(t, s, http.MethodPost, "/api/strength", `{"password":"Str0ng!Pass"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got form.PasswordStrength
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 5, got.Score)
	assert.Equal(t, "green", got.Tone)

	rec = serve(t, s, http.MethodPost, "/api/strength", `{"password":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"suppressed":true}`, rec.Body.String())
}

// wsClient is a test peer for the websocket endpoint.
type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, ctx context.Context, url string) *wsClient {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(ctx context.Context, frame string) {
	c.t.Helper()
	require.NoError(c.t, c.conn.Write(ctx, websocket.MessageText, []byte(frame)))
}

func (c *wsClient) next(ctx context.Context) OutboundMessage {
	c.t.Helper()
	_, data, err := c.conn.Read(ctx)
	require.NoError(c.t, err)
	var msg OutboundMessage
	require.NoError(c.t, json.Unmarshal(data, &msg))
	return msg
}

// until reads messages up to and including the first of type typ.
func (c *wsClient) until(ctx context.Context, typ string) []OutboundMessage {
	c.t.Helper()
	var msgs []OutboundMessage
	for {
		msg := c.next(ctx)
		msgs = append(msgs, msg)
		if msg.Type == typ {
			return msgs
		}
	}
}

func startWebsocketServer(t *testing.T) (*Server, *httptest.Server, context.Context) {
	t.Helper()
	s := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		s.Hub().Run(ctx)
	}()
	ts := httptest.NewServer(s.Handler())

	t.Cleanup(func() {
		s.Hub().Stop()
		ts.Close()
		cancel()
		<-hubDone
	})
	return s, ts, ctx
}

func TestWebsocketSubmitFlow(t *testing.T) {
	_, ts, ctx := startWebsocketServer(t)
	c := dial(t, ctx, ts.URL)
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	first := c.next(ctx)
	require.Equal(t, MsgWidgetState, first.Type)
	require.NotNil(t, first.Widgets)

	c.send(ctx, `{"type":"field","event":"input","field":"fullName","value":"Ada Lovelace"}`)
	c.send(ctx, `{"type":"field","event":"input","field":"email","value":"ada@example.com"}`)
	c.send(ctx, `{"type":"field","event":"input","field":"phone","value":"+15551234567"}`)
	c.send(ctx, `{"type":"field","event":"input","field":"password","value":"Str0ng!Pass"}`)
	c.send(ctx, `{"type":"field","event":"input","field":"confirmPassword","value":"Str0ng!Pass"}`)
	c.send(ctx, `{"type":"field","event":"input","field":"age","value":"36"}`)
	c.send(ctx, `{"type":"field","event":"change","field":"terms","value":"true"}`)
	c.send(ctx, `{"type":"submit"}`)

	msgs := c.until(ctx, MsgFormReset)
	var types []string
	for _, m := range msgs {
		types = append(types, m.Type)
	}
	assert.Contains(t, types, MsgStrength)
	assert.Contains(t, types, MsgFormSuccess)
	assert.NotContains(t, types, MsgFieldError)

	hide := c.next(ctx)
	assert.Equal(t, MsgFormSuccessHide, hide.Type)
}

func TestWebsocketSingleFieldError(t *testing.T) {
	_, ts, ctx := startWebsocketServer(t)
	c := dial(t, ctx, ts.URL)
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	c.until(ctx, MsgWidgetState)

	c.send(ctx, `{"type":"field","event":"input","field":"email","value":"not-an-email"}`)
	c.send(ctx, `{"type":"field","event":"blur","field":"email"}`)
	// A widget round trip marks the end of the email responses.
	c.send(ctx, `{"type":"widget","widget":"tabs","action":"switch","value":"about"}`)

	msgs := c.until(ctx, MsgWidgetState)
	var fieldErrors []OutboundMessage
	for _, m := range msgs {
		if m.Type == MsgFieldError {
			fieldErrors = append(fieldErrors, m)
		}
	}
	require.Len(t, fieldErrors, 1)
	assert.Equal(t, "email", fieldErrors[0].Field)
	assert.Equal(t, "about", msgs[len(msgs)-1].Widgets.ActiveTab)
}

func TestWebsocketBlurAfterReconnect(t *testing.T) {
	_, ts, ctx := startWebsocketServer(t)
	c := dial(t, ctx, ts.URL)
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	c.until(ctx, MsgWidgetState)

	// A fresh session sees the value the page still shows.
	c.send(ctx, `{"type":"field","event":"blur","field":"email","value":"ada@example.com"}`)
	msg := c.next(ctx)
	assert.Equal(t, MsgFieldClear, msg.Type)
	assert.Equal(t, "email", msg.Field)

	c.send(ctx, `{"type":"sync","values":{"fullName":"Ada Lovelace","email":"ada@example.com",`+
		`"phone":"+15551234567","password":"Str0ng!Pass","confirmPassword":"Str0ng!Pass","age":"36","terms":"true"}}`)
	c.send(ctx, `{"type":"submit"}`)

	msgs := c.until(ctx, MsgFormReset)
	var types []string
	for _, m := range msgs {
		types = append(types, m.Type)
	}
	assert.Contains(t, types, MsgFormSuccess)
	assert.NotContains(t, types, MsgFieldError)
	c.until(ctx, MsgFormSuccessHide)
}

func TestWebsocketLargeFrameKeepsSession(t *testing.T) {
	_, ts, ctx := startWebsocketServer(t)
	c := dial(t, ctx, ts.URL)
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	c.until(ctx, MsgWidgetState)

	long := strings.Repeat("a", 16<<10)
	c.send(ctx, `{"type":"field","event":"input","field":"fullName","value":"`+long+`"}`)
	c.send(ctx, `{"type":"widget","widget":"counter","action":"increment"}`)

	msg := c.until(ctx, MsgWidgetState)
	assert.Equal(t, 1, msg[len(msg)-1].Widgets.Count)
}

func TestWebsocketProtocolErrorKeepsSession(t *testing.T) {
	_, ts, ctx := startWebsocketServer(t)
	c := dial(t, ctx, ts.URL)
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	c.until(ctx, MsgWidgetState)

	c.send(ctx, `not json`)
	msg := c.next(ctx)
	assert.Equal(t, MsgError, msg.Type)
	assert.Equal(t, "BAD_JSON", msg.Code)

	require.NoError(t, c.conn.Write(ctx, websocket.MessageBinary, []byte{0x01}))
	msg = c.next(ctx)
	assert.Equal(t, "BINARY_FRAME", msg.Code)

	c.send(ctx, `{"type":"widget","widget":"counter","action":"increment"}`)
	msg = c.next(ctx)
	require.Equal(t, MsgWidgetState, msg.Type)
	assert.Equal(t, 1, msg.Widgets.Count)
}

func TestWebsocketSharedHighScore(t *testing.T) {
	s, ts, ctx := startWebsocketServer(t)

	a := dial(t, ctx, ts.URL)
	a.until(ctx, MsgWidgetState)
	a.send(ctx, `{"type":"widget","widget":"counter","action":"increment"}`)
	a.send(ctx, `{"type":"widget","widget":"counter","action":"increment"}`)
	a.next(ctx)
	second := a.next(ctx)
	require.Equal(t, 2, second.Widgets.HighScore)
	require.NoError(t, a.conn.Close(websocket.StatusNormalClosure, ""))

	b := dial(t, ctx, ts.URL)
	defer b.conn.Close(websocket.StatusNormalClosure, "")
	first := b.next(ctx)
	assert.Equal(t, 2, first.Widgets.HighScore)
	assert.Equal(t, 0, first.Widgets.Count)

	assert.Eventually(t, func() bool { return s.Hub().Count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t)
	s.config.Server.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
