package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSPHeader(t *testing.T) {
	csp := DefaultSecurityPolicy(nil).CSP.Header()
	assert.Contains(t, csp, "default-src 'self'")
	assert.Contains(t, csp, "script-src 'self';")
	assert.Contains(t, csp, "connect-src 'self' ws: wss:")
	assert.NotContains(t, csp, "unsafe-eval")

	assert.Empty(t, CSPPolicy{}.Header())
}

func TestCheckOrigin(t *testing.T) {
	testCases := []struct {
		name    string
		origin  string
		allowed []string
		wantErr bool
	}{
		{"no origin", "", nil, false},
		{"same host", "http://example.com", nil, false},
		{"same host any case", "http://EXAMPLE.com", nil, false},
		{"foreign", "http://evil.test", nil, true},
		{"allowed pattern", "https://app.partner.test", []string{"*.partner.test"}, false},
		{"malformed", "::", nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "http://example.com/api/validate", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			err := checkOrigin(req, tc.allowed)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCrossOriginPostIsForbidden(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/strength", strings.NewReader(`{"password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://evil.test")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
