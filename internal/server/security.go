package server

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	apperrors "github.com/conneroisu/formpulse/internal/errors"
	"github.com/conneroisu/formpulse/internal/logging"
)

// SecurityPolicy holds the response headers applied to every request and the
// origins allowed to make state-changing requests.
type SecurityPolicy struct {
	CSP            CSPPolicy
	HSTSMaxAge     int
	FrameOptions   string
	ReferrerPolicy string
	// AllowedOrigins are host patterns (path.Match syntax) accepted in the
	// Origin header of non-GET requests, in addition to the request's own host.
	AllowedOrigins []string
}

// CSPPolicy lists Content-Security-Policy sources per directive.
type CSPPolicy struct {
	DefaultSrc     []string
	ScriptSrc      []string
	StyleSrc       []string
	ImgSrc         []string
	ConnectSrc     []string
	FrameAncestors []string
	BaseURI        []string
	FormAction     []string
}

// DefaultSecurityPolicy allows only same-origin resources. The page has no
// inline script; inline styles stay allowed for the strength bar.
func DefaultSecurityPolicy(allowedOrigins []string) *SecurityPolicy {
	return &SecurityPolicy{
		CSP: CSPPolicy{
			DefaultSrc:     []string{"'self'"},
			ScriptSrc:      []string{"'self'"},
			StyleSrc:       []string{"'self'", "'unsafe-inline'"},
			ImgSrc:         []string{"'self'", "data:"},
			ConnectSrc:     []string{"'self'", "ws:", "wss:"},
			FrameAncestors: []string{"'none'"},
			BaseURI:        []string{"'self'"},
			FormAction:     []string{"'self'"},
		},
		HSTSMaxAge:     31536000,
		FrameOptions:   "DENY",
		ReferrerPolicy: "same-origin",
		AllowedOrigins: allowedOrigins,
	}
}

// Header renders the Content-Security-Policy value.
func (c CSPPolicy) Header() string {
	var directives []string
	add := func(name string, values []string) {
		if len(values) > 0 {
			directives = append(directives, name+" "+strings.Join(values, " "))
		}
	}
	add("default-src", c.DefaultSrc)
	add("script-src", c.ScriptSrc)
	add("style-src", c.StyleSrc)
	add("img-src", c.ImgSrc)
	add("connect-src", c.ConnectSrc)
	add("frame-ancestors", c.FrameAncestors)
	add("base-uri", c.BaseURI)
	add("form-action", c.FormAction)
	return strings.Join(directives, "; ")
}

// SecurityMiddleware applies policy headers and rejects cross-origin
// state-changing requests.
func SecurityMiddleware(policy *SecurityPolicy, logger logging.Logger) func(http.Handler) http.Handler {
	csp := policy.CSP.Header()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if csp != "" {
				h.Set("Content-Security-Policy", csp)
			}
			if policy.HSTSMaxAge > 0 && r.TLS != nil {
				h.Set("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", policy.HSTSMaxAge))
			}
			if policy.FrameOptions != "" {
				h.Set("X-Frame-Options", policy.FrameOptions)
			}
			if policy.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", policy.ReferrerPolicy)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")

			if r.Method != http.MethodGet && r.Method != http.MethodHead && r.Method != http.MethodOptions {
				if err := checkOrigin(r, policy.AllowedOrigins); err != nil {
					logger.Warn(r.Context(), err, "Security: Invalid origin",
						"origin", r.Header.Get("Origin"),
						"ip", r.RemoteAddr)
					http.Error(w, "Forbidden", http.StatusForbidden)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// checkOrigin accepts requests without an Origin header (non-browser
// clients), same-host origins and origins matching allowed.
func checkOrigin(r *http.Request, allowed []string) error {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return nil
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return apperrors.NewTransportError("INVALID_ORIGIN", fmt.Sprintf("malformed origin %q", origin), err)
	}
	if strings.EqualFold(u.Host, r.Host) {
		return nil
	}
	for _, pattern := range allowed {
		if ok, _ := path.Match(strings.ToLower(pattern), strings.ToLower(u.Host)); ok {
			return nil
		}
	}
	return apperrors.NewTransportError("INVALID_ORIGIN", fmt.Sprintf("origin %q is not allowed", origin), nil)
}
