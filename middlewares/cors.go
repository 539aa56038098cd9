package middlewares

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/dmitrymomot/runway/internal"
)

// CORSConfig configures CORS.
type CORSConfig struct {
	// AllowOriginFunc, when set, decides alone which origins are allowed.
	AllowOriginFunc func(origin string) bool
	// AllowOrigins lists allowed origins. "*" allows any, and an entry such
	// as "https://*.example.com" allows every subdomain.
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	MaxAge           time.Duration
	AllowCredentials bool
}

// CORSOption configures CORSConfig.
type CORSOption func(*CORSConfig)

// WithCORSOrigins replaces the allowed origins.
func WithCORSOrigins(origins ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowOrigins = origins }
}

// WithCORSOriginFunc decides per origin, ignoring AllowOrigins.
func WithCORSOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowOriginFunc = fn }
}

// WithCORSMethods replaces the methods preflight responses allow.
func WithCORSMethods(methods ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowMethods = methods }
}

// WithCORSHeaders replaces the request headers preflight responses allow.
func WithCORSHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowHeaders = headers }
}

// WithCORSExposeHeaders lists response headers scripts may read.
func WithCORSExposeHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) { cfg.ExposeHeaders = headers }
}

// WithCORSCredentials allows cookies and authorization headers. The request
// origin is then echoed, never "*".
func WithCORSCredentials() CORSOption {
	return func(cfg *CORSConfig) { cfg.AllowCredentials = true }
}

// WithCORSMaxAge sets how long browsers cache a preflight answer. Zero omits the header.
func WithCORSMaxAge(d time.Duration) CORSOption {
	return func(cfg *CORSConfig) { cfg.MaxAge = d }
}

// CORS returns middleware that answers preflight requests with 204 and adds
// Access-Control headers to responses for allowed origins. Requests without
// an Origin header, or from origins not allowed, pass through untouched and
// the browser enforces the policy.
//
// Register it as global middleware: it answers preflights before routing, so
// routes need no OPTIONS handlers.
func CORS(opts ...CORSOption) internal.Middleware {
	cfg := CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:       12 * time.Hour,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	allowed := cfg.AllowOriginFunc
	if allowed == nil {
		allowed = originMatcher(cfg.AllowOrigins)
	}
	wildcard := cfg.AllowOriginFunc == nil && lo.Contains(cfg.AllowOrigins, "*")

	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge / time.Second))

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			origin := c.Header("Origin")
			if origin == "" || !allowed(origin) {
				return next(c)
			}

			h := c.ResponseWriter().Header()
			h.Add("Vary", "Origin")
			if wildcard && !cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			r := c.Request()
			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				if expose != "" {
					h.Set("Access-Control-Expose-Headers", expose)
				}
				return next(c)
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}

// originMatcher compares origins case-insensitively against exact entries
// and "scheme://*.domain" patterns.
func originMatcher(origins []string) func(string) bool {
	if lo.Contains(origins, "*") {
		return func(string) bool { return true }
	}

	type pattern struct{ prefix, suffix string }
	exact := make(map[string]bool, len(origins))
	var patterns []pattern
	for _, o := range origins {
		o = strings.ToLower(o)
		if scheme, domain, ok := strings.Cut(o, "://*."); ok {
			patterns = append(patterns, pattern{prefix: scheme + "://", suffix: "." + domain})
			continue
		}
		exact[o] = true
	}

	return func(origin string) bool {
		origin = strings.ToLower(origin)
		return exact[origin] || lo.ContainsBy(patterns, func(p pattern) bool {
			return len(origin) > len(p.prefix)+len(p.suffix) &&
				strings.HasPrefix(origin, p.prefix) && strings.HasSuffix(origin, p.suffix)
		})
	}
}
