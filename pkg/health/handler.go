package health

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Liveness reports that the process is up. It never runs checks.
func Liveness() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusOK, &Response{Status: StatusHealthy})
	})
}

// Readiness runs checks on every request and answers 503 when any of them fails.
func Readiness(checks Checks, opts ...Option) http.Handler {
	cfg := newConfig(opts...)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, failed := runChecks(r.Context(), checks, cfg)
		status := http.StatusOK
		if len(failed) > 0 {
			status = http.StatusServiceUnavailable
		}
		respond(w, r, status, resp)
	})
}

// respond writes JSON unless the client asks for plain text only.
// HEAD requests get the status and headers without a body.
func respond(w http.ResponseWriter, r *http.Request, status int, resp *Response) {
	h := w.Header()
	h.Set("Cache-Control", "no-store")

	text := prefersText(r)
	if text {
		h.Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		h.Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}

	if text {
		_, _ = w.Write([]byte(resp.Status + "\n"))
		return
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func prefersText(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return f == "text"
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/plain") && !strings.Contains(accept, "json")
}
