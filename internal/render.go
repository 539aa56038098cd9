package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// DetailedRenderer renders the developer-mode error body.
type DetailedRenderer interface {
	Render(ctx context.Context, r *http.Request, ec *ErrorContext) (contentType string, body []byte, err error)
}

// DetailedRendererFunc adapts a function to DetailedRenderer.
type DetailedRendererFunc func(ctx context.Context, r *http.Request, ec *ErrorContext) (string, []byte, error)

// Render implements DetailedRenderer.
func (f DetailedRendererFunc) Render(ctx context.Context, r *http.Request, ec *ErrorContext) (string, []byte, error) {
	return f(ctx, r, ec)
}

const (
	contentTypeJSON    = "application/json; charset=utf-8"
	contentTypeProblem = "application/problem+json"
	contentTypeHTML    = "text/html; charset=utf-8"
	contentTypeText    = "text/plain; charset=utf-8"
)

// headerer is implemented by failures that contribute response headers, such as Allow.
type headerer interface {
	Header() http.Header
}

// Render replaces whatever resp holds with the error response for ec.
// It reports false when resp is already streaming and cannot be replaced.
func (c *Capturer) Render(ec *ErrorContext, r *http.Request, resp *Response) bool {
	if !resp.Reset() {
		return false
	}

	h := resp.Header()
	var hd headerer
	if errors.As(ec.err, &hd) {
		for k, v := range hd.Header() {
			h[k] = v
		}
	}
	h.Set("X-Error-Id", ec.ErrorID)
	h.Set("Cache-Control", "no-store")

	contentType, body := c.body(ec, r)
	h.Set("Content-Type", contentType)
	resp.WriteHeader(ec.Status)
	if r != nil && r.Method == http.MethodHead {
		return true
	}
	if _, err := resp.Write(body); err != nil {
		c.logger.Warn("failed to write error body", "error_id", ec.ErrorID, "error", err)
	}
	return true
}

func (c *Capturer) body(ec *ErrorContext, r *http.Request) (string, []byte) {
	if c.developer {
		ctx := context.Background()
		if r != nil {
			ctx = r.Context()
		}
		contentType, body, err := c.renderDetailed(ctx, r, ec)
		if err == nil {
			return contentType, body
		}
		c.logger.WarnContext(ctx, "detailed error renderer failed", "error_id", ec.ErrorID, "error", err)
	}
	return c.production(ec)
}

func (c *Capturer) renderDetailed(ctx context.Context, r *http.Request, ec *ErrorContext) (contentType string, body []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("renderer panicked: %v", rec)
		}
	}()
	return c.detailed.Render(ctx, r, ec)
}

// production renders status and error id only.
func (c *Capturer) production(ec *ErrorContext) (string, []byte) {
	title := http.StatusText(ec.Status)
	if c.runtime.IsCLI() {
		return contentTypeText, fmt.Appendf(nil, "%d %s (error id: %s)\n", ec.Status, title, ec.ErrorID)
	}

	body, err := json.Marshal(struct {
		Title   string `json:"title"`
		ErrorID string `json:"error_id"`
		Status  int    `json:"status"`
	}{title, ec.ErrorID, ec.Status})
	if err != nil {
		return contentTypeText, fmt.Appendf(nil, "%d %s (error id: %s)\n", ec.Status, title, ec.ErrorID)
	}
	return contentTypeJSON, body
}

// detailedRenderer is the built-in developer renderer: an HTML page for browsers,
// problem JSON for API clients and plain text under RuntimeCLI.
type detailedRenderer struct {
	runtime RuntimeType
}

// NewDetailedRenderer returns the built-in developer-mode renderer.
func NewDetailedRenderer(runtime RuntimeType) DetailedRenderer {
	return detailedRenderer{runtime: runtime.orDefault()}
}

func (d detailedRenderer) Render(ctx context.Context, r *http.Request, ec *ErrorContext) (string, []byte, error) {
	switch {
	case d.runtime.IsCLI():
		return contentTypeText, detailedText(ec), nil
	case r != nil && strings.Contains(r.Header.Get("Accept"), "text/html"):
		var buf bytes.Buffer
		if err := errorPage(ec).Render(ctx, &buf); err != nil {
			return "", nil, err
		}
		return contentTypeHTML, buf.Bytes(), nil
	default:
		body, err := json.Marshal(newProblem(ec))
		return contentTypeProblem, body, err
	}
}

// problem is an RFC 9457 problem document extended with the failure details.
type problem struct {
	Type     string      `json:"type"`
	Title    string      `json:"title"`
	Detail   string      `json:"detail"`
	Instance string      `json:"instance,omitempty"`
	ErrorID  string      `json:"error_id"`
	Kind     string      `json:"kind"`
	Origin   string      `json:"origin,omitempty"`
	Route    string      `json:"route,omitempty"`
	Stack    string      `json:"stack,omitempty"`
	Chain    []chainLink `json:"chain,omitempty"`
	Status   int         `json:"status"`
}

type chainLink struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newProblem(ec *ErrorContext) problem {
	p := problem{
		Type:     "about:blank",
		Title:    http.StatusText(ec.Status),
		Status:   ec.Status,
		Detail:   ec.Failure.Message,
		Instance: ec.Request.Path,
		ErrorID:  ec.ErrorID,
		Kind:     ec.Failure.Kind,
		Origin:   ec.Failure.Origin,
		Route:    ec.Request.Route,
		Stack:    ec.Failure.Stack,
	}
	for _, l := range ec.Failure.Chain {
		p.Chain = append(p.Chain, chainLink{Kind: l.Kind, Message: l.Message})
	}
	return p
}

func detailedText(ec *ErrorContext) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%d %s (error id: %s)\n", ec.Status, http.StatusText(ec.Status), ec.ErrorID)
	fmt.Fprintf(&b, "%s: %s\n", ec.Failure.Kind, ec.Failure.Message)
	if ec.Failure.Origin != "" {
		fmt.Fprintf(&b, "at %s\n", ec.Failure.Origin)
	}
	if len(ec.Failure.Chain) > 1 {
		b.WriteString("caused by:\n")
		for _, l := range ec.Failure.Chain[1:] {
			fmt.Fprintf(&b, "  %s: %s\n", l.Kind, l.Message)
		}
	}
	if ec.Failure.Stack != "" {
		b.WriteString("\n")
		b.WriteString(ec.Failure.Stack)
		b.WriteString("\n")
	}
	return b.Bytes()
}

func statusLine(code int) string {
	return strconv.Itoa(code) + " " + http.StatusText(code)
}

type errorFact struct{ label, value string }

// errorFacts lists the non-empty request and failure details shown on the error page.
func errorFacts(ec *ErrorContext) []errorFact {
	facts := []errorFact{
		{"Error ID", ec.ErrorID},
		{"Origin", ec.Failure.Origin},
		{"Request", strings.TrimSpace(ec.Request.Method + " " + ec.Request.Path)},
		{"Query", ec.Request.Query},
		{"Route", ec.Request.Route},
		{"Route name", ec.Request.RouteName},
		{"Request ID", ec.Request.RequestID},
		{"Severity", ec.Failure.Severity.String()},
	}
	return lo.Filter(facts, func(f errorFact, _ int) bool { return f.value != "" })
}
