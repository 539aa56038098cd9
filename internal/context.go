package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/runway/pkg/binder"
	"github.com/dmitrymomot/runway/pkg/route"
)

// RequestIDKey is the context key the request ID middleware stores the ID under.
type RequestIDKey struct{}

// TranslatorKey holds the request's Translator.
type TranslatorKey struct{}

// LanguageKey holds the language the I18n middleware picked.
type LanguageKey struct{}

// errorIDKey is the context key of the error ID assigned to the current failure.
type errorIDKey struct{}

// matchKey is the context key of the route match.
type matchKey struct{}

// Translator translates message keys for one language.
type Translator interface {
	T(key string, args ...any) string
	Language() string
}

// Component is anything that renders HTML to a writer, templ components included.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Context is what handlers and middlewares receive for one dispatch. It is a
// context.Context backed by the request's context.
type Context interface {
	context.Context

	Request() *http.Request

	// Response returns the buffered response as an http.ResponseWriter.
	Response() http.ResponseWriter

	// ResponseWriter returns the buffered response.
	ResponseWriter() *Response

	// Context returns the current request context, including values added by Set.
	Context() context.Context

	// Runtime reports whether the request came from the network or a CLI dispatch.
	Runtime() RuntimeType

	// Param returns a captured path value, or "" before routing or when absent.
	Param(name string) string

	// Params returns all path parameters in pattern order.
	Params() route.Params

	// RouteName returns the name of the matched route, if any.
	RouteName() string

	// RoutePattern returns the pattern of the matched route, if any.
	RoutePattern() string

	// URL builds the path of a named route.
	URL(name string, params map[string]string) (string, error)

	Query(name string) string
	// QueryDefault returns defaultValue when the query parameter is empty.
	QueryDefault(name, defaultValue string) string
	Header(name string) string
	SetHeader(name, value string)

	// Cookie returns the value of a request cookie, or cookie.ErrNotFound.
	Cookie(name string) (string, error)
	// SetCookie writes a cookie with the attributes of the app's cookie manager.
	SetCookie(name, value string, maxAge int)
	DeleteCookie(name string)
	// CookieSigned returns a value written by SetCookieSigned, or
	// cookie.ErrBadSig when the client altered it.
	CookieSigned(name string) (string, error)
	SetCookieSigned(name, value string, maxAge int) error
	// CookieEncrypted returns a value written by SetCookieEncrypted.
	CookieEncrypted(name string) (string, error)
	SetCookieEncrypted(name, value string, maxAge int) error

	// Bind decodes the request body into the struct v points to: JSON when the
	// content type says so, otherwise form fields named by the `form` tag.
	// Malformed input yields an error reporting 400, oversized bodies 413.
	Bind(v any) error
	// BindJSON decodes a JSON body regardless of content type.
	BindJSON(v any) error
	// BindQuery decodes query parameters named by the `query` tag.
	BindQuery(v any) error

	// Response helpers. Each writes into the buffered response; the first
	// one to run sets the status.
	JSON(code int, v any) error
	String(code int, s string) error
	Blob(code int, contentType string, b []byte) error
	Render(code int, component Component) error
	NoContent(code int) error
	Redirect(code int, url string) error

	// Error builds an *HTTPError carrying the request ID. Nothing is written
	// until the handler returns it.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written reports whether a status has been set.
	Written() bool

	// T translates a key with the Translator stored by the I18n middleware.
	// Returns the key itself without one.
	T(key string, args ...any) string

	// Language returns the language resolved by the I18n middleware.
	Language() string

	Logger() *slog.Logger
	// Log helpers pass the request context so extractors see it.
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set derives the request context with key bound to value.
	Set(key any, value any)
	// Get reads a request context value, nil when unset.
	Get(key any) any

	// SetContext replaces the request context, for deadlines and cancellation.
	// ctx should derive from Context() so that values set earlier stay visible.
	SetContext(ctx context.Context)
}

// requestContext is the Context handed to handlers.
type requestContext struct {
	request  *http.Request
	response *Response
	logger   *slog.Logger
	app      *App
}

func newContext(r *http.Request, resp *Response, app *App) *requestContext {
	return &requestContext{
		request:  r,
		response: resp,
		logger:   app.logger,
		app:      app,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) ResponseWriter() *Response {
	return c.response
}

func (c *requestContext) ctx() context.Context { return c.request.Context() }

func (c *requestContext) Context() context.Context { return c.ctx() }

func (c *requestContext) Runtime() RuntimeType { return c.app.runtime }

// context.Context follows the request context, which SetContext and Set replace.

func (c *requestContext) Deadline() (time.Time, bool) { return c.ctx().Deadline() }
func (c *requestContext) Done() <-chan struct{}       { return c.ctx().Done() }
func (c *requestContext) Err() error                  { return c.ctx().Err() }
func (c *requestContext) Value(key any) any           { return c.ctx().Value(key) }

func (c *requestContext) match() *route.Match[*endpoint] {
	return matchFromContext(c.ctx())
}

func (c *requestContext) Param(name string) string {
	v, _ := c.Params().Get(name)
	return v
}

func (c *requestContext) Params() route.Params {
	if m := c.match(); m != nil {
		return m.Params
	}
	return nil
}

func (c *requestContext) definition() route.Definition[*endpoint] {
	if m := c.match(); m != nil && m.Route.Definition != nil {
		return *m.Route.Definition
	}
	return route.Definition[*endpoint]{}
}

func (c *requestContext) RouteName() string    { return c.definition().Name }
func (c *requestContext) RoutePattern() string { return c.definition().Pattern }

func (c *requestContext) URL(name string, params map[string]string) (string, error) {
	return c.app.table.URL(name, params)
}

func (c *requestContext) Query(name string) string { return c.request.URL.Query().Get(name) }

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return defaultValue
}

func (c *requestContext) Header(name string) string { return c.request.Header.Get(name) }

func (c *requestContext) SetHeader(name, value string) { c.response.Header().Set(name, value) }

func (c *requestContext) Cookie(name string) (string, error) {
	return c.app.cookies.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.app.cookies.Set(c.response, name, value, maxAge)
}

func (c *requestContext) DeleteCookie(name string) { c.app.cookies.Delete(c.response, name) }

func (c *requestContext) CookieSigned(name string) (string, error) {
	return c.app.cookies.GetSigned(c.request, name)
}

func (c *requestContext) SetCookieSigned(name, value string, maxAge int) error {
	return c.app.cookies.SetSigned(c.response, name, value, maxAge)
}

func (c *requestContext) CookieEncrypted(name string) (string, error) {
	return c.app.cookies.GetEncrypted(c.request, name)
}

func (c *requestContext) SetCookieEncrypted(name, value string, maxAge int) error {
	return c.app.cookies.SetEncrypted(c.response, name, value, maxAge)
}

func (c *requestContext) Bind(v any) error {
	if binder.IsJSON(c.request) {
		return c.BindJSON(v)
	}
	if err := binder.ParseForm(c.request); err != nil {
		return fmt.Errorf("bind form: %w", err)
	}
	if err := binder.DecodeValues(c.request.PostForm, "form", v); err != nil {
		return fmt.Errorf("bind form: %w", err)
	}
	return nil
}

func (c *requestContext) BindJSON(v any) error {
	if err := binder.DecodeJSON(c.request, v); err != nil {
		return fmt.Errorf("bind json: %w", err)
	}
	return nil
}

func (c *requestContext) BindQuery(v any) error {
	if err := binder.DecodeValues(c.request.URL.Query(), "query", v); err != nil {
		return fmt.Errorf("bind query: %w", err)
	}
	return nil
}

// emit sets the content type and status, then writes the body if any.
func (c *requestContext) emit(code int, contentType string, body func(w io.Writer) error) error {
	if contentType != "" {
		c.response.Header().Set("Content-Type", contentType)
	}
	c.response.WriteHeader(code)
	if body == nil {
		return nil
	}
	return body(c.response)
}

func (c *requestContext) JSON(code int, v any) error {
	return c.emit(code, contentTypeJSON, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(v)
	})
}

func (c *requestContext) String(code int, s string) error {
	return c.emit(code, contentTypeText, func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func (c *requestContext) Blob(code int, contentType string, b []byte) error {
	return c.emit(code, contentType, func(w io.Writer) error {
		_, err := w.Write(b)
		return err
	})
}

func (c *requestContext) Render(code int, component Component) error {
	return c.emit(code, contentTypeHTML, func(w io.Writer) error {
		return component.Render(c.ctx(), w)
	})
}

func (c *requestContext) NoContent(code int) error { return c.emit(code, "", nil) }

// Redirect falls back to 302 for codes outside 3xx.
func (c *requestContext) Redirect(code int, url string) error {
	if code < http.StatusMultipleChoices || code > http.StatusPermanentRedirect {
		code = http.StatusFound
	}
	c.response.Header().Set("Location", url)
	return c.emit(code, "", nil)
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	if rid := RequestID(c.ctx()); rid != "" {
		opts = append([]HTTPErrorOption{WithRequestID(rid)}, opts...)
	}
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Written() bool { return c.response.Written() }

func (c *requestContext) T(key string, args ...any) string {
	if tr, ok := c.Get(TranslatorKey{}).(Translator); ok {
		return tr.T(key, args...)
	}
	return key
}

func (c *requestContext) Language() string {
	if lang, ok := c.Get(LanguageKey{}).(string); ok {
		return lang
	}
	if tr, ok := c.Get(TranslatorKey{}).(Translator); ok {
		return tr.Language()
	}
	return ""
}

func (c *requestContext) Logger() *slog.Logger { return c.logger }

func (c *requestContext) log(level slog.Level, msg string, attrs []any) {
	c.logger.Log(c.ctx(), level, msg, attrs...)
}

func (c *requestContext) LogDebug(msg string, attrs ...any) { c.log(slog.LevelDebug, msg, attrs) }
func (c *requestContext) LogInfo(msg string, attrs ...any)  { c.log(slog.LevelInfo, msg, attrs) }
func (c *requestContext) LogWarn(msg string, attrs ...any)  { c.log(slog.LevelWarn, msg, attrs) }
func (c *requestContext) LogError(msg string, attrs ...any) { c.log(slog.LevelError, msg, attrs) }

func (c *requestContext) Set(key, value any) {
	c.SetContext(context.WithValue(c.ctx(), key, value))
}

func (c *requestContext) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any { return c.ctx().Value(key) }

// ErrorID returns the error ID assigned to the failure being rendered.
// It is set for custom error, not-found and method-not-allowed handlers.
func ErrorID(c Context) string {
	v, _ := c.Get(errorIDKey{}).(string)
	return v
}

// RequestID returns the ID stored by the request ID middleware.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(RequestIDKey{}).(string)
	return v
}

func matchFromContext(ctx context.Context) *route.Match[*endpoint] {
	m, _ := ctx.Value(matchKey{}).(*route.Match[*endpoint])
	return m
}
