package internal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
)

// Transport is the sink a response is emitted to.
type Transport interface {
	Header() http.Header
	WriteHeader(code int)
	Write(b []byte) (int, error)

	// Writable reports whether the client can still receive bytes.
	Writable() bool

	// Sent reports whether the status line has already gone out.
	Sent() bool
}

// Emitter writes buffered responses to a transport exactly once.
type Emitter struct {
	runtime RuntimeType
}

// NewEmitter creates an emitter for the given runtime.
func NewEmitter(runtime RuntimeType) *Emitter {
	return &Emitter{runtime: runtime.orDefault()}
}

// Emit sends status, headers and the buffered body of resp.
// A second emit of the same response or emitting onto a transport that already
// sent a status yields ReasonAlreadySent. A closed transport or a failed write
// yields ReasonNotWritable.
func (e *Emitter) Emit(resp *Response, t Transport) error {
	if resp.emitted || t.Sent() {
		return &EmissionError{Reason: ReasonAlreadySent}
	}
	if !t.Writable() {
		resp.emitted = true
		return &EmissionError{Reason: ReasonNotWritable, Err: context.Canceled}
	}
	resp.emitted = true

	if !resp.wroteHeader {
		resp.WriteHeader(resp.status)
	}

	dst := t.Header()
	for k, v := range resp.header {
		dst[k] = slices.Clone(v)
	}
	if e.runtime.IsCLI() {
		// the body is the whole output; a bodiless response still says what happened
		if resp.body.Len() == 0 && resp.status >= http.StatusBadRequest {
			resp.body.WriteString(fmt.Sprintf("%d %s\n", resp.status, http.StatusText(resp.status)))
		}
	}
	t.WriteHeader(resp.status)

	if resp.body.Len() == 0 {
		return nil
	}
	if _, err := t.Write(resp.body.Bytes()); err != nil {
		return &EmissionError{Reason: ReasonNotWritable, Err: err}
	}
	return nil
}

// bind connects resp to t so that Flush emits it and switches to streaming.
func (e *Emitter) bind(resp *Response, t Transport) {
	resp.commit = func() (io.Writer, error) {
		if err := e.Emit(resp, t); err != nil {
			return nil, err
		}
		resp.body.Reset()
		return t, nil
	}
}

// httpTransport writes to a net/http response writer.
type httpTransport struct {
	w    http.ResponseWriter
	ctx  context.Context
	sent bool
}

func newHTTPTransport(w http.ResponseWriter, r *http.Request) *httpTransport {
	return &httpTransport{w: w, ctx: r.Context()}
}

func (t *httpTransport) Header() http.Header { return t.w.Header() }

func (t *httpTransport) WriteHeader(code int) {
	t.sent = true
	t.w.WriteHeader(code)
}

func (t *httpTransport) Write(b []byte) (int, error) {
	t.sent = true
	return t.w.Write(b)
}

func (t *httpTransport) Writable() bool { return t.ctx.Err() == nil }

func (t *httpTransport) Sent() bool { return t.sent }

func (t *httpTransport) Flush() {
	if f, ok := t.w.(http.Flusher); ok {
		f.Flush()
	}
}

// streamTransport writes to a plain io.Writer.
// Under RuntimeHTTP it produces the HTTP/1.1 wire form; under RuntimeCLI only the body.
type streamTransport struct {
	w       *bufio.Writer
	header  http.Header
	runtime RuntimeType
	err     error
	sent    bool
}

func newStreamTransport(w io.Writer, runtime RuntimeType) *streamTransport {
	return &streamTransport{
		w:       bufio.NewWriter(w),
		header:  make(http.Header),
		runtime: runtime.orDefault(),
	}
}

func (t *streamTransport) Header() http.Header { return t.header }

func (t *streamTransport) WriteHeader(code int) {
	if t.sent {
		return
	}
	t.sent = true
	if t.runtime.IsCLI() {
		return
	}
	if _, err := fmt.Fprintf(t.w, "HTTP/1.1 %d %s\r\n", code, http.StatusText(code)); err != nil {
		t.err = err
		return
	}
	if err := t.header.Write(t.w); err != nil {
		t.err = err
		return
	}
	_, t.err = t.w.WriteString("\r\n")
}

func (t *streamTransport) Write(b []byte) (int, error) {
	if t.err != nil {
		return 0, t.err
	}
	if !t.sent {
		t.WriteHeader(http.StatusOK)
	}
	n, err := t.w.Write(b)
	if err != nil {
		t.err = err
	}
	return n, err
}

func (t *streamTransport) Writable() bool { return t.err == nil }

func (t *streamTransport) Sent() bool { return t.sent }

func (t *streamTransport) Flush() {
	if t.err == nil {
		t.err = t.w.Flush()
	}
}

// Close flushes buffered output and reports the first write failure.
func (t *streamTransport) Close() error {
	t.Flush()
	return t.err
}
