package internal

import (
	"bytes"
	"errors"
	"io"
	"net/http"
)

// DefaultMaxBufferedBody caps the bytes a response buffers before it must be flushed.
const DefaultMaxBufferedBody = 8 << 20

// ErrResponseTooLarge is returned by Write when the buffered body would exceed its limit.
// Call Flush to stream large bodies.
var ErrResponseTooLarge = errors.New("runway: buffered response body exceeds limit")

// representationHeaders are dropped by Reset since they describe the discarded body.
var representationHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Content-Encoding",
	"Content-Disposition",
	"Etag",
	"Last-Modified",
}

// Response is the buffered response handlers and middlewares write into.
// Nothing reaches the transport until the kernel emits it, so an outer layer can still
// inspect, rewrite or Reset a response produced by an inner one.
//
// Flush switches the response to streaming: headers and buffered bytes are emitted at
// once and later writes go straight to the transport.
type Response struct {
	header      http.Header
	commit      func() (io.Writer, error)
	sink        io.Writer
	beforeWrite []func()
	body        bytes.Buffer
	status      int
	limit       int
	size        int64
	wroteHeader bool
	emitted     bool
}

// NewResponse creates an empty response. limit <= 0 disables the body cap.
func NewResponse(limit int) *Response {
	return &Response{
		header: make(http.Header),
		status: http.StatusOK,
		limit:  limit,
	}
}

// Header returns the response headers.
func (r *Response) Header() http.Header { return r.header }

// OnBeforeWrite registers a hook run once before the status is set.
func (r *Response) OnBeforeWrite(fn func()) {
	r.beforeWrite = append(r.beforeWrite, fn)
}

// WriteHeader records the status code. Only the first call counts.
func (r *Response) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.runHooks()
	r.wroteHeader = true
	r.status = code
}

// Write appends to the body, or writes through when streaming.
func (r *Response) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	if r.sink != nil {
		n, err := r.sink.Write(b)
		r.size += int64(n)
		return n, err
	}
	if r.limit > 0 && r.body.Len()+len(b) > r.limit {
		return 0, ErrResponseTooLarge
	}
	n, err := r.body.Write(b)
	r.size += int64(n)
	return n, err
}

// Flush emits what has been written so far and switches to streaming.
func (r *Response) Flush() {
	_ = r.FlushError()
}

// FlushError is Flush reporting emission failures.
func (r *Response) FlushError() error {
	if r.sink == nil {
		if r.commit == nil {
			return nil
		}
		w, err := r.commit()
		if err != nil {
			return err
		}
		r.sink = w
	}
	if f, ok := r.sink.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// Reset discards the status and body written so far, keeping headers that do not
// describe the body. It reports false once the response is streaming.
func (r *Response) Reset() bool {
	if r.Streaming() {
		return false
	}
	for _, h := range representationHeaders {
		r.header.Del(h)
	}
	r.body.Reset()
	r.status = http.StatusOK
	r.size = 0
	r.wroteHeader = false
	return true
}

// Status returns the status code.
func (r *Response) Status() int { return r.status }

// Size returns the number of body bytes written.
func (r *Response) Size() int64 { return r.size }

// Body returns the buffered body.
func (r *Response) Body() []byte { return r.body.Bytes() }

// Written reports whether a status or any body bytes were written.
func (r *Response) Written() bool { return r.wroteHeader || r.body.Len() > 0 }

// Streaming reports whether the response was flushed to the transport.
func (r *Response) Streaming() bool { return r.sink != nil }

func (r *Response) runHooks() {
	hooks := r.beforeWrite
	r.beforeWrite = nil
	for _, fn := range hooks {
		fn()
	}
}
