package middlewares

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/buildwithgo/lungo"
)

// Timeout bounds handler execution and answers 503 when the deadline
// passes. The downstream chain runs on a detached copy of the context with
// a buffered response writer: when the handler finishes in time the buffer
// is flushed to the real writer, and when it does not the buffer is
// discarded. An abandoned handler keeps running until it observes
// ctx.Done(), but it only ever holds its private copy, so the original
// context can be pooled and reused immediately.
func Timeout(timeout time.Duration) lungo.Middleware {
	return func(next lungo.Handler) lungo.Handler {
		return func(c *lungo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
			defer cancel()

			detached := c.Detach()
			detached.Request = detached.Request.WithContext(ctx)
			buf := newBufferedWriter()
			detached.Writer = buf

			done := make(chan error, 1)
			go func() {
				done <- next(detached)
			}()

			select {
			case err := <-done:
				if err != nil {
					// Let the error boundary produce the response.
					return err
				}
				buf.flush(c.Writer)
				return nil
			case <-ctx.Done():
				return lungo.NewHTTPError(http.StatusServiceUnavailable,
					http.StatusText(http.StatusServiceUnavailable)).SetInternal(ctx.Err())
			}
		}
	}
}

// bufferedWriter collects the response until Timeout decides whether the
// handler beat the deadline. After a timeout nothing reads it again, so a
// late-writing handler mutates only garbage.
type bufferedWriter struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: make(http.Header)}
}

func (b *bufferedWriter) Header() http.Header { return b.header }

func (b *bufferedWriter) WriteHeader(code int) {
	if b.wroteHeader {
		return
	}
	b.status = code
	b.wroteHeader = true
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if !b.wroteHeader {
		b.WriteHeader(http.StatusOK)
	}
	return b.body.Write(p)
}

func (b *bufferedWriter) flush(dst http.ResponseWriter) {
	for key, values := range b.header {
		for _, v := range values {
			dst.Header().Add(key, v)
		}
	}
	if b.wroteHeader {
		dst.WriteHeader(b.status)
	}
	if b.body.Len() > 0 {
		dst.Write(b.body.Bytes())
	}
}
