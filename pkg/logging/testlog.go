package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
)

// TB is the subset of testing.TB the test handler needs.
type TB interface {
	Helper()
	Log(args ...any)
}

// NewTestLogger returns a logger that writes each record as one t.Log line.
func NewTestLogger(t TB, level Level) *slog.Logger {
	h := &testHandler{t: t, mu: &sync.Mutex{}, buf: &bytes.Buffer{}}
	h.inner = slog.NewTextHandler(h.buf, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return slog.New(h)
}

// testHandler formats with a text handler into a shared buffer and flushes
// every record to t.Log.
type testHandler struct {
	t     TB
	inner slog.Handler
	mu    *sync.Mutex
	buf   *bytes.Buffer
}

func (h *testHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *testHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	h.t.Helper()
	h.t.Log(strings.TrimRight(h.buf.String(), "\n"))
	return nil
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &testHandler{t: h.t, inner: h.inner.WithAttrs(attrs), mu: h.mu, buf: h.buf}
}

func (h *testHandler) WithGroup(name string) slog.Handler {
	return &testHandler{t: h.t, inner: h.inner.WithGroup(name), mu: h.mu, buf: h.buf}
}
