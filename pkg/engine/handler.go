package engine

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/getmockd/interceptd/internal/matching"
	"github.com/getmockd/interceptd/pkg/httputil"
	"github.com/getmockd/interceptd/pkg/logging"
)

// Handler serves intercepted responses to real HTTP clients. The request's
// Host header selects the route.
type Handler struct {
	interceptor Interceptor
	log         *slog.Logger
}

// NewHandler returns a Handler backed by i. A nil logger discards output.
func NewHandler(i Interceptor, logger *slog.Logger) *Handler {
	return &Handler{
		interceptor: i,
		log:         logging.Component(logger, "handler"),
	}
}

// ServeHTTP implements http.Handler. An unmatched route aborts the
// connection so the client sees a transport error rather than a status.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u := *r.URL
	u.Host = r.Host
	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}

	resp, err := h.interceptor.Intercept(r.Context(), r.Method, &u)
	if err != nil {
		if errors.Is(err, matching.ErrUnmatchedRoute) {
			h.log.Warn("aborting unmatched request", "method", r.Method, "host", r.Host, "path", r.URL.Path)
			panic(http.ErrAbortHandler)
		}
		h.log.Error("resolving request", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "resolve_failed", err.Error())
		return
	}

	httputil.WriteJSON(w, resp.Status(), resp.Body)
}
