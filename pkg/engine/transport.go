package engine

import (
	"context"
	"net/http"
	"net/url"

	"github.com/getmockd/interceptd/pkg/fixture"
	"github.com/getmockd/interceptd/pkg/httputil"
)

// Interceptor decides the response for one outbound call.
type Interceptor interface {
	Intercept(ctx context.Context, method string, u *url.URL) (fixture.Response, error)
}

// Transport is an http.RoundTripper answering every request from an
// Interceptor. Requests never reach the network.
type Transport struct {
	Interceptor Interceptor
}

// NewTransport returns a Transport backed by i.
func NewTransport(i Interceptor) *Transport {
	return &Transport{Interceptor: i}
}

// RoundTrip implements http.RoundTripper. Interceptor errors, including
// unmatched routes, are returned as transport errors so http.Client reports
// them as *url.Error.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		defer req.Body.Close()
	}

	resp, err := t.Interceptor.Intercept(req.Context(), req.Method, req.URL)
	if err != nil {
		return nil, err
	}
	return httputil.NewJSONResponse(req, resp.Status(), resp.Body)
}

// Client returns an http.Client using the transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}
