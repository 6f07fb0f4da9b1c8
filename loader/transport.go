package loader

import (
	"net/http"
	"strings"
)

// WithHeaders adds request headers to the index fetch, for indexes hosted
// behind authentication. Existing request headers are not overwritten.
func WithHeaders(headers map[string]string) Option {
	return func(l *Loader) {
		for k, v := range headers {
			if strings.TrimSpace(k) == "" {
				continue
			}
			if l.headers == nil {
				l.headers = make(map[string]string, len(headers))
			}
			l.headers[k] = v
		}
	}
}

func clientWithHeaders(c *http.Client, headers map[string]string) *http.Client {
	if len(headers) == 0 {
		return c
	}
	clone := *c
	clone.Transport = &headerRoundTripper{
		base:    c.Transport,
		headers: headers,
	}
	return &clone
}

type headerRoundTripper struct {
	base    http.RoundTripper
	headers map[string]string
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	base := h.base
	if base == nil {
		base = http.DefaultTransport
	}
	req = req.Clone(req.Context())
	for key, value := range h.headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}
	return base.RoundTrip(req)
}
