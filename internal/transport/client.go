// Package transport builds the outbound HTTP clients.
package transport

import (
	"net/http"
	"net/url"
	"time"
)

// NewHTTPClient returns a client with the given timeout, routed through
// proxyURL when it is set and parses.
func NewHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
