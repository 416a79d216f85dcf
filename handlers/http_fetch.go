package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/taskflow/core/worker"
)

type httpFetchPayload struct {
	URL            string   `json:"url"`
	TimeoutSeconds *float64 `json:"timeout_seconds"`
}

type httpFetchResult struct {
	StatusCode int   `json:"status_code"`
	LatencyMs  int64 `json:"latency_ms"`
}

// NewHTTPFetch returns the "http_fetch" handler: it issues a GET to a
// public http/https URL and reports the status code and latency. A nil
// client selects a default one that follows redirects.
func NewHTTPFetch(client *http.Client) worker.Handler {
	if client == nil {
		client = &http.Client{}
	}

	return worker.NewHandler("http_fetch", func(ctx context.Context, p httpFetchPayload) (any, error) {
		if p.URL == "" {
			return nil, errors.New("payload.url is required")
		}

		parsed, err := url.Parse(p.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid url: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return nil, errors.New("only http/https URLs are allowed")
		}
		host := parsed.Hostname()
		if host == "" {
			return nil, errors.New("URL hostname missing")
		}
		if isPrivateHost(host) {
			return nil, errors.New("private/localhost targets are blocked")
		}

		timeout := 5.0
		if p.TimeoutSeconds != nil {
			timeout = *p.TimeoutSeconds
		}
		if timeout < 0.5 {
			timeout = 0.5
		}
		if timeout > 10 {
			timeout = 10
		}

		reqCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout*float64(time.Second)))
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, p.URL, nil)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		return httpFetchResult{
			StatusCode: resp.StatusCode,
			LatencyMs:  time.Since(start).Milliseconds(),
		}, nil
	})
}

// isPrivateHost guards against SSRF toward internal infrastructure.
func isPrivateHost(host string) bool {
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
	}
	lowered := strings.ToLower(host)
	return lowered == "localhost" || strings.HasSuffix(lowered, ".local")
}
