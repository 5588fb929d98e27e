package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// maxBodyBytes caps how much of a response body is read. Marker matching
// only needs the page text, not arbitrarily large downloads.
const maxBodyBytes = 512 * 1024

// Response holds the parsed HTTP response data.
type Response struct {
	StatusCode    int
	ContentLength int64
	Header        http.Header
	Body          []byte
	RedirectURL   string
	Duration      time.Duration
}

// RequesterConfig holds the transport options shared by all HTTP probes
// of one scan stage.
type RequesterConfig struct {
	Timeout         time.Duration
	Workers         int
	UserAgent       string
	Proxy           string
	FollowRedirects bool
	Headers         map[string]string
	KeepBody        bool // retain response bodies for marker matching
}

// Requester wraps an HTTP client shared by the workers of one scan.
type Requester struct {
	client    *http.Client
	headers   map[string]string
	userAgent string
	keepBody  bool
}

// NewRequester builds a Requester from the provided config.
func NewRequester(cfg RequesterConfig) (*Requester, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		DialContext: (&net.Dialer{
			Timeout: cfg.Timeout,
		}).DialContext,
		MaxIdleConnsPerHost: cfg.Workers,
		MaxIdleConns:        cfg.Workers,
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}

	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "hostprobe/1.0"
	}

	return &Requester{
		client:    client,
		headers:   cfg.Headers,
		userAgent: ua,
		keepBody:  cfg.KeepBody,
	}, nil
}

// Do sends an HTTP request for the given URL and returns the parsed
// response. method defaults to GET if empty.
func (r *Requester) Do(ctx context.Context, method, rawURL string) (*Response, error) {
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", r.userAgent)
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body for %s: %w", rawURL, err)
	}
	elapsed := time.Since(start)

	result := &Response{
		StatusCode:    resp.StatusCode,
		ContentLength: int64(len(body)),
		Header:        resp.Header,
		Duration:      elapsed,
	}
	if r.keepBody {
		result.Body = body
	}

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		result.RedirectURL = resp.Header.Get("Location")
	}

	return result, nil
}
