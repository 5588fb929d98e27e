package netutil

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseTarget normalizes a user-supplied target into a bare hostname and
// a base URL for HTTP probes. A missing scheme defaults to http; paths
// and fragments are dropped, an explicit port survives in the base URL.
func ParseTarget(raw string) (host, baseURL string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", fmt.Errorf("empty target")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid target %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", "", fmt.Errorf("target %q has no host", raw)
	}

	return u.Hostname(), u.Scheme + "://" + u.Host, nil
}
