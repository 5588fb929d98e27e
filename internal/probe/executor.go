package probe

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// bannerTimeout bounds the optional banner read after a TCP connect.
const bannerTimeout = 2 * time.Second

// bannerMaxLen trims captured banners for display.
const bannerMaxLen = 200

// Executor performs the kind-specific network operation for a Spec and
// turns every fault into a terminal Outcome. Execute never panics and
// never returns an error; the Outcome kind carries the fault.
type Executor struct {
	req         *Requester
	timeout     time.Duration
	grabBanners bool
}

// NewExecutor builds an Executor around a shared Requester. timeout is
// the per-probe deadline for TCP connects; HTTP probes are bounded by
// the Requester's own client timeout.
func NewExecutor(req *Requester, timeout time.Duration) *Executor {
	return &Executor{req: req, timeout: timeout}
}

// WithBanners enables best-effort banner capture on TCP connects.
func (e *Executor) WithBanners() *Executor {
	e.grabBanners = true
	return e
}

// Execute runs one probe and returns its Outcome.
func (e *Executor) Execute(ctx context.Context, spec Spec) Outcome {
	start := time.Now()
	switch spec.Kind {
	case KindTCPConnect:
		return e.tcpConnect(ctx, spec, start)
	case KindHeaderFetch:
		return e.headerFetch(ctx, spec, start)
	default:
		return e.httpGet(ctx, spec, start)
	}
}

func (e *Executor) httpGet(ctx context.Context, spec Spec, start time.Time) Outcome {
	if _, err := url.ParseRequestURI(spec.URL); err != nil {
		return badTarget(spec, err, start)
	}

	resp, err := e.req.Do(ctx, http.MethodGet, spec.URL)
	if err != nil {
		return faultOutcome(spec, err, start)
	}

	return Outcome{
		Spec:          spec,
		Kind:          OutcomeBody,
		StatusCode:    resp.StatusCode,
		ContentLength: resp.ContentLength,
		Header:        resp.Header,
		Body:          resp.Body,
		Redirect:      resp.RedirectURL,
		Duration:      resp.Duration,
	}
}

// headerCandidates returns the URLs a header fetch will try in order.
// An http URL gets an https fallback for hosts that only answer TLS;
// any other scheme is tried as given.
func headerCandidates(rawURL string) ([]string, error) {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, err
	}
	candidates := []string{rawURL}
	if u.Scheme == "http" {
		u.Scheme = "https"
		candidates = append(candidates, u.String())
	}
	return candidates, nil
}

// headerFetch tries the URL as given and, when the scheme is http and
// the connection fails outright, retries once over https. One Spec
// still yields exactly one Outcome.
func (e *Executor) headerFetch(ctx context.Context, spec Spec, start time.Time) Outcome {
	candidates, err := headerCandidates(spec.URL)
	if err != nil {
		return badTarget(spec, err, start)
	}

	var lastErr error
	for _, candidate := range candidates {
		resp, err := e.req.Do(ctx, http.MethodGet, candidate)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		scheme := strings.SplitN(candidate, ":", 2)[0]
		return Outcome{
			Spec:          spec,
			Kind:          OutcomeStatus,
			StatusCode:    resp.StatusCode,
			ContentLength: resp.ContentLength,
			Header:        resp.Header,
			Scheme:        scheme,
			Duration:      resp.Duration,
		}
	}

	return faultOutcome(spec, lastErr, start)
}

func (e *Executor) tcpConnect(ctx context.Context, spec Spec, start time.Time) Outcome {
	if spec.Host == "" || spec.Port <= 0 || spec.Port > 65535 {
		return badTarget(spec, errors.New("missing host or port out of range"), start)
	}
	addr := net.JoinHostPort(spec.Host, strconv.Itoa(spec.Port))

	dialer := net.Dialer{Timeout: e.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return faultOutcome(spec, err, start)
	}
	defer conn.Close()

	out := Outcome{
		Spec:     spec,
		Kind:     OutcomeConnect,
		Duration: time.Since(start),
	}
	if e.grabBanners {
		out.Banner = grabBanner(conn, spec.Port)
	}
	return out
}

// grabBanner reads a short service banner off an open connection. Some
// services only talk after a nudge, so known ports get one. Failures
// are ignored; the banner never affects the verdict.
func grabBanner(conn net.Conn, port int) string {
	_ = conn.SetDeadline(time.Now().Add(bannerTimeout))

	switch port {
	case 80, 443, 8080, 8443:
		_, _ = conn.Write([]byte("HEAD / HTTP/1.0\r\n\r\n"))
	case 22:
		_, _ = conn.Write([]byte("SSH-2.0-Client\r\n"))
	}

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return ""
	}

	banner := strings.TrimSpace(string(buf[:n]))
	banner = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		if r < 32 || r > 126 {
			return -1
		}
		return r
	}, banner)
	if len(banner) > bannerMaxLen {
		banner = banner[:bannerMaxLen]
	}
	return banner
}

// faultOutcome converts a transport error into its terminal Outcome.
func faultOutcome(spec Spec, err error, start time.Time) Outcome {
	out := Outcome{
		Spec:     spec,
		Duration: time.Since(start),
	}
	if err == nil {
		out.Kind = OutcomeNetError
		out.Err = "no response"
		return out
	}
	out.Err = err.Error()

	switch {
	case isTimeout(err):
		out.Kind = OutcomeTimeout
	case isRefused(err):
		out.Kind = OutcomeRefused
	default:
		out.Kind = OutcomeNetError
	}
	return out
}

func badTarget(spec Spec, err error, start time.Time) Outcome {
	return Outcome{
		Spec:     spec,
		Kind:     OutcomeBadTarget,
		Duration: time.Since(start),
		Err:      err.Error(),
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isRefused(err error) bool {
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	return strings.Contains(opErr.Err.Error(), "connection refused") ||
		strings.Contains(opErr.Err.Error(), "connection reset")
}
