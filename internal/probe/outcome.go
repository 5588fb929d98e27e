package probe

import (
	"net/http"
	"time"
)

// OutcomeKind classifies the raw transport-level result of a probe.
type OutcomeKind int

const (
	// OutcomeBody is an HTTP response with the body captured.
	OutcomeBody OutcomeKind = iota
	// OutcomeStatus is an HTTP response kept as status and headers only.
	OutcomeStatus
	// OutcomeConnect is an established TCP connection.
	OutcomeConnect
	// OutcomeRefused is a TCP connection refused or reset by the peer.
	OutcomeRefused
	// OutcomeTimeout is a deadline hit before any response arrived.
	OutcomeTimeout
	// OutcomeNetError is a DNS, TLS, or other transport fault.
	OutcomeNetError
	// OutcomeBadTarget is an unparseable URL or host in the Spec itself.
	OutcomeBadTarget
)

// String returns the short name used in output and logs.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeBody:
		return "body"
	case OutcomeStatus:
		return "status"
	case OutcomeConnect:
		return "connect"
	case OutcomeRefused:
		return "refused"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeNetError:
		return "net-error"
	case OutcomeBadTarget:
		return "bad-target"
	default:
		return "unknown"
	}
}

// Outcome holds the raw result of executing one Spec. Every submitted
// Spec produces exactly one Outcome, faults included; a fault is an
// Outcome with an error kind, never a panic or a dropped entry.
type Outcome struct {
	Spec          Spec
	Kind          OutcomeKind
	StatusCode    int
	ContentLength int64
	Header        http.Header
	Body          []byte // retained for marker matching only
	Banner        string // auxiliary TCP banner, best effort
	Scheme        string // scheme that answered a header fetch
	Redirect      string // Location header of a 3xx response
	Duration      time.Duration
	Err           string // transport error text, empty on success
}
