package probe

// Kind selects the network operation a Spec performs and the
// classification rules applied to its outcome.
type Kind int

const (
	// KindHTTPExistence fetches a URL and tests the body against absence
	// markers. Used for platform username checks.
	KindHTTPExistence Kind = iota
	// KindTCPConnect attempts a plain TCP connection to Host:Port.
	KindTCPConnect
	// KindHeaderFetch fetches a URL for its status line and headers.
	// Any response at all counts as present.
	KindHeaderFetch
	// KindPathProbe fetches a path below a base URL and judges it by
	// status code alone.
	KindPathProbe
)

// String returns the short name used in output and logs.
func (k Kind) String() string {
	switch k {
	case KindHTTPExistence:
		return "existence"
	case KindTCPConnect:
		return "tcp"
	case KindHeaderFetch:
		return "headers"
	case KindPathProbe:
		return "path"
	default:
		return "unknown"
	}
}

// Spec describes a single probe. Specs are built once per scan and
// never mutated afterwards.
type Spec struct {
	Kind    Kind
	Label   string   // display name: platform, service, or path
	URL     string   // full URL (HTTP kinds)
	Host    string   // target host (TCP connect)
	Port    int      // target port (TCP connect)
	Markers []string // absence markers (HTTP existence only)
}
