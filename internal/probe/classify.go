package probe

import (
	"fmt"
	"strings"
)

// Classify maps an Outcome to its Verdict using the rules of the Spec
// kind. The mapping is pure: the same Outcome always yields the same
// Verdict. Bodies are not retained past classification.
func Classify(out Outcome) Verdict {
	v := Verdict{Spec: out.Spec, Outcome: out}
	v.Outcome.Body = nil

	// A spec that never produced a parseable target cannot be judged,
	// whatever its kind.
	if out.Kind == OutcomeBadTarget {
		v.Kind = Indeterminate
		v.Reason = "malformed target: " + out.Err
		return v
	}

	switch out.Spec.Kind {
	case KindHTTPExistence:
		v.Kind, v.Reason = classifyExistence(out)
	case KindTCPConnect:
		v.Kind, v.Reason = classifyConnect(out)
	case KindHeaderFetch:
		v.Kind, v.Reason = classifyHeaders(out)
	case KindPathProbe:
		v.Kind, v.Reason = classifyPath(out)
	default:
		v.Kind = Indeterminate
		v.Reason = "unknown probe kind"
	}
	return v
}

// classifyExistence: present iff status 200 and no absence marker in
// the body. An empty marker list means every 200 is present.
func classifyExistence(out Outcome) (VerdictKind, string) {
	switch out.Kind {
	case OutcomeBody, OutcomeStatus:
		if out.StatusCode != 200 {
			return Absent, fmt.Sprintf("status %d", out.StatusCode)
		}
		if marker, ok := matchMarker(out.Body, out.Spec.Markers); ok {
			return Absent, fmt.Sprintf("marker %q", marker)
		}
		return Present, "status 200, no marker"
	case OutcomeTimeout:
		return Indeterminate, "timeout: " + out.Err
	default:
		return Indeterminate, "network error: " + out.Err
	}
}

// classifyConnect: present iff the connection was established within
// the deadline. Refusal and timeout both read as closed/filtered.
func classifyConnect(out Outcome) (VerdictKind, string) {
	switch out.Kind {
	case OutcomeConnect:
		return Present, "open"
	case OutcomeRefused:
		return Absent, "refused"
	case OutcomeTimeout:
		return Absent, "timeout"
	default:
		return Indeterminate, "network error: " + out.Err
	}
}

// classifyHeaders: any response at all is present; only total
// connection failure is indeterminate. The value of this probe is its
// captured payload, not the verdict.
func classifyHeaders(out Outcome) (VerdictKind, string) {
	switch out.Kind {
	case OutcomeBody, OutcomeStatus:
		return Present, fmt.Sprintf("status %d", out.StatusCode)
	default:
		return Indeterminate, "no response: " + out.Err
	}
}

// classifyPath: present iff the status is one of 200, 301, 302, 403.
// Everything else, faults included, is absent.
func classifyPath(out Outcome) (VerdictKind, string) {
	switch out.Kind {
	case OutcomeBody, OutcomeStatus:
		switch out.StatusCode {
		case 200, 301, 302, 403:
			return Present, fmt.Sprintf("status %d", out.StatusCode)
		default:
			return Absent, fmt.Sprintf("status %d", out.StatusCode)
		}
	case OutcomeTimeout:
		return Absent, "timeout"
	default:
		return Absent, "network error: " + out.Err
	}
}

// matchMarker reports the first absence marker contained in body,
// case-insensitively. Pure disjunction: marker order cannot change the
// boolean result.
func matchMarker(body []byte, markers []string) (string, bool) {
	if len(markers) == 0 {
		return "", false
	}
	lower := strings.ToLower(string(body))
	for _, marker := range markers {
		if marker == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(marker)) {
			return marker, true
		}
	}
	return "", false
}
