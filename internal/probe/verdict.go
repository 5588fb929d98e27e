package probe

// VerdictKind is the tri-state interpretation of an Outcome.
type VerdictKind int

const (
	// Present means the probed resource exists, is open, or answered.
	Present VerdictKind = iota
	// Absent means the probed resource does not exist or is closed.
	Absent
	// Indeterminate means the probe could not tell either way.
	Indeterminate
)

// String returns the display name of the verdict.
func (k VerdictKind) String() string {
	switch k {
	case Present:
		return "present"
	case Absent:
		return "absent"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// Verdict pairs an Outcome with its classification. A Verdict is derived
// exactly once per Outcome and never recomputed.
type Verdict struct {
	Spec    Spec
	Kind    VerdictKind
	Reason  string
	Outcome Outcome
}
