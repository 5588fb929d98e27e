package filter

import "github.com/maxvaer/hostprobe/internal/probe"

// VerdictFilter hides verdicts of the given kinds. The social checker
// uses it to show hits only unless --all is set.
type VerdictFilter struct {
	hide map[probe.VerdictKind]struct{}
}

// NewVerdictFilter creates a filter hiding the listed verdict kinds.
func NewVerdictFilter(hide ...probe.VerdictKind) *VerdictFilter {
	f := &VerdictFilter{hide: make(map[probe.VerdictKind]struct{}, len(hide))}
	for _, k := range hide {
		f.hide[k] = struct{}{}
	}
	return f
}

func (f *VerdictFilter) Name() string { return "verdict" }

func (f *VerdictFilter) ShouldFilter(v *probe.Verdict) bool {
	_, ok := f.hide[v.Kind]
	return ok
}
