package filter

import "github.com/maxvaer/hostprobe/internal/probe"

// SizeFilter hides verdicts whose response body has one of the given
// sizes. Error pages served with a 200 tend to share an exact length,
// so excluding it cleans a path scan up considerably.
type SizeFilter struct {
	sizes map[int64]struct{}
}

// NewSizeFilter creates a filter that hides the given body sizes.
func NewSizeFilter(excludeSizes []int) *SizeFilter {
	f := &SizeFilter{sizes: make(map[int64]struct{}, len(excludeSizes))}
	for _, s := range excludeSizes {
		f.sizes[int64(s)] = struct{}{}
	}
	return f
}

func (f *SizeFilter) Name() string { return "size" }

func (f *SizeFilter) ShouldFilter(v *probe.Verdict) bool {
	switch v.Outcome.Kind {
	case probe.OutcomeBody, probe.OutcomeStatus:
	default:
		// Only HTTP outcomes carry a length; connect probes pass through.
		return false
	}
	_, ok := f.sizes[v.Outcome.ContentLength]
	return ok
}
