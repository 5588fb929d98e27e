package filter

import "github.com/maxvaer/hostprobe/internal/probe"

// StatusFilter hides verdicts based on the HTTP status code of their
// outcome.
type StatusFilter struct {
	include map[int]struct{}
	exclude map[int]struct{}
}

// NewStatusFilter creates a status code filter. If include is non-empty, only
// those codes pass through. If exclude is non-empty, those codes are hidden.
func NewStatusFilter(include, exclude []int) *StatusFilter {
	f := &StatusFilter{
		include: make(map[int]struct{}, len(include)),
		exclude: make(map[int]struct{}, len(exclude)),
	}
	for _, code := range include {
		f.include[code] = struct{}{}
	}
	for _, code := range exclude {
		f.exclude[code] = struct{}{}
	}
	return f
}

func (f *StatusFilter) Name() string { return "status" }

func (f *StatusFilter) ShouldFilter(v *probe.Verdict) bool {
	// Only HTTP outcomes carry a status; connect probes pass through.
	if v.Outcome.Kind != probe.OutcomeBody && v.Outcome.Kind != probe.OutcomeStatus {
		return false
	}
	if len(f.include) > 0 {
		_, ok := f.include[v.Outcome.StatusCode]
		return !ok // hide if NOT in include list
	}
	if len(f.exclude) > 0 {
		_, ok := f.exclude[v.Outcome.StatusCode]
		return ok // hide if in exclude list
	}
	return false
}
