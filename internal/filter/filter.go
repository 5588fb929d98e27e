package filter

import "github.com/maxvaer/hostprobe/internal/probe"

// Filter decides whether a verdict should be hidden from output.
// Filters gate display only; every verdict still reaches the report.
type Filter interface {
	Name() string
	ShouldFilter(v *probe.Verdict) bool
}

// Chain applies multiple filters in order, short-circuiting on the first match.
type Chain struct {
	filters []Filter
}

// NewChain returns an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add appends a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Apply runs every filter against the verdict. Returns true and the
// filter name if the verdict should be hidden.
func (c *Chain) Apply(v *probe.Verdict) (bool, string) {
	for _, f := range c.filters {
		if f.ShouldFilter(v) {
			return true, f.Name()
		}
	}
	return false, ""
}
