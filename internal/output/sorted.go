package output

import (
	"sort"

	"github.com/maxvaer/hostprobe/internal/probe"
)

// SortedWriter buffers verdicts and replays them sorted by a field when
// WriteFooter is called. It wraps any other Writer.
type SortedWriter struct {
	inner    Writer
	sortBy   string
	verdicts []*probe.Verdict
}

// NewSortedWriter wraps inner and buffers verdicts for sorted replay.
func NewSortedWriter(inner Writer, sortBy string) *SortedWriter {
	return &SortedWriter{inner: inner, sortBy: sortBy}
}

func (w *SortedWriter) WriteHeader() error {
	return w.inner.WriteHeader()
}

func (w *SortedWriter) WriteVerdict(v *probe.Verdict) error {
	cpy := *v
	w.verdicts = append(w.verdicts, &cpy)
	return nil
}

func (w *SortedWriter) WriteFooter(stats Stats) error {
	sort.Slice(w.verdicts, func(i, j int) bool {
		switch w.sortBy {
		case "verdict":
			return w.verdicts[i].Kind < w.verdicts[j].Kind
		case "status":
			return w.verdicts[i].Outcome.StatusCode < w.verdicts[j].Outcome.StatusCode
		case "elapsed":
			return w.verdicts[i].Outcome.Duration < w.verdicts[j].Outcome.Duration
		case "check":
			return w.verdicts[i].Spec.Label < w.verdicts[j].Spec.Label
		default:
			return false
		}
	})
	for _, v := range w.verdicts {
		if err := w.inner.WriteVerdict(v); err != nil {
			return err
		}
	}
	return w.inner.WriteFooter(stats)
}

func (w *SortedWriter) Close() error {
	return w.inner.Close()
}
