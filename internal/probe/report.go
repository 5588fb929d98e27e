package probe

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Counts tallies verdicts by kind. Updated incrementally on insertion,
// never recomputed from the verdict slice.
type Counts struct {
	Present       int
	Absent        int
	Indeterminate int
}

// Report aggregates the verdicts of one scan. Insertion is safe under
// concurrent delivery; the remaining fields are read after Finalize.
type Report struct {
	mu sync.Mutex

	ID        string
	Target    string
	Submitted int // number of specs dispatched
	Started   time.Time
	Duration  time.Duration
	Complete  bool // true once every submitted spec has reported
	Verdicts  []Verdict
	Counts    Counts
}

// NewReport starts an empty report for a scan of submitted specs.
func NewReport(target string, submitted int) *Report {
	return &Report{
		ID:        uuid.NewString(),
		Target:    target,
		Submitted: submitted,
		Started:   time.Now(),
		Verdicts:  make([]Verdict, 0, submitted),
	}
}

// Add inserts one verdict and bumps its counter. Must not be called
// after Finalize.
func (r *Report) Add(v Verdict) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Verdicts = append(r.Verdicts, v)
	switch v.Kind {
	case Present:
		r.Counts.Present++
	case Absent:
		r.Counts.Absent++
	default:
		r.Counts.Indeterminate++
	}
}

// Len returns the number of verdicts received so far.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Verdicts)
}

// Finalize stamps the duration and closes the report. The report is
// complete only when every submitted spec produced a verdict; a
// cancelled scan finalizes short and stays marked incomplete.
func (r *Report) Finalize() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Duration = time.Since(r.Started)
	r.Complete = len(r.Verdicts) == r.Submitted
}
