package output

import (
	"time"

	"github.com/maxvaer/hostprobe/internal/probe"
)

// ScanInfo identifies one finished report within a session.
type ScanInfo struct {
	ID     string `json:"id"`
	Target string `json:"target"`
}

// Stats holds aggregate statistics for one finished probe run.
type Stats struct {
	Submitted     int           `json:"submitted"`
	Present       int           `json:"present"`
	Absent        int           `json:"absent"`
	Indeterminate int           `json:"indeterminate"`
	Hidden        int           `json:"hidden"` // verdicts suppressed by display filters
	Incomplete    bool          `json:"incomplete"`
	Duration      time.Duration `json:"duration_ns"`
	ProbesPerSec  float64       `json:"probes_per_sec"`
	Scans         []ScanInfo    `json:"scans,omitempty"`
}

// Writer is implemented by each output format.
type Writer interface {
	WriteHeader() error
	WriteVerdict(v *probe.Verdict) error
	WriteFooter(stats Stats) error
	Close() error
}
