package output

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

// Progress tracks and displays probe progress on stderr.
type Progress struct {
	total         atomic.Int64
	completed     atomic.Int64
	present       atomic.Int64
	indeterminate atomic.Int64
	start         time.Time
	done          chan struct{}
	quiet         bool
}

// NewProgress creates a progress tracker. Call Start() to begin display updates.
func NewProgress(total int, quiet bool) *Progress {
	p := &Progress{
		start: time.Now(),
		done:  make(chan struct{}),
		quiet: quiet,
	}
	p.total.Store(int64(total))
	return p
}

// Start begins periodically printing progress to stderr.
func (p *Progress) Start() {
	if p.quiet {
		return
	}
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.print()
			case <-p.done:
				p.print()
				fmt.Fprint(os.Stderr, "\n")
				return
			}
		}
	}()
}

// Increment records a completed probe.
func (p *Progress) Increment() {
	p.completed.Add(1)
}

// IncrementPresent records a present verdict.
func (p *Progress) IncrementPresent() {
	p.present.Add(1)
}

// IncrementIndeterminate records an indeterminate verdict.
func (p *Progress) IncrementIndeterminate() {
	p.indeterminate.Add(1)
}

// ClearLine erases the progress line so a result row prints cleanly.
func (p *Progress) ClearLine() {
	if p.quiet {
		return
	}
	fmt.Fprint(os.Stderr, "\r\033[K")
}

// Redraw reprints the progress line after other output.
func (p *Progress) Redraw() {
	if p.quiet {
		return
	}
	p.print()
}

// Stop ends the progress display.
func (p *Progress) Stop() {
	close(p.done)
}

func (p *Progress) print() {
	completed := p.completed.Load()
	total := p.total.Load()
	elapsed := time.Since(p.start).Seconds()
	rate := float64(0)
	if elapsed > 0 {
		rate = float64(completed) / elapsed
	}

	pct := float64(0)
	if total > 0 {
		pct = float64(completed) / float64(total) * 100
	}

	eta := ""
	if rate > 0 && completed < total {
		remaining := float64(total-completed) / rate
		eta = fmt.Sprintf("ETA: %s", time.Duration(remaining*float64(time.Second)).Round(time.Second))
	}

	fmt.Fprintf(os.Stderr, "\r\033[K[%3.0f%%] %d/%d | %.0f probes/s | Present: %d | Indeterminate: %d | %s",
		pct, completed, total, rate,
		p.present.Load(), p.indeterminate.Load(), eta)
}
