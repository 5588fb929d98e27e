package probe

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Throttler spaces probes out. In adaptive mode it backs off
// exponentially on 429 or 503 answers and on error streaks, then
// recovers toward the base delay while responses stay healthy.
type Throttler struct {
	mu           sync.Mutex
	baseDelay    time.Duration
	currentDelay time.Duration
	maxDelay     time.Duration
	consecutive  int // consecutive throttle signals
	adaptive     bool
	quiet        bool
}

// NewThrottler creates a throttler with the given per-probe base delay.
func NewThrottler(baseDelay time.Duration, adaptive, quiet bool) *Throttler {
	return &Throttler{
		baseDelay:    baseDelay,
		currentDelay: baseDelay,
		maxDelay:     30 * time.Second,
		adaptive:     adaptive,
		quiet:        quiet,
	}
}

// Delay returns the delay a worker should sleep before its next probe.
func (t *Throttler) Delay() time.Duration {
	if !t.adaptive {
		return t.baseDelay
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentDelay
}

// Observe feeds one outcome back into the throttler. Refused
// connections are not a throttle signal; a port scan hitting closed
// ports must not slow itself down.
func (t *Throttler) Observe(out Outcome) {
	if !t.adaptive {
		return
	}
	switch out.Kind {
	case OutcomeBody, OutcomeStatus:
		t.recordStatus(out.StatusCode)
	case OutcomeTimeout, OutcomeNetError:
		t.recordError()
	}
}

func (t *Throttler) recordStatus(statusCode int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if statusCode == 429 || statusCode == 503 {
		t.consecutive++
		t.backOff(fmt.Sprintf("[!] Rate limited (HTTP %d)", statusCode))
		return
	}

	if t.consecutive > 0 {
		t.consecutive = 0
		// Recover gradually: halve toward base, never below it.
		newDelay := t.currentDelay / 2
		if newDelay < t.baseDelay {
			newDelay = t.baseDelay
		}
		if newDelay != t.currentDelay {
			t.currentDelay = newDelay
			if !t.quiet && t.currentDelay > t.baseDelay {
				fmt.Fprintf(os.Stderr, "\n[+] Recovering, delay now %s per probe\n", t.currentDelay)
			}
		}
	}
}

func (t *Throttler) recordError() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.consecutive++
	if t.consecutive >= 3 {
		t.backOff("[!] Repeated errors")
	}
}

// backOff doubles the current delay up to maxDelay. Callers hold mu.
func (t *Throttler) backOff(reason string) {
	newDelay := t.currentDelay * 2
	if newDelay < 500*time.Millisecond {
		newDelay = 500 * time.Millisecond
	}
	if newDelay > t.maxDelay {
		newDelay = t.maxDelay
	}
	if newDelay != t.currentDelay {
		t.currentDelay = newDelay
		if !t.quiet {
			fmt.Fprintf(os.Stderr, "\n%s, backing off to %s per probe\n", reason, t.currentDelay)
		}
	}
}
