package probe

import (
	"context"
	"sync"
	"time"
)

// Config holds options for one probe run.
type Config struct {
	Workers  int
	Timeout  time.Duration // per-probe deadline
	Pauser   *Pauser       // nil = no pause support
	Throttle *Throttler    // nil = full speed
}

// Run fans out specs across a fixed pool of workers and returns a
// channel of outcomes. The channel is closed once every spec has been
// processed, so draining it to exhaustion marks the scan complete.
// Completion order is arbitrary. Every spec yields exactly one outcome
// unless ctx is cancelled first, in which case in-flight probes are
// abandoned and the channel still closes promptly.
func Run(ctx context.Context, exec *Executor, specs []Spec, cfg Config) <-chan Outcome {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	specsCh := make(chan Spec, workers*2)
	outcomesCh := make(chan Outcome, workers*2)

	var wg sync.WaitGroup

	// Producer: feed specs into the channel.
	go func() {
		defer close(specsCh)
		for _, spec := range specs {
			select {
			case specsCh <- spec:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Workers: consume specs, produce outcomes.
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for spec := range specsCh {
				if cfg.Pauser != nil {
					cfg.Pauser.Wait()
				}
				if cfg.Throttle != nil {
					if d := cfg.Throttle.Delay(); d > 0 {
						select {
						case <-time.After(d):
						case <-ctx.Done():
							return
						}
					}
				}
				if ctx.Err() != nil {
					return
				}

				probeCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
				out := exec.Execute(probeCtx, spec)
				cancel()
				if cfg.Throttle != nil {
					cfg.Throttle.Observe(out)
				}

				// A cancelled scan abandons in-flight outcomes rather
				// than delivering them.
				if ctx.Err() != nil {
					return
				}
				select {
				case outcomesCh <- out:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Closer: when all workers finish, close the outcomes channel.
	go func() {
		wg.Wait()
		close(outcomesCh)
	}()

	return outcomesCh
}
