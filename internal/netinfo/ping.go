package netinfo

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-ping/ping"
)

// PingResult summarizes an ICMP liveness check.
type PingResult struct {
	Alive    bool
	Sent     int
	Received int
	Loss     float64
	AvgRTT   time.Duration
}

// pinger abstracts the ping library so tests can substitute a fake.
type pinger interface {
	Run() error
	Stop()
	Statistics() *ping.Statistics
}

var newPinger = func(host string) (pinger, error) {
	return ping.NewPinger(host)
}

// Ping sends count echo requests to host and reports liveness. Without
// root the pinger falls back to unprivileged UDP mode.
func Ping(ctx context.Context, host string, count int, timeout time.Duration) (*PingResult, error) {
	p, err := newPinger(host)
	if err != nil {
		return nil, fmt.Errorf("ping %s: %w", host, err)
	}

	if real, ok := p.(*ping.Pinger); ok {
		real.Count = count
		real.Interval = 500 * time.Millisecond
		real.Timeout = timeout
		// Windows has no unprivileged UDP mode in go-ping.
		real.SetPrivileged(runtime.GOOS == "windows" || os.Geteuid() == 0)
	}

	// Run blocks; a watcher stops it when the scan is cancelled.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			p.Stop()
		case <-done:
		}
	}()

	err = p.Run()
	close(done)
	if err != nil {
		return nil, fmt.Errorf("ping %s: %w", host, err)
	}

	stats := p.Statistics()
	return &PingResult{
		Alive:    stats.PacketsRecv > 0,
		Sent:     stats.PacketsSent,
		Received: stats.PacketsRecv,
		Loss:     stats.PacketLoss,
		AvgRTT:   stats.AvgRtt,
	}, nil
}
