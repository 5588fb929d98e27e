package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maxvaer/hostprobe/internal/config"
	"github.com/maxvaer/hostprobe/internal/logging"
	"github.com/maxvaer/hostprobe/internal/runner"
	"github.com/spf13/cobra"
)

// minWatchInterval keeps the watcher from hammering its target.
const minWatchInterval = 5 * time.Second

var watchGroups = []flagGroup{
	{"SCHEDULE", []string{"interval", "count"}},
	{"STAGES", []string{"ports", "no-ping", "no-geo", "no-whois", "all"}},
	{"RATE-LIMIT", []string{"workers", "timeout"}},
}

var watchCmd = &cobra.Command{
	Use:   "watch <host>",
	Short: "Watch a server and report changes every interval",
	Long: `Resolves, pings, geolocates, and port-scans one host every interval
until interrupted. Whois runs once per session; geolocation answers
are cached so repeat cycles stay cheap. Press p to pause between
cycles.`,
	Example: `  hostprobe watch example.com
  hostprobe watch example.com --interval 60s --count 10
  hostprobe watch 203.0.113.7 --ports 22,80,443 --all`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}
		opts.Target = args[0]
		if opts.Interval < minWatchInterval {
			return fmt.Errorf("--interval must be at least %s", minWatchInterval)
		}
		logging.Setup(opts.LogLevel, opts.Verbose)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runner.RunWatch(ctx, opts)
	},
}

func init() {
	f := watchCmd.Flags()
	f.DurationP("interval", "i", 30*time.Second, "Time between cycle starts")
	f.IntP("count", "c", 0, "Stop after this many cycles (0 = run until interrupted)")
	f.String("ports", "", "Ports to check (comma-separated, ranges allowed)")
	f.IntP("workers", "t", 0, "Concurrent probes (0 = tool default)")
	f.Duration("timeout", 5*time.Second, "HTTP probe timeout")
	f.Bool("no-ping", false, "Skip the ICMP liveness check")
	f.Bool("no-geo", false, "Skip IP geolocation")
	f.Bool("no-whois", false, "Skip the whois lookup")
	f.Bool("all", false, "Show closed ports too")

	watchCmd.SetHelpFunc(groupedHelp(watchGroups))
	rootCmd.AddCommand(watchCmd)
}
