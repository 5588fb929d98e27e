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

var reconGroups = []flagGroup{
	{"TARGET", []string{"cidr", "ports", "paths"}},
	{"STAGES", []string{"skip-ports", "skip-paths", "no-geo", "no-whois", "tree"}},
	{"FILTERS", []string{"all", "include-status", "exclude-status", "filter-size"}},
	{"RATE-LIMIT", []string{"workers", "timeout", "delay", "throttle"}},
	{"HTTP", []string{"follow-redirects"}},
}

var (
	reconIncludeStatus []int
	reconExcludeStatus []int
	reconFilterSizes   []int
)

var reconCmd = &cobra.Command{
	Use:   "recon <target>",
	Short: "Scan a web server: ports, DNS, whois, content, hidden paths",
	Long: `Runs one reconnaissance pass over a target: reachability, response
headers, DNS records, whois, geolocation, a port scan with banners,
landing page analysis, robots.txt, and a probe of commonly hidden
paths. With --cidr, sweeps the port scan across a whole block
instead.`,
	Example: `  hostprobe recon https://example.com
  hostprobe recon example.com --ports 80,443,8000-8100 --tree
  hostprobe recon example.com --paths wordlist.txt -x 404,500
  hostprobe recon --cidr 192.168.1.0/24 --ports 80,443`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cidr, _ := cmd.Flags().GetString("cidr")
		if len(args) == 0 && cidr == "" {
			_ = cmd.Help()
			fmt.Fprintln(os.Stderr)
			return fmt.Errorf("target required: pass a host or --cidr")
		}
		if len(reconIncludeStatus) > 0 && len(reconExcludeStatus) > 0 {
			return fmt.Errorf("--include-status and --exclude-status are mutually exclusive")
		}
		switch sort, _ := cmd.Flags().GetString("sort"); sort {
		case "", "check", "status", "verdict", "elapsed":
		default:
			return fmt.Errorf("--sort must be one of: check, status, verdict, elapsed")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}
		if len(args) > 0 {
			opts.Target = args[0]
		}
		logging.Setup(opts.LogLevel, opts.Verbose)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runner.RunRecon(ctx, opts)
	},
}

func init() {
	f := reconCmd.Flags()
	f.String("cidr", "", "CIDR block to port-sweep (e.g. 192.168.1.0/24)")
	f.String("ports", "", "Ports to scan (comma-separated, ranges allowed)")
	f.StringP("paths", "w", "", "Path list file (default: built-in)")
	f.Bool("skip-ports", false, "Skip the port scan stage")
	f.Bool("skip-paths", false, "Skip the hidden path stage")
	f.Bool("no-geo", false, "Skip IP geolocation")
	f.Bool("no-whois", false, "Skip the whois lookup")
	f.Bool("tree", false, "Print discovered paths as a tree")
	f.Bool("all", false, "Show absent and indeterminate results too")
	f.VarP(&intSliceValue{target: &reconIncludeStatus}, "include-status", "i", "Only show these status codes (comma-separated)")
	f.VarP(&intSliceValue{target: &reconExcludeStatus}, "exclude-status", "x", "Hide these status codes (comma-separated)")
	f.Var(&intSliceValue{target: &reconFilterSizes}, "filter-size", "Hide responses of these body sizes (comma-separated)")
	f.IntP("workers", "t", 0, "Concurrent probes (0 = stage default)")
	f.Duration("timeout", 5*time.Second, "HTTP probe timeout")
	f.Duration("delay", 0, "Delay between path probes per worker")
	f.Bool("throttle", false, "Adaptive back-off on 429/503 and error streaks")
	f.Bool("follow-redirects", false, "Follow redirects on path probes")

	reconCmd.SetHelpFunc(groupedHelp(reconGroups))
	rootCmd.AddCommand(reconCmd)
}
