package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maxvaer/hostprobe/internal/config"
	"github.com/maxvaer/hostprobe/internal/logging"
	"github.com/maxvaer/hostprobe/internal/runner"
	"github.com/spf13/cobra"
)

var socialGroups = []flagGroup{
	{"RATE-LIMIT", []string{"workers", "timeout", "delay", "throttle"}},
	{"FILTERS", []string{"all"}},
}

var socialCmd = &cobra.Command{
	Use:   "social <username>...",
	Short: "Check usernames across social platforms",
	Long: `Checks each username against the builtin platform table and reports
where it exists. Platforms serving their "no such user" page with a
200 are caught by per-platform body markers. Without arguments,
usernames are read from stdin, one per line.`,
	Example: `  hostprobe social johndoe
  hostprobe social johndoe jane_doe --all
  cat usernames.txt | hostprobe social -o found.json --format json`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}
		opts.Usernames = args
		logging.Setup(opts.LogLevel, opts.Verbose)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runner.RunSocial(ctx, opts)
	},
}

func init() {
	f := socialCmd.Flags()
	f.IntP("workers", "t", 0, "Concurrent probes (0 = tool default)")
	f.Duration("timeout", 10*time.Second, "Per-probe timeout")
	f.Duration("delay", 0, "Delay between probes per worker")
	f.Bool("throttle", false, "Adaptive back-off on 429/503 and error streaks")
	f.Bool("all", false, "Show absent and indeterminate results too")

	socialCmd.SetHelpFunc(groupedHelp(socialGroups))
	rootCmd.AddCommand(socialCmd)
}
