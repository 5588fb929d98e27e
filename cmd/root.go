package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/maxvaer/hostprobe/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var configPath string

type flagGroup struct {
	title string
	flags []string
}

// globalGroup lists the persistent flags every subcommand shares.
var globalGroup = flagGroup{"GLOBAL", []string{
	"config", "output", "format", "sort", "quiet", "no-color", "verbose",
	"log-level", "on-found", "header", "user-agent", "proxy",
}}

var rootCmd = &cobra.Command{
	Use:     "hostprobe <command> [flags]",
	Short:   "Host and identity reconnaissance toolkit",
	Version: version.Version,
	Long: `hostprobe bundles three reconnaissance tools behind one binary: a
social platform username checker, a continuous server watcher, and a
one-shot web server scanner. All three share the same probe engine,
filters, and output formats.`,
	Example: `  hostprobe social johndoe
  hostprobe watch example.com --interval 60s
  hostprobe recon https://example.com --tree
  hostprobe recon --cidr 192.168.1.0/24 --ports 80,443,8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default ~/.config/hostprobe/config.yaml)")
	pf.StringP("output", "o", "", "Output file path")
	pf.String("format", "text", "Output format: text, json, csv")
	pf.String("sort", "", "Sort results: check, status, verdict, elapsed (buffers until done)")
	pf.BoolP("quiet", "q", false, "Minimal output")
	pf.Bool("no-color", false, "Disable colored output")
	pf.BoolP("verbose", "v", false, "Debug logging")
	pf.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	pf.String("on-found", "", "Shell command to run per hit (receives JSON on stdin)")
	pf.StringSliceP("header", "H", nil, "Custom headers (Key: Value)")
	pf.String("user-agent", "", "Custom User-Agent string")
	pf.String("proxy", "", "HTTP/SOCKS proxy URL")

	rootCmd.SetHelpFunc(groupedHelp(nil))
}

// Execute runs the root command.
func Execute() {
	// Rewrite -up to the update command before cobra parses args,
	// since pflag would interpret -up as -u "p".
	for i, arg := range os.Args {
		if arg == "-up" {
			os.Args[i] = "update"
		}
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// groupedHelp renders categorized flag help like httpx. The global
// group is appended to whatever groups the subcommand declares.
func groupedHelp(groups []flagGroup) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprint(w, helpBanner(rootCmd.Version))
		desc := cmd.Long
		if desc == "" {
			desc = cmd.Short
		}
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", desc, cmd.UseLine())
		if cmd.Example != "" {
			fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		}
		if cmd.HasAvailableSubCommands() {
			fmt.Fprintf(w, "\nCommands:\n")
			for _, c := range cmd.Commands() {
				if c.IsAvailableCommand() {
					fmt.Fprintf(w, "   %-10s %s\n", c.Name(), c.Short)
				}
			}
		}
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range append(append([]flagGroup(nil), groups...), globalGroup) {
			printed := false
			for _, name := range g.flags {
				f := cmd.Flags().Lookup(name)
				if f == nil {
					f = cmd.InheritedFlags().Lookup(name)
				}
				if f == nil {
					continue
				}
				if !printed {
					fmt.Fprintf(w, "\n%s:\n", g.title)
					printed = true
				}
				fmt.Fprintln(w, formatFlag(f))
			}
		}
		fmt.Fprintln(w)
	}
}

// intSliceValue implements pflag.Value for comma-separated int slices.
type intSliceValue struct {
	target *[]int
}

func (v *intSliceValue) String() string {
	if v.target == nil || len(*v.target) == 0 {
		return ""
	}
	parts := make([]string, len(*v.target))
	for i, val := range *v.target {
		parts[i] = strconv.Itoa(val)
	}
	return strings.Join(parts, ",")
}

func (v *intSliceValue) Set(s string) error {
	parts := strings.Split(s, ",")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", p, err)
		}
		*v.target = append(*v.target, n)
	}
	return nil
}

func (v *intSliceValue) Type() string { return "ints" }

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	// Pad to fixed column width for aligned descriptions.
	const col = 36
	for len(left) < col {
		left += " "
	}

	right := f.Usage
	// Show default for non-zero values.
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "0s" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}

func helpBanner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
    __               __                  __
   / /_  ____  ____/ /_____  _________  / /_  ___
  / __ \/ __ \/ ___/ __/ __ \/ ___/ __ \/ __ \/ _ \
 / / / / /_/ (__  ) /_/ /_/ / /  / /_/ / /_/ /  __/
/_/ /_/\____/____/\__/ .___/_/   \____/_.___/\___/   %s
                    /_/

`, ver)
}
