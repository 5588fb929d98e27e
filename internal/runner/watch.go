package runner

import (
	"context"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/maxvaer/hostprobe/internal/config"
	"github.com/maxvaer/hostprobe/internal/geo"
	"github.com/maxvaer/hostprobe/internal/netinfo"
	"github.com/maxvaer/hostprobe/internal/netutil"
	"github.com/maxvaer/hostprobe/internal/probe"
	"github.com/maxvaer/hostprobe/internal/probeset"
	"github.com/rs/zerolog/log"
)

const (
	defaultWatchWorkers = 10
	// watchPortTimeout bounds each TCP probe of a cycle. A closed or
	// filtered port should not hold the cycle up for the HTTP timeout.
	watchPortTimeout = time.Second
	// pingCount is the number of echo requests per liveness check.
	pingCount = 2
)

// watchState carries observations across cycles.
type watchState struct {
	cycles    int
	servers   map[string]struct{}
	whoisDone bool
}

// RunWatch gathers live information about one host every interval until
// interrupted or the cycle count is reached. The p key pauses between
// cycles.
func RunWatch(ctx context.Context, opts *config.Options) error {
	host, baseURL, err := netutil.ParseTarget(opts.Target)
	if err != nil {
		return err
	}

	ports := probeset.WatchPorts
	if opts.Ports != "" {
		if ports, err = probeset.ParsePorts(opts.Ports); err != nil {
			return err
		}
	}

	req, err := probe.NewRequester(probe.RequesterConfig{
		Timeout:   opts.Timeout,
		Workers:   workersOr(opts, defaultWatchWorkers),
		UserAgent: opts.UserAgent,
		Proxy:     opts.Proxy,
		Headers:   opts.Headers,
	})
	if err != nil {
		return fmt.Errorf("creating requester: %w", err)
	}
	exec := probe.NewExecutor(req, watchPortTimeout).WithBanners()

	geoCache := geo.NewCache(geo.NewClient(geo.ClientConfig{UserAgent: opts.UserAgent}))

	pauser, restore := startStdinToggle(opts.Quiet)
	defer restore()

	state := &watchState{servers: make(map[string]struct{})}

	for {
		if pauser != nil {
			// A pause holds between cycles, never inside one.
			pauser.Wait()
		}
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		watchCycle(ctx, opts, exec, geoCache, host, baseURL, ports, state)
		state.cycles++

		if opts.Count > 0 && state.cycles >= opts.Count {
			break
		}

		// The interval is a lower bound between cycle starts; a slow
		// cycle rolls straight into the next one.
		sleep := opts.Interval - time.Since(start)
		if sleep < 0 {
			sleep = 0
		}
		select {
		case <-ctx.Done():
		case <-time.After(sleep):
		}
		if ctx.Err() != nil {
			break
		}
	}

	printWatchSummary(opts, host, state, geoCache.Size())
	return nil
}

// watchCycle runs one round of checks and prints a timestamped section
// for it.
func watchCycle(ctx context.Context, opts *config.Options, exec *probe.Executor, geoCache *geo.Cache, host, baseURL string, ports []int, state *watchState) {
	const (
		dim    = "\033[2m"
		cyan   = "\033[36m"
		green  = "\033[32m"
		yellow = "\033[33m"
		red    = "\033[31m"
		reset  = "\033[0m"
	)
	d, c, g, y, r, rs := dim, cyan, green, yellow, red, reset
	if opts.NoColor {
		d, c, g, y, r, rs = "", "", "", "", "", ""
	}
	w := os.Stdout
	start := time.Now()

	fmt.Fprintf(w, "\n%s────────────────────────────────────────────────────────%s\n", d, rs)
	fmt.Fprintf(w, " %s%s%s  cycle %d  %s%s%s\n", c, host, rs, state.cycles+1, d, start.Format("2006-01-02 15:04:05"), rs)
	fmt.Fprintf(w, "%s────────────────────────────────────────────────────────%s\n", d, rs)

	addrs, err := netinfo.Resolve(ctx, host)
	if err != nil {
		fmt.Fprintf(w, " %s[!]%s DNS lookup failed: %v\n", r, rs, err)
		return
	}
	fmt.Fprintf(w, " Address:    %s", addrs.Primary)
	if n := len(addrs.All) - 1; n > 0 {
		fmt.Fprintf(w, "  %s(+%d more)%s", d, n, rs)
	}
	fmt.Fprintln(w)
	if names := netinfo.Reverse(ctx, addrs.Primary); len(names) > 0 {
		fmt.Fprintf(w, " PTR:        %s\n", strings.Join(names, ", "))
	}

	if !opts.NoPing {
		if res, err := netinfo.Ping(ctx, addrs.Primary, pingCount, opts.Timeout); err == nil {
			alive := g + "alive" + rs
			if !res.Alive {
				alive = r + "no reply" + rs
			}
			fmt.Fprintf(w, " Ping:       %s  %d/%d received, avg %s\n",
				alive, res.Received, res.Sent, res.AvgRTT.Round(time.Millisecond))
		} else {
			log.Debug().Err(err).Msg("ping failed")
		}
	}

	if !opts.NoGeo {
		if loc, err := geoCache.Lookup(ctx, addrs.Primary); err == nil {
			fmt.Fprintf(w, " Location:   %s, %s, %s\n", loc.City, loc.Region, loc.Country)
			fmt.Fprintf(w, " Network:    %s %s(%s)%s\n", loc.ISP, d, loc.AS, rs)
		} else {
			log.Debug().Err(err).Str("ip", addrs.Primary).Msg("geo lookup failed")
		}
	}

	// Registration data barely changes; fetch it once per session.
	if !opts.NoWhois && !state.whoisDone && net.ParseIP(host) == nil {
		state.whoisDone = true
		if sum, err := netinfo.Whois(netinfo.WhoisTarget(host)); err == nil {
			if sum.Registrar != "" {
				fmt.Fprintf(w, " Registrar:  %s\n", sum.Registrar)
			}
			if sum.Created != "" {
				fmt.Fprintf(w, " Created:    %s\n", sum.Created)
			}
			if sum.Expires != "" {
				fmt.Fprintf(w, " Expires:    %s\n", sum.Expires)
			}
			if len(sum.NameServers) > 0 {
				fmt.Fprintf(w, " NS:         %s\n", strings.Join(sum.NameServers, ", "))
			}
		} else {
			log.Debug().Err(err).Msg("whois failed")
		}
	}

	headerSpecs := []probe.Spec{probeset.HeaderSpec(baseURL)}
	for out := range probe.Run(ctx, exec, headerSpecs, probe.Config{Workers: 1, Timeout: opts.Timeout}) {
		v := probe.Classify(out)
		if v.Kind != probe.Present {
			fmt.Fprintf(w, " HTTP:       %sno response%s (%s)\n", y, rs, v.Reason)
			continue
		}
		fmt.Fprintf(w, " HTTP:       %d via %s\n", out.StatusCode, out.Scheme)
		if server := out.Header.Get("Server"); server != "" {
			state.servers[server] = struct{}{}
			fmt.Fprintf(w, " Server:     %s\n", server)
		}
		for _, h := range probeset.InterestingHeaders {
			if val := out.Header.Get(h); val != "" {
				fmt.Fprintf(w, "   %s%s:%s %s\n", d, h, rs, val)
			}
		}
	}

	specs := probeset.PortSpecs(host, ports)
	report := probe.NewReport(host, len(specs))
	portCfg := probe.Config{Workers: workersOr(opts, defaultWatchWorkers), Timeout: watchPortTimeout}
	for out := range probe.Run(ctx, exec, specs, portCfg) {
		report.Add(probe.Classify(out))
	}
	report.Finalize()

	verdicts := append([]probe.Verdict(nil), report.Verdicts...)
	sort.Slice(verdicts, func(i, j int) bool { return verdicts[i].Spec.Port < verdicts[j].Spec.Port })

	fmt.Fprintf(w, " Ports:      %d open of %d checked\n", report.Counts.Present, report.Len())
	for _, v := range verdicts {
		switch {
		case v.Kind == probe.Present:
			fmt.Fprintf(w, "   %s[+]%s %-14s open", g, rs, v.Spec.Label)
			if v.Outcome.Banner != "" {
				fmt.Fprintf(w, "  %s%s%s", d, v.Outcome.Banner, rs)
			}
			fmt.Fprintln(w)
		case opts.All:
			fmt.Fprintf(w, "   %s[-]%s %-14s %s\n", r, rs, v.Spec.Label, v.Reason)
		}
	}
	if !report.Complete {
		fmt.Fprintf(w, " %s[!]%s cycle interrupted: %d of %d probes reported\n", y, rs, report.Len(), report.Submitted)
	}

	fmt.Fprintf(w, " %sCycle took %s%s\n", d, time.Since(start).Round(time.Millisecond), rs)
}

// printWatchSummary prints the end-of-session box.
func printWatchSummary(opts *config.Options, host string, state *watchState, geoEntries int) {
	if opts.Quiet {
		return
	}
	d, wht, rs := "\033[2m", "\033[97m", "\033[0m"
	if opts.NoColor {
		d, wht, rs = "", "", ""
	}

	servers := make([]string, 0, len(state.servers))
	for s := range state.servers {
		servers = append(servers, s)
	}
	sort.Strings(servers)

	fmt.Fprintf(os.Stderr, "\n%s  ────────────────────────────────────%s\n", d, rs)
	fmt.Fprintf(os.Stderr, "  %sWatch summary%s\n", wht, rs)
	fmt.Fprintf(os.Stderr, "  %sHost:%s       %s\n", d, rs, host)
	fmt.Fprintf(os.Stderr, "  %sCycles:%s     %d\n", d, rs, state.cycles)
	if len(servers) > 0 {
		fmt.Fprintf(os.Stderr, "  %sServers:%s    %s\n", d, rs, strings.Join(servers, ", "))
	}
	fmt.Fprintf(os.Stderr, "  %sGeo cache:%s  %d entries\n", d, rs, geoEntries)
	fmt.Fprintf(os.Stderr, "%s  ────────────────────────────────────%s\n", d, rs)
}
