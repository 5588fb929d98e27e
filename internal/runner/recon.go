package runner

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/maxvaer/hostprobe/internal/config"
	"github.com/maxvaer/hostprobe/internal/netinfo"
	"github.com/maxvaer/hostprobe/internal/netutil"
	"github.com/maxvaer/hostprobe/internal/output"
	"github.com/maxvaer/hostprobe/internal/probe"
	"github.com/maxvaer/hostprobe/internal/probeset"
	"github.com/maxvaer/hostprobe/internal/webinfo"
	"github.com/maxvaer/hostprobe/pkg/version"
	"github.com/rs/zerolog/log"
)

const (
	// reconPortTimeout bounds TCP probes during the port stage.
	reconPortTimeout = 2 * time.Second
	reconPortWorkers = 20
	reconPathWorkers = 10
)

// RunRecon performs one reconnaissance pass over the target. With
// --cidr set the port stage sweeps every host of the block instead and
// the web stages are skipped.
func RunRecon(ctx context.Context, opts *config.Options) error {
	if opts.CIDR != "" {
		return runReconSweep(ctx, opts)
	}
	return runReconTarget(ctx, opts)
}

func runReconTarget(ctx context.Context, opts *config.Options) error {
	host, baseURL, err := netutil.ParseTarget(opts.Target)
	if err != nil {
		return err
	}

	ports := probeset.ReconPorts
	if opts.Ports != "" {
		if ports, err = probeset.ParsePorts(opts.Ports); err != nil {
			return err
		}
	}
	paths := probeset.HiddenPaths
	if opts.PathsFile != "" {
		if paths, err = probeset.LoadList(opts.PathsFile); err != nil {
			return fmt.Errorf("loading paths: %w", err)
		}
	}

	probeReq, err := probe.NewRequester(probe.RequesterConfig{
		Timeout:         opts.Timeout,
		Workers:         workersOr(opts, reconPortWorkers),
		UserAgent:       opts.UserAgent,
		Proxy:           opts.Proxy,
		Headers:         opts.Headers,
		FollowRedirects: opts.FollowRedirects,
	})
	if err != nil {
		return fmt.Errorf("creating requester: %w", err)
	}
	// Content fetches follow redirects so analysis lands on the real
	// page; path probes never do, a 301 is a finding of its own.
	contentReq, err := probe.NewRequester(probe.RequesterConfig{
		Timeout:         opts.Timeout,
		Workers:         2,
		UserAgent:       opts.UserAgent,
		Proxy:           opts.Proxy,
		Headers:         opts.Headers,
		FollowRedirects: true,
		KeepBody:        true,
	})
	if err != nil {
		return fmt.Errorf("creating requester: %w", err)
	}

	exec := probe.NewExecutor(probeReq, reconPortTimeout).WithBanners()

	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if !opts.Quiet {
		printReconBanner(opts, baseURL, len(ports), len(paths))
	}

	// Reachability gates the whole run; nothing gets dispatched against
	// a dead target.
	reach, err := checkReachable(ctx, exec, baseURL, opts.Timeout)
	if err != nil {
		return err
	}
	if reach.Kind != probe.Present {
		return fmt.Errorf("target %s is unreachable: %s", baseURL, reach.Reason)
	}
	// The scheme that answered becomes the base for every later stage,
	// so an http target behind a TLS-only server still gets scanned.
	if scheme := reach.Outcome.Scheme; scheme != "" && !strings.HasPrefix(baseURL, scheme+"://") {
		if rest, ok := strings.CutPrefix(baseURL, "http://"); ok {
			baseURL = scheme + "://" + rest
			fmt.Fprintf(os.Stderr, "[*] Target answers on %s, continuing with %s\n", scheme, baseURL)
		}
	}

	pauser, restore := startStdinToggle(opts.Quiet)
	defer restore()

	if err := s.out.WriteHeader(); err != nil {
		return err
	}

	printHeaderSection(opts, &reach)

	if !opts.Quiet {
		addrs, dnsErr := netinfo.Resolve(ctx, host)
		printDNSSection(ctx, opts, host, addrs, dnsErr)
		printWhoisSection(opts, host)
		if addrs != nil {
			printGeoSection(ctx, opts, s, addrs.Primary)
		}
	}

	var portReport *probe.Report
	if !opts.SkipPorts && ctx.Err() == nil {
		specs := probeset.PortSpecs(host, ports)
		if !opts.Quiet {
			fmt.Fprintf(os.Stderr, "\n[*] Scanning %d ports on %s\n", len(specs), host)
		}
		portReport = probe.NewReport(host, len(specs))
		cfg := probe.Config{Workers: workersOr(opts, reconPortWorkers), Timeout: reconPortTimeout, Pauser: pauser}
		if err := s.drain(ctx, exec, specs, cfg, portReport, nil); err != nil {
			return err
		}
		s.finish(portReport)
		if !opts.Quiet {
			fmt.Fprintf(os.Stderr, "[+] %d of %d ports open\n", portReport.Counts.Present, portReport.Len())
		}
	}

	printContentSection(ctx, opts, contentReq, baseURL)
	printRobotsSection(ctx, opts, contentReq, baseURL)

	var pathReport *probe.Report
	if !opts.SkipPaths && ctx.Err() == nil {
		specs := probeset.PathSpecs(baseURL, paths)
		if !opts.Quiet {
			fmt.Fprintf(os.Stderr, "\n[*] Probing %d paths under %s\n", len(specs), baseURL)
		}
		pathReport = probe.NewReport(baseURL, len(specs))
		progress := output.NewProgress(len(specs), opts.Quiet)
		progress.Start()
		// Port probes stay unthrottled; closed ports answering slowly
		// must not read as a rate limit.
		cfg := probe.Config{Workers: workersOr(opts, reconPathWorkers), Timeout: opts.Timeout, Pauser: pauser, Throttle: throttlerFor(opts)}
		err := s.drain(ctx, exec, specs, cfg, pathReport, progress)
		progress.Stop()
		if err != nil {
			return err
		}
		s.finish(pathReport)
		if !opts.Quiet {
			fmt.Fprintf(os.Stderr, "[+] %d of %d paths answered\n", pathReport.Counts.Present, pathReport.Len())
		}

		if opts.Tree {
			var found []string
			for i := range pathReport.Verdicts {
				if pathReport.Verdicts[i].Kind == probe.Present {
					found = append(found, pathReport.Verdicts[i].Spec.Label)
				}
			}
			sort.Strings(found)
			output.PrintTree(os.Stdout, found)
		}
	}

	if err := s.out.WriteFooter(s.stats()); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("scan interrupted")
	}
	return nil
}

// runReconSweep port-scans every host of a CIDR block.
func runReconSweep(ctx context.Context, opts *config.Options) error {
	hosts, err := netutil.ExpandCIDR(opts.CIDR)
	if err != nil {
		return err
	}

	ports := probeset.ReconPorts
	if opts.Ports != "" {
		if ports, err = probeset.ParsePorts(opts.Ports); err != nil {
			return err
		}
	}

	req, err := probe.NewRequester(probe.RequesterConfig{
		Timeout:   opts.Timeout,
		Workers:   workersOr(opts, reconPortWorkers),
		UserAgent: opts.UserAgent,
		Proxy:     opts.Proxy,
	})
	if err != nil {
		return fmt.Errorf("creating requester: %w", err)
	}
	exec := probe.NewExecutor(req, reconPortTimeout).WithBanners()

	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	pauser, restore := startStdinToggle(opts.Quiet)
	defer restore()

	specs := make([]probe.Spec, 0, len(hosts)*len(ports))
	for _, h := range hosts {
		specs = append(specs, probeset.PortSpecs(h, ports)...)
	}
	if !opts.Quiet {
		fmt.Fprintf(os.Stderr, "[*] Sweeping %d hosts over %d ports (%d probes)\n", len(hosts), len(ports), len(specs))
	}

	if err := s.out.WriteHeader(); err != nil {
		return err
	}

	report := probe.NewReport(opts.CIDR, len(specs))
	progress := output.NewProgress(len(specs), opts.Quiet)
	progress.Start()
	cfg := probe.Config{Workers: workersOr(opts, reconPortWorkers), Timeout: reconPortTimeout, Pauser: pauser}
	err = s.drain(ctx, exec, specs, cfg, report, progress)
	progress.Stop()
	if err != nil {
		return err
	}
	s.finish(report)

	if err := s.out.WriteFooter(s.stats()); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("scan interrupted")
	}
	return nil
}

// checkReachable sends the single header fetch that gates the run.
func checkReachable(ctx context.Context, exec *probe.Executor, baseURL string, timeout time.Duration) (probe.Verdict, error) {
	specs := []probe.Spec{probeset.HeaderSpec(baseURL)}
	report := probe.NewReport(baseURL, len(specs))
	for out := range probe.Run(ctx, exec, specs, probe.Config{Workers: 1, Timeout: timeout}) {
		report.Add(probe.Classify(out))
	}
	report.Finalize()
	if report.Len() == 0 {
		return probe.Verdict{}, fmt.Errorf("reachability check cancelled")
	}
	return report.Verdicts[0], nil
}

func printHeaderSection(opts *config.Options, v *probe.Verdict) {
	if opts.Quiet {
		return
	}
	d, rs := "\033[2m", "\033[0m"
	if opts.NoColor {
		d, rs = "", ""
	}
	out := v.Outcome
	fmt.Printf("\n[*] Server responded %d via %s (%s)\n", out.StatusCode, out.Scheme, out.Duration.Round(time.Millisecond))
	for _, h := range probeset.InterestingHeaders {
		if val := out.Header.Get(h); val != "" {
			fmt.Printf("    %s%s:%s %s\n", d, h, rs, val)
		}
	}
}

func printDNSSection(ctx context.Context, opts *config.Options, host string, addrs *netinfo.Addrs, err error) {
	if opts.Quiet || ctx.Err() != nil {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "[!] DNS lookup failed: %v\n", err)
		return
	}
	fmt.Printf("\n[*] DNS for %s\n", host)
	fmt.Printf("    Addresses: %s\n", strings.Join(addrs.All, ", "))
	if cname := netinfo.CNAME(ctx, host); cname != "" {
		fmt.Printf("    CNAME:     %s\n", cname)
	}
	if names := netinfo.Reverse(ctx, addrs.Primary); len(names) > 0 {
		fmt.Printf("    PTR:       %s\n", strings.Join(names, ", "))
	}
	if net.ParseIP(host) != nil {
		return
	}
	sets, err := netinfo.Records(ctx, netinfo.WhoisTarget(host))
	if err != nil {
		log.Debug().Err(err).Msg("record query failed")
		return
	}
	for _, set := range sets {
		fmt.Printf("    %-10s %s\n", set.Type+":", strings.Join(set.Values, ", "))
	}
}

func printWhoisSection(opts *config.Options, host string) {
	if opts.Quiet || opts.NoWhois || net.ParseIP(host) != nil {
		return
	}
	sum, err := netinfo.Whois(netinfo.WhoisTarget(host))
	if err != nil {
		log.Debug().Err(err).Msg("whois failed")
		return
	}
	fmt.Printf("\n[*] Whois for %s\n", sum.Domain)
	if sum.Registrar != "" {
		fmt.Printf("    Registrar: %s\n", sum.Registrar)
	}
	if sum.Created != "" {
		fmt.Printf("    Created:   %s\n", sum.Created)
	}
	if sum.Updated != "" {
		fmt.Printf("    Updated:   %s\n", sum.Updated)
	}
	if sum.Expires != "" {
		fmt.Printf("    Expires:   %s\n", sum.Expires)
	}
	if len(sum.NameServers) > 0 {
		fmt.Printf("    NS:        %s\n", strings.Join(sum.NameServers, ", "))
	}
	if len(sum.Status) > 0 {
		fmt.Printf("    Status:    %s\n", strings.Join(sum.Status, ", "))
	}
}

func printGeoSection(ctx context.Context, opts *config.Options, s *Session, ip string) {
	if opts.Quiet || opts.NoGeo || ctx.Err() != nil {
		return
	}
	loc, err := s.geo.Lookup(ctx, ip)
	if err != nil {
		log.Debug().Err(err).Str("ip", ip).Msg("geo lookup failed")
		return
	}
	fmt.Printf("\n[*] Location for %s\n", ip)
	fmt.Printf("    Place:     %s, %s, %s\n", loc.City, loc.Region, loc.Country)
	fmt.Printf("    Network:   %s (%s)\n", loc.ISP, loc.AS)
	fmt.Printf("    Timezone:  %s\n", loc.Timezone)
}

func printContentSection(ctx context.Context, opts *config.Options, req *probe.Requester, baseURL string) {
	if opts.Quiet || ctx.Err() != nil {
		return
	}
	resp, err := req.Do(ctx, http.MethodGet, baseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[!] Content fetch failed: %v\n", err)
		return
	}
	page := webinfo.Analyze(resp.Body, baseURL)

	fmt.Printf("\n[*] Page at %s\n", baseURL)
	if page.Title != "" {
		fmt.Printf("    Title:       %s\n", page.Title)
	}
	if page.Description != "" {
		fmt.Printf("    Description: %s\n", page.Description)
	}
	fmt.Printf("    Links:       %d internal, %d external\n", len(page.Links.Internal), len(page.Links.External))
	for _, l := range page.Links.External {
		fmt.Printf("      %s\n", l)
	}
	if len(page.Scripts) > 0 {
		fmt.Printf("    Scripts:     %d external\n", len(page.Scripts))
		for _, src := range page.Scripts {
			fmt.Printf("      %s\n", src)
		}
	}
	if len(page.HiddenInputs) > 0 {
		fmt.Printf("    Hidden form fields:\n")
		for _, in := range page.HiddenInputs {
			fmt.Printf("      %s = %q\n", in.Name, in.Value)
		}
	}
	if len(page.Comments) > 0 {
		fmt.Printf("    HTML comments:\n")
		for _, cm := range page.Comments {
			fmt.Printf("      %s\n", cm)
		}
	}
}

func printRobotsSection(ctx context.Context, opts *config.Options, req *probe.Requester, baseURL string) {
	if opts.Quiet || ctx.Err() != nil {
		return
	}
	resp, err := req.Do(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/robots.txt")
	if err != nil || resp.StatusCode != http.StatusOK {
		return
	}
	robots := webinfo.ParseRobots(resp.Body)
	if robots.Empty() {
		return
	}
	fmt.Printf("\n[*] robots.txt\n")
	for _, p := range robots.Disallow {
		fmt.Printf("    Disallow: %s\n", p)
	}
	for _, p := range robots.Allow {
		fmt.Printf("    Allow:    %s\n", p)
	}
}

func printReconBanner(opts *config.Options, baseURL string, portCount, pathCount int) {
	const (
		cyan  = "\033[36m"
		white = "\033[97m"
		dim   = "\033[2m"
		reset = "\033[0m"
	)

	c, w, d, rs := cyan, white, dim, reset
	if opts.NoColor {
		c, w, d, rs = "", "", "", ""
	}

	fmt.Fprintf(os.Stderr, `
%s    __               __                  __         %s
%s   / /_  ____  ____/ /_____  _________  / /_  ___   %s
%s  / __ \/ __ \/ ___/ __/ __ \/ ___/ __ \/ __ \/ _ \  %s
%s / / / / /_/ (__  ) /_/ /_/ / /  / /_/ / /_/ /  __/  %s
%s/_/ /_/\____/____/\__/ .___/_/   \____/_.___/\___/   %s %sv%s%s
%s                    /_/                              %s
`,
		c, rs,
		c, rs,
		c, rs,
		c, rs,
		c, rs, d, version.Version, rs,
		c, rs,
	)

	fmt.Fprintf(os.Stderr, "%s  ──────────────────────────────────────%s\n", d, rs)
	fmt.Fprintf(os.Stderr, "  %sTarget:%s   %s%s%s\n", d, rs, w, baseURL, rs)
	fmt.Fprintf(os.Stderr, "  %sPorts:%s    %d\n", d, rs, portCount)
	fmt.Fprintf(os.Stderr, "  %sPaths:%s    %d\n", d, rs, pathCount)
	fmt.Fprintf(os.Stderr, "%s  ──────────────────────────────────────%s\n", d, rs)
}
