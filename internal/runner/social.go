package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maxvaer/hostprobe/internal/config"
	"github.com/maxvaer/hostprobe/internal/probe"
	"github.com/maxvaer/hostprobe/internal/probeset"
)

// socialUserAgent is the browser identity the platform checks present.
// Several platforms serve bot pages or block outright on bare client
// strings, which would turn every check indeterminate.
const socialUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"

const defaultSocialWorkers = 10

// RunSocial checks one or more usernames against the builtin platform
// table. With no usernames on the command line they are read from
// stdin, one per line.
func RunSocial(ctx context.Context, opts *config.Options) error {
	usernames := opts.Usernames
	if len(usernames) == 0 {
		var err error
		if usernames, err = readLines(os.Stdin); err != nil {
			return fmt.Errorf("reading usernames: %w", err)
		}
	}
	if len(usernames) == 0 {
		return fmt.Errorf("no usernames given")
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = socialUserAgent
	}
	req, err := probe.NewRequester(probe.RequesterConfig{
		Timeout:         opts.Timeout,
		Workers:         workersOr(opts, defaultSocialWorkers),
		UserAgent:       ua,
		Proxy:           opts.Proxy,
		Headers:         opts.Headers,
		FollowRedirects: true,
		KeepBody:        true,
	})
	if err != nil {
		return fmt.Errorf("creating requester: %w", err)
	}

	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.out.WriteHeader(); err != nil {
		return err
	}

	pauser, restore := startStdinToggle(opts.Quiet)
	defer restore()

	exec := probe.NewExecutor(req, opts.Timeout)
	cfg := probe.Config{
		Workers:  workersOr(opts, defaultSocialWorkers),
		Timeout:  opts.Timeout,
		Pauser:   pauser,
		Throttle: throttlerFor(opts),
	}

	for i, username := range usernames {
		if ctx.Err() != nil {
			break
		}
		if !opts.Quiet && len(usernames) > 1 {
			fmt.Fprintf(os.Stderr, "\n[*] Username %d/%d: %s\n", i+1, len(usernames), username)
		}

		specs := probeset.UserSpecs(probeset.Platforms, username)
		report := probe.NewReport(username, len(specs))
		if err := s.drain(ctx, exec, specs, cfg, report, nil); err != nil {
			return err
		}
		s.finish(report)

		if !opts.Quiet {
			fmt.Fprintf(os.Stderr, "[+] %s: present on %d of %d platforms (%.1fs)\n",
				username, report.Counts.Present, report.Len(), report.Duration.Seconds())
		}
	}

	if err := s.out.WriteFooter(s.stats()); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("check interrupted")
	}
	return nil
}

// readLines collects non-empty, non-comment lines from r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}
