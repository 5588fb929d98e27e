package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/maxvaer/hostprobe/internal/config"
	"github.com/maxvaer/hostprobe/internal/filter"
	"github.com/maxvaer/hostprobe/internal/geo"
	"github.com/maxvaer/hostprobe/internal/hook"
	"github.com/maxvaer/hostprobe/internal/output"
	"github.com/maxvaer/hostprobe/internal/probe"
	"github.com/rs/zerolog/log"
)

// Session bundles the plumbing one tool invocation shares across its
// dispatches: the output writer, the display filter chain, the
// optional found hook, and the geolocation cache.
type Session struct {
	opts    *config.Options
	out     output.Writer
	chain   *filter.Chain
	found   *hook.Runner
	geo     *geo.Cache
	started time.Time
	reports []*probe.Report
	hidden  int
}

func newSession(opts *config.Options) (*Session, error) {
	out, err := createWriter(opts)
	if err != nil {
		return nil, fmt.Errorf("creating output writer: %w", err)
	}

	chain := filter.NewChain()
	if !opts.All {
		chain.Add(filter.NewVerdictFilter(probe.Absent, probe.Indeterminate))
	}
	if len(opts.IncludeStatus) > 0 || len(opts.ExcludeStatus) > 0 {
		chain.Add(filter.NewStatusFilter(opts.IncludeStatus, opts.ExcludeStatus))
	}
	if len(opts.FilterSizes) > 0 {
		chain.Add(filter.NewSizeFilter(opts.FilterSizes))
	}

	s := &Session{
		opts:    opts,
		out:     out,
		chain:   chain,
		geo:     geo.NewCache(geo.NewClient(geo.ClientConfig{UserAgent: opts.UserAgent})),
		started: time.Now(),
	}
	if opts.OnFound != "" {
		s.found = hook.NewRunner(opts.OnFound, opts.Quiet)
	}
	return s, nil
}

// createWriter picks the writer for the configured format and wraps it
// for sorted replay when requested.
func createWriter(opts *config.Options) (output.Writer, error) {
	var (
		w   output.Writer
		err error
	)
	switch opts.OutputFormat {
	case "json":
		w, err = output.NewJSONWriter(opts.OutputFile)
	case "csv":
		w, err = output.NewCSVWriter(opts.OutputFile)
	default:
		w, err = output.NewTextWriter(opts.OutputFile, opts.NoColor, opts.Quiet)
	}
	if err != nil {
		return nil, err
	}
	if opts.SortBy != "" {
		w = output.NewSortedWriter(w, opts.SortBy)
	}
	return w, nil
}

// drain consumes every outcome of one dispatch: classify, add to the
// report, then filter for display and write. It returns once the
// outcome channel closes, which marks the dispatch drained whether it
// completed or was cancelled.
func (s *Session) drain(ctx context.Context, exec *probe.Executor, specs []probe.Spec, cfg probe.Config, report *probe.Report, progress *output.Progress) error {
	for out := range probe.Run(ctx, exec, specs, cfg) {
		v := probe.Classify(out)
		report.Add(v)
		log.Debug().
			Str("check", v.Spec.Label).
			Str("outcome", out.Kind.String()).
			Str("verdict", v.Kind.String()).
			Dur("elapsed", out.Duration).
			Msg("probe done")

		if progress != nil {
			progress.Increment()
			switch v.Kind {
			case probe.Present:
				progress.IncrementPresent()
			case probe.Indeterminate:
				progress.IncrementIndeterminate()
			}
		}

		if hidden, name := s.chain.Apply(&v); hidden {
			s.hidden++
			log.Debug().Str("filter", name).Str("check", v.Spec.Label).Msg("verdict hidden")
			continue
		}

		if progress != nil {
			progress.ClearLine()
		}
		err := s.out.WriteVerdict(&v)
		if progress != nil {
			progress.Redraw()
		}
		if err != nil {
			return err
		}

		if s.found != nil && v.Kind == probe.Present {
			s.found.Run(&v)
		}
	}
	return nil
}

// finish finalizes a report and keeps it for the session footer.
func (s *Session) finish(report *probe.Report) {
	report.Finalize()
	s.reports = append(s.reports, report)
}

// stats merges every finished report into footer statistics.
func (s *Session) stats() output.Stats {
	var st output.Stats
	total := 0
	for _, r := range s.reports {
		st.Submitted += r.Submitted
		st.Present += r.Counts.Present
		st.Absent += r.Counts.Absent
		st.Indeterminate += r.Counts.Indeterminate
		if !r.Complete {
			st.Incomplete = true
		}
		total += len(r.Verdicts)
		st.Scans = append(st.Scans, output.ScanInfo{ID: r.ID, Target: r.Target})
	}
	st.Hidden = s.hidden
	st.Duration = time.Since(s.started)
	if secs := st.Duration.Seconds(); secs > 0 {
		st.ProbesPerSec = float64(total) / secs
	}
	return st
}

// Close flushes and closes the output writer.
func (s *Session) Close() error {
	return s.out.Close()
}

// workersOr returns the configured worker count or the tool default.
func workersOr(opts *config.Options, def int) int {
	if opts.Workers > 0 {
		return opts.Workers
	}
	return def
}

// throttlerFor builds the probe throttler, or nil when neither a delay
// nor adaptive throttling is configured.
func throttlerFor(opts *config.Options) *probe.Throttler {
	if opts.Delay <= 0 && !opts.Throttle {
		return nil
	}
	return probe.NewThrottler(opts.Delay, opts.Throttle, opts.Quiet)
}
