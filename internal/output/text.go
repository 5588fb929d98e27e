package output

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/maxvaer/hostprobe/internal/probe"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

// TextWriter writes colored text output to a writer.
type TextWriter struct {
	w       io.Writer
	noColor bool
	quiet   bool
}

// NewTextWriter creates a text output writer. If outputFile is empty, stdout
// is used. noColor disables ANSI escape codes.
func NewTextWriter(outputFile string, noColor, quiet bool) (*TextWriter, error) {
	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, err
		}
		w = f
	}
	return &TextWriter{w: w, noColor: noColor, quiet: quiet}, nil
}

func (t *TextWriter) WriteHeader() error {
	if t.quiet {
		return nil
	}
	dim := "\033[2m"
	reset := colorReset
	if t.noColor {
		dim = ""
		reset = ""
	}
	_, err := fmt.Fprintf(t.w, "%s     %-18s %-46s %s%s\n", dim, "Check", "Target", "Detail", reset)
	return err
}

func (t *TextWriter) WriteVerdict(v *probe.Verdict) error {
	mark, color := markFor(v.Kind)
	reset := colorReset
	if t.noColor {
		color = ""
		reset = ""
	}

	detail := v.Reason
	if v.Outcome.Banner != "" {
		detail = fmt.Sprintf("%s %q", detail, v.Outcome.Banner)
	}
	if v.Spec.Kind == probe.KindPathProbe && v.Outcome.Kind == probe.OutcomeBody && v.Outcome.ContentLength >= 0 {
		detail = fmt.Sprintf("%s, %d bytes", detail, v.Outcome.ContentLength)
	}
	if v.Outcome.Redirect != "" {
		detail = fmt.Sprintf("%s -> %s", detail, v.Outcome.Redirect)
	}

	_, err := fmt.Fprintf(t.w, "%s%s%s  %-18s %-46s %s\n",
		color, mark, reset,
		v.Spec.Label,
		TargetOf(&v.Spec),
		detail,
	)
	return err
}

func (t *TextWriter) WriteFooter(stats Stats) error {
	if t.quiet {
		return nil
	}
	note := ""
	if stats.Incomplete {
		note = " | incomplete"
	}
	_, err := fmt.Fprintf(os.Stderr,
		"\nPresent: %d | Absent: %d | Indeterminate: %d | Hidden: %d | Duration: %s | %.1f probes/s%s\n",
		stats.Present,
		stats.Absent,
		stats.Indeterminate,
		stats.Hidden,
		stats.Duration.Round(time.Millisecond),
		stats.ProbesPerSec,
		note,
	)
	return err
}

func (t *TextWriter) Close() error {
	if closer, ok := t.w.(io.Closer); ok && t.w != os.Stdout {
		return closer.Close()
	}
	return nil
}

// TargetOf renders the address a spec probes, URL or host:port.
func TargetOf(s *probe.Spec) string {
	if s.Kind == probe.KindTCPConnect {
		return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	}
	return s.URL
}

func markFor(kind probe.VerdictKind) (string, string) {
	switch kind {
	case probe.Present:
		return "[+]", colorGreen
	case probe.Absent:
		return "[-]", colorRed
	default:
		return "[?]", colorYellow
	}
}
