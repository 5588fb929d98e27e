package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/maxvaer/hostprobe/internal/probe"
)

// CSVWriter writes verdicts in CSV format.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVWriter creates a CSV output writer.
func NewCSVWriter(outputFile string) (*CSVWriter, error) {
	var w io.Writer = os.Stdout
	var closer io.Closer
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, err
		}
		w = f
		closer = f
	}
	return &CSVWriter{w: csv.NewWriter(w), closer: closer}, nil
}

func (c *CSVWriter) WriteHeader() error {
	return c.w.Write([]string{"check", "kind", "target", "verdict", "reason", "status", "redirect", "elapsed_ms"})
}

func (c *CSVWriter) WriteVerdict(v *probe.Verdict) error {
	return c.w.Write([]string{
		v.Spec.Label,
		v.Spec.Kind.String(),
		TargetOf(&v.Spec),
		v.Kind.String(),
		v.Reason,
		fmt.Sprintf("%d", v.Outcome.StatusCode),
		v.Outcome.Redirect,
		fmt.Sprintf("%d", v.Outcome.Duration.Milliseconds()),
	})
}

func (c *CSVWriter) WriteFooter(_ Stats) error {
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
