package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/maxvaer/hostprobe/internal/probe"
)

type jsonEntry struct {
	Check    string `json:"check"`
	Kind     string `json:"kind"`
	Target   string `json:"target"`
	Verdict  string `json:"verdict"`
	Reason   string `json:"reason"`
	Status   int    `json:"status,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Banner   string `json:"banner,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Elapsed  int64  `json:"elapsed_ms"`
}

// JSONWriter writes verdicts as a JSON document.
type JSONWriter struct {
	w       io.Writer
	closer  io.Closer
	entries []jsonEntry
}

// NewJSONWriter creates a JSON output writer.
func NewJSONWriter(outputFile string) (*JSONWriter, error) {
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
	return &JSONWriter{w: w, closer: closer}, nil
}

func (j *JSONWriter) WriteHeader() error { return nil }

func (j *JSONWriter) WriteVerdict(v *probe.Verdict) error {
	j.entries = append(j.entries, jsonEntry{
		Check:    v.Spec.Label,
		Kind:     v.Spec.Kind.String(),
		Target:   TargetOf(&v.Spec),
		Verdict:  v.Kind.String(),
		Reason:   v.Reason,
		Status:   v.Outcome.StatusCode,
		Size:     v.Outcome.ContentLength,
		Banner:   v.Outcome.Banner,
		Redirect: v.Outcome.Redirect,
		Elapsed:  v.Outcome.Duration.Milliseconds(),
	})
	return nil
}

func (j *JSONWriter) WriteFooter(stats Stats) error {
	doc := struct {
		Verdicts []jsonEntry `json:"verdicts"`
		Stats    Stats       `json:"stats"`
	}{j.entries, stats}
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (j *JSONWriter) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
