package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func testFlags(t *testing.T) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Int("workers", 10, "")
	f.Duration("timeout", 10*time.Second, "")
	f.String("format", "text", "")
	f.Bool("no-color", false, "")
	f.StringSlice("header", nil, "")
	return f
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	opts, err := Load("", testFlags(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if opts.OutputFormat != "text" {
		t.Errorf("OutputFormat = %q, want text", opts.OutputFormat)
	}
	if opts.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", opts.LogLevel)
	}
	if opts.Workers != 10 {
		t.Errorf("Workers = %d, want flag default 10", opts.Workers)
	}
	if opts.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", opts.Timeout)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "workers: 50\nformat: csv\ntimeout: 3s\n")

	opts, err := Load(path, testFlags(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if opts.Workers != 50 {
		t.Errorf("Workers = %d, want 50 from file", opts.Workers)
	}
	if opts.OutputFormat != "csv" {
		t.Errorf("OutputFormat = %q, want csv from file", opts.OutputFormat)
	}
	if opts.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s from file", opts.Timeout)
	}
}

func TestLoadFlagBeatsFile(t *testing.T) {
	path := writeConfig(t, "workers: 50\n")

	flags := testFlags(t)
	if err := flags.Set("workers", "3"); err != nil {
		t.Fatal(err)
	}

	opts, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if opts.Workers != 3 {
		t.Errorf("Workers = %d, want explicit flag value 3", opts.Workers)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "format: csv\n")
	t.Setenv("HOSTPROBE_FORMAT", "json")

	opts, err := Load(path, testFlags(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if opts.OutputFormat != "json" {
		t.Errorf("OutputFormat = %q, want json from env", opts.OutputFormat)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), testFlags(t)); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadParsesHeaders(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	flags := testFlags(t)
	if err := flags.Set("header", "X-Test: yes"); err != nil {
		t.Fatal(err)
	}

	opts, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if opts.Headers["X-Test"] != "yes" {
		t.Errorf("Headers = %v, want X-Test: yes", opts.Headers)
	}
}

func TestLoadRejectsBadHeader(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	flags := testFlags(t)
	if err := flags.Set("header", "no-colon-here"); err != nil {
		t.Fatal(err)
	}

	if _, err := Load("", flags); err == nil {
		t.Error("expected error for header without colon")
	}
}
