package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Options holds all configuration for a hostprobe run. Positional
// arguments are filled in by the command layer; everything else flows
// through Load.
type Options struct {
	// Target
	Target    string   `koanf:"-"`
	Usernames []string `koanf:"-"`
	CIDR      string   `koanf:"cidr"`
	Ports     string   `koanf:"ports"`
	PathsFile string   `koanf:"paths"`

	// Performance
	Workers  int           `koanf:"workers"`
	Timeout  time.Duration `koanf:"timeout"`
	Interval time.Duration `koanf:"interval"`
	Count    int           `koanf:"count"`
	Delay    time.Duration `koanf:"delay"`
	Throttle bool          `koanf:"throttle"`

	// Stage selection
	All       bool `koanf:"all"`
	NoPing    bool `koanf:"no-ping"`
	NoGeo     bool `koanf:"no-geo"`
	NoWhois   bool `koanf:"no-whois"`
	SkipPorts bool `koanf:"skip-ports"`
	SkipPaths bool `koanf:"skip-paths"`

	// Output
	OutputFile    string `koanf:"output"`
	OutputFormat  string `koanf:"format"`
	SortBy        string `koanf:"sort"`
	Tree          bool   `koanf:"tree"`
	Quiet         bool   `koanf:"quiet"`
	NoColor       bool   `koanf:"no-color"`
	Verbose       bool   `koanf:"verbose"`
	LogLevel      string `koanf:"log-level"`
	OnFound       string `koanf:"on-found"`
	IncludeStatus []int  `koanf:"include-status"`
	ExcludeStatus []int  `koanf:"exclude-status"`
	FilterSizes   []int  `koanf:"filter-size"`

	// HTTP
	RawHeaders      []string          `koanf:"header"`
	Headers         map[string]string `koanf:"-"`
	UserAgent       string            `koanf:"user-agent"`
	Proxy           string            `koanf:"proxy"`
	FollowRedirects bool              `koanf:"follow-redirects"`
}

const envPrefix = "HOSTPROBE_"

// Load layers defaults, an optional YAML config file, HOSTPROBE_*
// environment variables, and command-line flags into one Options value,
// highest source last. An explicitly named config file must exist; the
// default path is skipped silently when missing.
func Load(configFile string, flags *pflag.FlagSet) (*Options, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	path, required := configFile, true
	if path == "" {
		path, required = defaultConfigPath(), false
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		} else if required {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var opts Options
	if err := k.UnmarshalWithConf("", &opts, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := opts.parseHeaders(); err != nil {
		return nil, err
	}
	return &opts, nil
}

// defaults carries only keys that do not vary per subcommand; per-tool
// tunables like workers and timeout live as flag defaults so each tool
// keeps its own baseline.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"format":    "text",
		"log-level": "info",
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hostprobe", "config.yaml")
}

func (o *Options) parseHeaders() error {
	if len(o.RawHeaders) == 0 {
		return nil
	}
	o.Headers = make(map[string]string, len(o.RawHeaders))
	for _, h := range o.RawHeaders {
		key, val, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header format %q, expected 'Key: Value'", h)
		}
		o.Headers[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return nil
}
