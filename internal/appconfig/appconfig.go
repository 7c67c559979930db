// Package appconfig resolves runtime settings from flags, environment
// variables, and defaults, following the teacher's file-then-env
// precedence (here: flag default, then environment override, then an
// explicit -flag always wins since flag.Parse runs last).
package appconfig

import (
	"flag"
	"fmt"
	"os"
	"time"
)

const (
	defaultCatalogPath = "config.toml"
	defaultTimeout     = 5 * time.Second
	defaultFormat      = "json"
)

// Config holds every CLI/HTTP-shell-tunable setting.
type Config struct {
	CatalogPath string
	Timeout     time.Duration
	Format      string
	OutPath     string
}

// Parse resolves a Config from args (pass os.Args[1:] in main), honoring
// PHD_CATALOG_PATH and PHD_TRANSPORT_TIMEOUT environment overrides as
// flag defaults, so an explicit command-line flag always wins.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("phdreader", flag.ContinueOnError)

	catalogDefault := defaultCatalogPath
	if v := os.Getenv("PHD_CATALOG_PATH"); v != "" {
		catalogDefault = v
	}
	timeoutDefault := defaultTimeout
	if v := os.Getenv("PHD_TRANSPORT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			timeoutDefault = d
		}
	}

	catalogPath := fs.String("catalog", catalogDefault, "path to the TOML device catalog")
	timeout := fs.Duration("timeout", timeoutDefault, "transport read/write/control timeout")
	format := fs.String("format", defaultFormat, "export format: json or csv")
	out := fs.String("out", "", "export output path (default: phd-export.<format> in the working directory)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		CatalogPath: *catalogPath,
		Timeout:     *timeout,
		Format:      *format,
		OutPath:     *out,
	}
	return cfg, cfg.Validate()
}

// Validate checks fields that flag parsing cannot enforce on its own.
func (c Config) Validate() error {
	if c.Format != "json" && c.Format != "csv" {
		return fmt.Errorf("appconfig: invalid -format %q, want json or csv", c.Format)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("appconfig: -timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
