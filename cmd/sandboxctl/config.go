package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/sandbox/internal/sandbox"
)

type fileConfig struct {
	Names             []string `toml:"names"`
	Lifetime          string   `toml:"lifetime"`
	LifetimeMS        int64    `toml:"lifetime_ms"`
	Interval          string   `toml:"interval"`
	IntervalMS        int64    `toml:"interval_ms"`
	MetricsListenAddr string   `toml:"metrics_listen_addr"`
	MetricsLinger     string   `toml:"metrics_linger"`
}

func loadServiceConfig(path string) (sandbox.ServiceConfig, error) {
	cfg := sandbox.DefaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return sandbox.ServiceConfig{}, fmt.Errorf("load sandbox config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return sandbox.ServiceConfig{}, fmt.Errorf("load sandbox config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("names") {
		cfg.Names = normalizeNames(raw.Names)
	}

	if meta.IsDefined("lifetime") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Lifetime))
		if err != nil {
			return sandbox.ServiceConfig{}, fmt.Errorf("parse lifetime: %w", err)
		}
		cfg.Lifetime = d
	}

	if meta.IsDefined("lifetime_ms") {
		cfg.Lifetime = time.Duration(raw.LifetimeMS) * time.Millisecond
	}

	if meta.IsDefined("interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Interval))
		if err != nil {
			return sandbox.ServiceConfig{}, fmt.Errorf("parse interval: %w", err)
		}
		cfg.Interval = d
	}

	if meta.IsDefined("interval_ms") {
		cfg.Interval = time.Duration(raw.IntervalMS) * time.Millisecond
	}

	if meta.IsDefined("metrics_listen_addr") {
		cfg.MetricsListenAddr = strings.TrimSpace(raw.MetricsListenAddr)
	}

	if meta.IsDefined("metrics_linger") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.MetricsLinger))
		if err != nil {
			return sandbox.ServiceConfig{}, fmt.Errorf("parse metrics_linger: %w", err)
		}
		cfg.MetricsLinger = d
	}

	if err := cfg.Validate(); err != nil {
		return sandbox.ServiceConfig{}, fmt.Errorf("load sandbox config: %w", err)
	}
	return cfg, nil
}

func normalizeNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, name := range in {
		v := strings.TrimSpace(name)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
