// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads tracker configuration. Defaults are applied first,
// then an optional YAML file (TRACKER_CONFIG), then environment variables,
// so container env always wins.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/asap007/ExpenseTracker/services/tracker/analytics"
)

// Duration parses YAML strings like "60m" or "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// RetryConfig mirrors analytics.RetryConfig in YAML form.
type RetryConfig struct {
	MaxAttempts   int      `yaml:"max_attempts"`
	BaseDelay     Duration `yaml:"base_delay"`
	BackoffFactor float64  `yaml:"backoff_factor"`
	Jitter        bool     `yaml:"jitter"`
}

// AnalyticsConfig carries the cache/retry/timeout knobs for the analytics
// orchestrator.
type AnalyticsConfig struct {
	InsightsTTL    Duration    `yaml:"insights_ttl"`
	PlanTTL        Duration    `yaml:"plan_ttl"`
	ComputeTimeout Duration    `yaml:"compute_timeout"`
	RefreshTimeout Duration    `yaml:"refresh_timeout"`
	ExpenseWindow  Duration    `yaml:"expense_window"`
	Retry          RetryConfig `yaml:"retry"`
}

// Config is the full tracker configuration.
type Config struct {
	Port          string          `yaml:"port"`
	DBPath        string          `yaml:"db_path"`
	SessionSecret string          `yaml:"session_secret"`
	OTLPEndpoint  string          `yaml:"otlp_endpoint"`
	Analytics     AnalyticsConfig `yaml:"analytics"`
}

func defaults() *Config {
	a := analytics.DefaultConfig()
	return &Config{
		Port:   "8080",
		DBPath: "tracker.db",
		Analytics: AnalyticsConfig{
			InsightsTTL:    Duration(a.InsightsTTL),
			PlanTTL:        Duration(a.PlanTTL),
			ComputeTimeout: Duration(a.ComputeTimeout),
			RefreshTimeout: Duration(a.RefreshTimeout),
			ExpenseWindow:  Duration(a.ExpenseWindow),
			Retry: RetryConfig{
				MaxAttempts:   a.Retry.MaxAttempts,
				BaseDelay:     Duration(a.Retry.BaseDelay),
				BackoffFactor: a.Retry.BackoffFactor,
				Jitter:        a.Retry.JitterEnabled,
			},
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by TRACKER_CONFIG, and environment overrides.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("TRACKER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("TRACKER_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("TRACKER_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.SessionSecret = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}
	if v := os.Getenv("ANALYTICS_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ANALYTICS_MAX_RETRIES %q: %w", v, err)
		}
		cfg.Analytics.Retry.MaxAttempts = n
	}

	return cfg, nil
}

// ServiceConfig converts the analytics section into the orchestrator's
// config type.
func (c *Config) ServiceConfig() analytics.Config {
	return analytics.Config{
		InsightsTTL:    time.Duration(c.Analytics.InsightsTTL),
		PlanTTL:        time.Duration(c.Analytics.PlanTTL),
		ComputeTimeout: time.Duration(c.Analytics.ComputeTimeout),
		RefreshTimeout: time.Duration(c.Analytics.RefreshTimeout),
		ExpenseWindow:  time.Duration(c.Analytics.ExpenseWindow),
		Retry: analytics.RetryConfig{
			MaxAttempts:   c.Analytics.Retry.MaxAttempts,
			BaseDelay:     time.Duration(c.Analytics.Retry.BaseDelay),
			BackoffFactor: c.Analytics.Retry.BackoffFactor,
			JitterEnabled: c.Analytics.Retry.Jitter,
		},
	}
}
