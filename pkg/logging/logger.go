// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for tracker components.
//
// It is built on Go's standard library slog package: a leveled JSON handler
// with a service attribute, installed as the process default so every
// package logs through slog directly.
//
//	logger := logging.Setup(logging.Config{Service: "tracker"})
//	logger.Info("starting server", "port", port)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls logger construction.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Empty means "info";
	// the LOG_LEVEL environment variable overrides it.
	Level string

	// Service is attached to every record as the "service" attribute.
	Service string

	// Output defaults to os.Stdout.
	Output io.Writer
}

// ParseLevel maps a level name to its slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds a JSON slog logger and installs it as the process default.
func Setup(cfg Config) *slog.Logger {
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		cfg.Level = env
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)})
	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	slog.SetDefault(logger)
	return logger
}
