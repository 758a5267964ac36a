// Package config loads the modgraph.toml project file.
package config

import (
	"log/slog"
	"strings"
)

type Config struct {
	Version  int      `toml:"version"`
	Project  Project  `toml:"project"`
	Resolver Resolver `toml:"resolver"`
	Driver   Driver   `toml:"driver"`
	Output   Output   `toml:"output"`
	Log      Log      `toml:"log"`
}

type Project struct {
	// Name is the compilation unit name used for crate-level visibility.
	Name        string   `toml:"name"`
	Root        string   `toml:"root"`
	Entry       string   `toml:"entry"`
	StdlibRoot  string   `toml:"stdlib_root"`
	SearchPaths []string `toml:"search_paths"`
}

type Resolver struct {
	SourceExt      string   `toml:"source_ext"`
	NativeExt      string   `toml:"native_ext"`
	ProbeCacheSize int      `toml:"probe_cache_size"`
	Exclude        []string `toml:"exclude"`
}

type Driver struct {
	ParseWorkers int `toml:"parse_workers"`
	// MaxModules stops discovery of runaway projects. Zero means unlimited.
	MaxModules int `toml:"max_modules"`
}

type Output struct {
	DOT         string `toml:"dot"`
	ExportIndex string `toml:"export_index"`
	// Metrics is a Prometheus textfile written after each run.
	Metrics string `toml:"metrics"`
}

type Log struct {
	Level   string `toml:"level"`
	Tracing bool   `toml:"tracing"`
}

// SlogLevel maps the configured level name; unknown names mean info.
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
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

// Default is the configuration used when no modgraph.toml exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
