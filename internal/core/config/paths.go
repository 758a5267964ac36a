package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolvedPaths holds the config's paths made absolute. Project paths are
// relative to the directory holding the config; outputs to the project root.
type ResolvedPaths struct {
	ProjectRoot string
	Entry       string
	StdlibRoot  string
	SearchPaths []string
	DOT         string
	ExportIndex string
	Metrics     string
}

func ResolvePaths(cfg *Config, baseDir string) (ResolvedPaths, error) {
	if strings.TrimSpace(baseDir) == "" {
		return ResolvedPaths{}, fmt.Errorf("base directory must not be empty")
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return ResolvedPaths{}, err
	}

	root := ResolveRelative(base, cfg.Project.Root)
	resolved := ResolvedPaths{
		ProjectRoot: root,
		Entry:       ResolveRelative(root, cfg.Project.Entry),
		DOT:         optional(root, cfg.Output.DOT),
		ExportIndex: optional(root, cfg.Output.ExportIndex),
		Metrics:     optional(root, cfg.Output.Metrics),
	}
	if cfg.Project.StdlibRoot != "" {
		resolved.StdlibRoot = ResolveRelative(base, cfg.Project.StdlibRoot)
	}
	for _, dir := range cfg.Project.SearchPaths {
		resolved.SearchPaths = append(resolved.SearchPaths, ResolveRelative(root, dir))
	}
	return resolved, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

func optional(base, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return ResolveRelative(base, value)
}
