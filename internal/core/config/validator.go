package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	coreerrors "modgraph/internal/core/errors"

	"github.com/gobwas/glob"
)

func invalid(format string, args ...any) error {
	return coreerrors.New(coreerrors.CodeValidationError, fmt.Sprintf(format, args...))
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return invalid("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateProject(cfg *Config) error {
	if strings.ContainsAny(cfg.Project.Name, " \t:") {
		return invalid("project.name %q must not contain whitespace or ':'", cfg.Project.Name)
	}
	if ext := filepath.Ext(cfg.Project.Entry); ext != "."+cfg.Resolver.SourceExt {
		return invalid("project.entry %q must have the .%s extension", cfg.Project.Entry, cfg.Resolver.SourceExt)
	}
	seen := make(map[string]bool, len(cfg.Project.SearchPaths))
	for i, dir := range cfg.Project.SearchPaths {
		clean := filepath.Clean(dir)
		if seen[clean] {
			return invalid("project.search_paths[%d] %q is listed twice", i, dir)
		}
		seen[clean] = true
	}
	return nil
}

func validateResolver(cfg *Config) error {
	for name, ext := range map[string]string{"source_ext": cfg.Resolver.SourceExt, "native_ext": cfg.Resolver.NativeExt} {
		if strings.ContainsAny(ext, `/\. `) {
			return invalid("resolver.%s %q must be a bare extension", name, ext)
		}
	}
	for i, pattern := range cfg.Resolver.Exclude {
		if _, err := glob.Compile(filepath.ToSlash(pattern), '/'); err != nil {
			return invalid("resolver.exclude[%d] %q: %v", i, pattern, err)
		}
	}
	return nil
}

func validateDriver(cfg *Config) error {
	if cfg.Driver.MaxModules < 0 {
		return invalid("driver.max_modules must be >= 0, got %d", cfg.Driver.MaxModules)
	}
	return nil
}

func validateOutput(cfg *Config) error {
	outputs := map[string]string{
		"output.dot":          cfg.Output.DOT,
		"output.export_index": cfg.Output.ExportIndex,
		"output.metrics":      cfg.Output.Metrics,
	}
	keys := []string{"output.dot", "output.export_index", "output.metrics"}
	for i, a := range keys {
		for _, b := range keys[i+1:] {
			if outputs[a] != "" && filepath.Clean(outputs[a]) == filepath.Clean(outputs[b]) {
				return invalid("output conflict: %s and %s share the same path %q", a, b, outputs[a])
			}
		}
	}
	return nil
}

func validateLog(cfg *Config) error {
	switch cfg.Log.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return invalid("log.level must be one of: debug, info, warn, error; got %q", cfg.Log.Level)
}

// Validate reports problems that depend on the filesystem, such as missing
// roots. Load does not call it so a config can be parsed before the tree
// exists.
func Validate(cfg *Config, paths ResolvedPaths) []error {
	var errs []error
	if info, err := os.Stat(paths.ProjectRoot); err != nil || !info.IsDir() {
		errs = append(errs, fmt.Errorf("project.root %q is not a directory", paths.ProjectRoot))
	}
	if info, err := os.Stat(paths.Entry); err != nil || info.IsDir() {
		errs = append(errs, fmt.Errorf("project.entry %q does not exist", paths.Entry))
	}
	if paths.StdlibRoot != "" {
		if info, err := os.Stat(paths.StdlibRoot); err != nil || !info.IsDir() {
			errs = append(errs, fmt.Errorf("project.stdlib_root %q is not a directory", paths.StdlibRoot))
		}
	}
	for i, dir := range paths.SearchPaths {
		if _, err := os.Stat(dir); err != nil {
			errs = append(errs, fmt.Errorf("project.search_paths[%d] %q does not exist", i, dir))
		}
	}
	return errs
}
