package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	coreerrors "modgraph/internal/core/errors"

	"github.com/BurntSushi/toml"
)

const DefaultFile = "modgraph.toml"

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, coreerrors.AddContext(coreerrors.Wrap(err, coreerrors.CodeIO, "read config"), coreerrors.CtxPath, path)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return nil, coreerrors.AddContext(err, coreerrors.CtxPath, path)
	}
	return cfg, nil
}

// Parse decodes TOML text, applies environment overrides, fills defaults and
// validates the result. Empty text yields the default configuration.
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, coreerrors.Wrap(err, coreerrors.CodeParse, "decode config")
	}

	ApplyEnvOverrides(&cfg)
	normalize(&cfg)
	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateProject(&cfg); err != nil {
		return nil, err
	}
	if err := validateResolver(&cfg); err != nil {
		return nil, err
	}
	if err := validateDriver(&cfg); err != nil {
		return nil, err
	}
	if err := validateOutput(&cfg); err != nil {
		return nil, err
	}
	if err := validateLog(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if cfg.Project.Root == "" {
		cfg.Project.Root = "."
	}
	if cfg.Project.Name == "" {
		cfg.Project.Name = defaultProjectName(cfg.Project.Root)
	}

	if cfg.Resolver.SourceExt == "" {
		cfg.Resolver.SourceExt = "jag"
	}
	if cfg.Resolver.NativeExt == "" {
		cfg.Resolver.NativeExt = "rs"
	}
	if cfg.Resolver.ProbeCacheSize <= 0 {
		cfg.Resolver.ProbeCacheSize = 4096
	}
	if cfg.Project.Entry == "" {
		cfg.Project.Entry = filepath.Join("src", "main."+cfg.Resolver.SourceExt)
	}

	if cfg.Driver.ParseWorkers <= 0 {
		cfg.Driver.ParseWorkers = runtime.GOMAXPROCS(0)
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func normalize(cfg *Config) {
	cfg.Project.Name = strings.TrimSpace(cfg.Project.Name)
	cfg.Project.Root = strings.TrimSpace(cfg.Project.Root)
	cfg.Project.Entry = strings.TrimSpace(cfg.Project.Entry)
	cfg.Project.StdlibRoot = strings.TrimSpace(cfg.Project.StdlibRoot)
	cfg.Project.SearchPaths = trimAll(cfg.Project.SearchPaths)

	cfg.Resolver.SourceExt = strings.TrimPrefix(strings.TrimSpace(cfg.Resolver.SourceExt), ".")
	cfg.Resolver.NativeExt = strings.TrimPrefix(strings.TrimSpace(cfg.Resolver.NativeExt), ".")
	cfg.Resolver.Exclude = trimAll(cfg.Resolver.Exclude)

	cfg.Output.DOT = strings.TrimSpace(cfg.Output.DOT)
	cfg.Output.ExportIndex = strings.TrimSpace(cfg.Output.ExportIndex)
	cfg.Output.Metrics = strings.TrimSpace(cfg.Output.Metrics)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func defaultProjectName(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "main"
	}
	name := filepath.Base(abs)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "main"
	}
	return name
}
