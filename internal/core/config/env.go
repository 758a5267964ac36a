package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ApplyEnvOverrides applies MODGRAPH_[SECTION]_[KEY] environment overrides,
// e.g. MODGRAPH_PROJECT_STDLIB_ROOT.
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Project.Root, "MODGRAPH_PROJECT_ROOT")
	setEnvString(&cfg.Project.Entry, "MODGRAPH_PROJECT_ENTRY")
	setEnvString(&cfg.Project.StdlibRoot, "MODGRAPH_PROJECT_STDLIB_ROOT")
	setEnvList(&cfg.Project.SearchPaths, "MODGRAPH_PROJECT_SEARCH_PATHS")

	setEnvInt(&cfg.Resolver.ProbeCacheSize, "MODGRAPH_RESOLVER_PROBE_CACHE_SIZE")
	setEnvInt(&cfg.Driver.ParseWorkers, "MODGRAPH_DRIVER_PARSE_WORKERS")

	setEnvString(&cfg.Output.ExportIndex, "MODGRAPH_OUTPUT_EXPORT_INDEX")
	setEnvString(&cfg.Log.Level, "MODGRAPH_LOG_LEVEL")
	setEnvBool(&cfg.Log.Tracing, "MODGRAPH_LOG_TRACING")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

// setEnvList splits on the OS path list separator.
func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = strings.Split(val, string(os.PathListSeparator))
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}
