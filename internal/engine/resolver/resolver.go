// Package resolver maps import paths such as stdlib::io or app::net::http to
// source files across the standard library, the project tree and extra
// search paths.
package resolver

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	coreerrors "modgraph/internal/core/errors"
	"modgraph/internal/shared/observability"
	"modgraph/internal/shared/util"

	"github.com/gobwas/glob"
)

const (
	DefaultSourceExt = "jag"
	DefaultNativeExt = "rs"
)

type Options struct {
	// SourceExt is the extension of project modules.
	SourceExt string
	// NativeExt is tried first for standard library modules.
	NativeExt   string
	SearchPaths []string
	// Exclude holds glob patterns; matching candidates are never probed.
	Exclude        []string
	ProbeCacheSize int
	Logger         *slog.Logger
}

type cacheKey struct {
	projectRoot string
	stdlibRoot  string
	path        string
}

// ModuleResolver memoises successful resolutions per (project root, stdlib
// root, path). It is not safe for concurrent use.
type ModuleResolver struct {
	sourceExt   string
	nativeExt   string
	searchPaths []string
	exclude     []glob.Glob
	cache       map[cacheKey]string
	probes      *probeCache
	logger      *slog.Logger
}

func New(opts Options) (*ModuleResolver, error) {
	r := &ModuleResolver{
		sourceExt: opts.SourceExt,
		nativeExt: opts.NativeExt,
		cache:     make(map[cacheKey]string),
		probes:    newProbeCache(opts.ProbeCacheSize),
		logger:    opts.Logger,
	}
	if r.sourceExt == "" {
		r.sourceExt = DefaultSourceExt
	}
	if r.nativeExt == "" {
		r.nativeExt = DefaultNativeExt
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "resolver")

	for _, pattern := range opts.Exclude {
		g, err := glob.Compile(filepath.ToSlash(pattern), '/')
		if err != nil {
			return nil, coreerrors.Wrap(err, coreerrors.CodeValidationError, fmt.Sprintf("invalid exclude pattern %q", pattern))
		}
		r.exclude = append(r.exclude, g)
	}
	for _, dir := range opts.SearchPaths {
		r.AddSearchPath(dir)
	}
	return r, nil
}

// AddSearchPath appends dir to the extra roots unless it is already present.
func (r *ModuleResolver) AddSearchPath(dir string) {
	dir = filepath.Clean(dir)
	if slices.Contains(r.searchPaths, dir) {
		return
	}
	r.searchPaths = append(r.searchPaths, dir)
}

func (r *ModuleResolver) SearchPaths() []string {
	return slices.Clone(r.searchPaths)
}

// ResolvePath returns the source file for path. Imports starting with
// "stdlib" are looked up under stdlibRoot, which must then be set.
func (r *ModuleResolver) ResolvePath(path []string, projectRoot, stdlibRoot string) (string, error) {
	if len(path) == 0 {
		return "", &InvalidPathError{Reason: "empty path"}
	}

	key := cacheKey{projectRoot: projectRoot, stdlibRoot: stdlibRoot, path: JoinPath(path)}
	if cached, ok := r.cache[key]; ok {
		observability.ResolverCacheHitsTotal.Inc()
		return cached, nil
	}
	observability.ResolverCacheMissesTotal.Inc()

	root := "local"
	if path[0] == StdlibPrefix {
		root = "stdlib"
	}
	start := time.Now()

	var (
		resolved string
		err      error
	)
	if root == "stdlib" {
		if stdlibRoot == "" {
			err = &NotFoundError{Path: slices.Clone(path)}
		} else {
			resolved, err = r.resolveStdlib(path, stdlibRoot)
		}
	} else {
		resolved, err = r.resolveLocal(path, projectRoot)
	}
	observability.ResolutionDuration.WithLabelValues(root).Observe(time.Since(start).Seconds())

	if err != nil {
		code, _ := coreerrors.CodeOf(err)
		observability.ResolutionFailuresTotal.WithLabelValues(string(code)).Inc()
		r.logger.Debug("import unresolved", "path", key.path, "error", err)
		return "", err
	}

	r.cache[key] = resolved
	r.logger.Debug("import resolved", "path", key.path, "file", resolved)
	return resolved, nil
}

// resolveStdlib tries <name>.<native>, <name>/mod.<native> and
// <name>.<source> under <stdlibRoot>/src, first match wins.
func (r *ModuleResolver) resolveStdlib(path []string, stdlibRoot string) (string, error) {
	inner := path[1:]
	if len(inner) == 0 {
		return "", &NotFoundError{Path: slices.Clone(path)}
	}

	base := filepath.Join(append([]string{stdlibRoot, "src"}, inner[:len(inner)-1]...)...)
	name := inner[len(inner)-1]
	candidates := []string{
		filepath.Join(base, name+"."+r.nativeExt),
		filepath.Join(base, name, "mod."+r.nativeExt),
		filepath.Join(base, name+"."+r.sourceExt),
	}

	var searched []string
	for _, candidate := range candidates {
		if r.excluded(candidate) {
			continue
		}
		searched = append(searched, candidate)
		if r.probes.exists(candidate) {
			return candidate, nil
		}
	}
	return "", &NotFoundError{Path: slices.Clone(path), Searched: searched}
}

// resolveLocal collects every existing layout across all roots. Exactly one
// match resolves; several is an AmbiguousError.
func (r *ModuleResolver) resolveLocal(path []string, projectRoot string) (string, error) {
	var (
		candidates []string
		searched   []string
	)
	for _, root := range r.localRoots(projectRoot) {
		for _, candidate := range r.layouts(root, path) {
			if r.excluded(candidate) {
				continue
			}
			searched = append(searched, candidate)
			if r.probes.exists(candidate) {
				candidates = append(candidates, candidate)
			}
		}
	}

	slices.Sort(candidates)
	candidates = slices.Compact(candidates)

	switch len(candidates) {
	case 0:
		return "", &NotFoundError{Path: slices.Clone(path), Searched: searched}
	case 1:
		return candidates[0], nil
	default:
		return "", &AmbiguousError{Path: slices.Clone(path), Locations: candidates}
	}
}

// localRoots is <project>/src when it exists, then <project>, then every
// search path.
func (r *ModuleResolver) localRoots(projectRoot string) []string {
	var roots []string
	src := filepath.Join(projectRoot, "src")
	if isDir(src) {
		roots = append(roots, src)
	}
	roots = append(roots, filepath.Clean(projectRoot))
	for _, dir := range r.searchPaths {
		if r.excluded(dir) {
			continue
		}
		roots = append(roots, dir)
	}
	return roots
}

func (r *ModuleResolver) layouts(root string, path []string) []string {
	base := filepath.Join(append([]string{root}, path[:len(path)-1]...)...)
	name := path[len(path)-1]
	return []string{
		filepath.Join(base, name+"."+r.sourceExt),
		filepath.Join(base, name, "mod."+r.sourceExt),
		filepath.Join(base, name, name+"."+r.sourceExt),
	}
}

// ResolveRelative resolves path against the directory of fromFile. A leading
// "super" climbs one directory; a leading "self" stays put.
func (r *ModuleResolver) ResolveRelative(path []string, fromFile string) (string, error) {
	dir := filepath.Dir(fromFile)
	rest := path
	if len(path) > 0 {
		switch path[0] {
		case "super":
			dir = filepath.Dir(dir)
			rest = path[1:]
		case "self":
			rest = path[1:]
		}
	}
	if len(rest) == 0 {
		return "", &NotFoundError{Path: slices.Clone(path)}
	}

	base := filepath.Join(append([]string{dir}, rest[:len(rest)-1]...)...)
	name := rest[len(rest)-1]
	var searched []string
	for _, candidate := range []string{
		filepath.Join(base, name+"."+r.sourceExt),
		filepath.Join(base, name, "mod."+r.sourceExt),
	} {
		if r.excluded(candidate) {
			continue
		}
		searched = append(searched, candidate)
		if r.probes.exists(candidate) {
			return candidate, nil
		}
	}
	return "", &NotFoundError{Path: slices.Clone(path), Searched: searched}
}

// ClearCache forgets resolutions and existence probes.
func (r *ModuleResolver) ClearCache() {
	clear(r.cache)
	r.probes.clear()
}

func (r *ModuleResolver) CacheLen() int {
	return len(r.cache)
}

func (r *ModuleResolver) excluded(path string) bool {
	slashed := util.NormalizePatternPath(path)
	for _, g := range r.exclude {
		if g.Match(slashed) {
			return true
		}
	}
	return false
}
