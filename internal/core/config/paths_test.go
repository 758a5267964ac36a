package config

import (
	"path/filepath"
	"testing"
)

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	cfg, err := Parse(`
[project]
root = "proj"
stdlib_root = "/opt/stdlib"
search_paths = ["vendor", "/usr/share/modgraph"]

[output]
dot = "out/graph.dot"
`)
	if err != nil {
		t.Fatal(err)
	}

	paths, err := ResolvePaths(cfg, base)
	if err != nil {
		t.Fatalf("ResolvePaths failed: %v", err)
	}

	root := filepath.Join(base, "proj")
	if paths.ProjectRoot != root {
		t.Errorf("expected root %q, got %q", root, paths.ProjectRoot)
	}
	if paths.Entry != filepath.Join(root, "src", "main.jag") {
		t.Errorf("unexpected entry %q", paths.Entry)
	}
	if paths.StdlibRoot != filepath.Clean("/opt/stdlib") {
		t.Errorf("unexpected stdlib root %q", paths.StdlibRoot)
	}
	want := []string{filepath.Join(root, "vendor"), filepath.Clean("/usr/share/modgraph")}
	if len(paths.SearchPaths) != 2 || paths.SearchPaths[0] != want[0] || paths.SearchPaths[1] != want[1] {
		t.Errorf("unexpected search paths %v", paths.SearchPaths)
	}
	if paths.DOT != filepath.Join(root, "out", "graph.dot") {
		t.Errorf("unexpected dot path %q", paths.DOT)
	}
	if paths.ExportIndex != "" || paths.Metrics != "" {
		t.Errorf("unset outputs must stay empty: %+v", paths)
	}
}

func TestResolvePaths_EmptyBase(t *testing.T) {
	if _, err := ResolvePaths(Default(), " "); err == nil {
		t.Fatal("expected error for empty base directory")
	}
}

func TestResolveRelative(t *testing.T) {
	tests := []struct {
		base, value, want string
	}{
		{"/a", "", "/a"},
		{"/a", "b/../c", "/a/c"},
		{"/a", "/abs", "/abs"},
	}
	for _, tt := range tests {
		if got := ResolveRelative(filepath.FromSlash(tt.base), filepath.FromSlash(tt.value)); got != filepath.FromSlash(tt.want) {
			t.Errorf("ResolveRelative(%q, %q) = %q, want %q", tt.base, tt.value, got, tt.want)
		}
	}
}
