package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	coreerrors "modgraph/internal/core/errors"
)

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"version", "version = 3", "unsupported config version 3"},
		{"project name", "[project]\nname = \"my app\"", "project.name"},
		{"entry extension", "[project]\nentry = \"main.rs\"", "must have the .jag extension"},
		{"duplicate search path", "[project]\nsearch_paths = [\"lib\", \"./lib\"]", "listed twice"},
		{"extension", "[resolver]\nsource_ext = \"a/b\"", "must be a bare extension"},
		{"exclude glob", "[resolver]\nexclude = [\"[unterminated\"]", "resolver.exclude[0]"},
		{"max modules", "[driver]\nmax_modules = -1", "driver.max_modules"},
		{"output conflict", "[output]\ndot = \"out.db\"\nexport_index = \"./out.db\"", "output conflict: output.dot and output.export_index"},
		{"log level", "[log]\nlevel = \"loud\"", "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
			if !coreerrors.IsCode(err, coreerrors.CodeValidationError) {
				t.Fatalf("expected validation code, got %v", err)
			}
		})
	}
}

func TestValidate_FilesystemChecks(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "src", "main.jag")
	if err := os.MkdirAll(filepath.Dir(entry), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(entry, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	paths := ResolvedPaths{ProjectRoot: dir, Entry: entry}
	if errs := Validate(Default(), paths); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	paths.StdlibRoot = entry
	paths.SearchPaths = []string{filepath.Join(dir, "missing")}
	errs := Validate(Default(), paths)
	if len(errs) != 2 {
		t.Fatalf("expected stdlib and search path errors, got %v", errs)
	}
	if !strings.Contains(errs[1].Error(), "project.search_paths[0]") {
		t.Errorf("unexpected error %v", errs[1])
	}
}
