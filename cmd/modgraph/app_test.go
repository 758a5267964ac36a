package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

const projectConfig = `version = 1

[project]
name = "demo"
stdlib_root = "stdlib"

[output]
export_index = "out/exports.db"
metrics = "out/modgraph.prom"
`

func TestRun_CleanProject(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"modgraph.toml":    projectConfig,
		"src/main.jag":     "use stdlib::io;\nuse core::{parse};\n\nfn main() {}\n",
		"src/core.jag":     "pub fn parse() {}\n",
		"stdlib/src/io.rs": "pub fn println() {}\n",
	})

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), cliOptions{
		configPath: filepath.Join(root, "modgraph.toml"),
		dot:        filepath.Join(root, "out", "graph.dot"),
		markdown:   filepath.Join(root, "out", "report.md"),
		summary:    filepath.Join(root, "out", "summary.yaml"),
	}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d\nstdout:\n%s\nstderr:\n%s", code, stdout.String(), stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{"modgraph: demo", "3 modules, 2 edges", "no problems found", "export run "} {
		if !strings.Contains(out, want) {
			t.Errorf("expected report to contain %q, got:\n%s", want, out)
		}
	}

	dot, err := os.ReadFile(filepath.Join(root, "out", "graph.dot"))
	if err != nil {
		t.Fatalf("DOT file was not generated: %v", err)
	}
	if !strings.HasPrefix(string(dot), "digraph") {
		t.Errorf("unexpected DOT output: %s", dot)
	}
	if _, err := os.Stat(filepath.Join(root, "out", "report.md")); err != nil {
		t.Errorf("markdown report was not generated: %v", err)
	}
	summary, err := os.ReadFile(filepath.Join(root, "out", "summary.yaml"))
	if err != nil {
		t.Fatalf("run summary was not generated: %v", err)
	}
	if !strings.Contains(string(summary), "ok: true") {
		t.Errorf("expected a clean summary, got:\n%s", summary)
	}
	if _, err := os.Stat(filepath.Join(root, "out", "exports.db")); err != nil {
		t.Errorf("export index was not generated: %v", err)
	}
	metrics, err := os.ReadFile(filepath.Join(root, "out", "modgraph.prom"))
	if err != nil {
		t.Fatalf("metrics file was not generated: %v", err)
	}
	if !strings.Contains(string(metrics), "modgraph_graph_modules_total") {
		t.Errorf("metrics file is missing the module gauge:\n%s", metrics)
	}
}

func TestRun_CycleExitsWithProblems(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"modgraph.toml": "[project]\nname = \"loop\"\n",
		"src/main.jag":  "use a;\n",
		"src/a.jag":     "use b;\n",
		"src/b.jag":     "use a;\n",
	})

	var stdout, stderr bytes.Buffer
	sarifPath := filepath.Join(root, "out", "findings.sarif")
	code := run(context.Background(), cliOptions{configPath: filepath.Join(root, "modgraph.toml"), sarif: sarifPath}, &stdout, &stderr)
	if code != exitProblems {
		t.Fatalf("expected exit %d, got %d", exitProblems, code)
	}
	sarif, err := os.ReadFile(sarifPath)
	if err != nil {
		t.Fatalf("SARIF report was not generated: %v", err)
	}
	for _, want := range []string{`"ruleId": "MG001"`, `"uri": "src/a.jag"`} {
		if !strings.Contains(string(sarif), want) {
			t.Errorf("expected SARIF to contain %s, got:\n%s", want, sarif)
		}
	}
	if !strings.Contains(stdout.String(), "Circular groups (1)") {
		t.Errorf("expected circular group in report, got:\n%s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "a → b → a") {
		t.Errorf("expected rendered cycle in report, got:\n%s", stdout.String())
	}
}

func TestRun_TraceAndImpact(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"modgraph.toml": "[project]\nname = \"demo\"\n",
		"src/main.jag":  "use mid;\n",
		"src/mid.jag":   "use leaf;\n",
		"src/leaf.jag":  "pub fn value() {}\n",
	})
	configPath := filepath.Join(root, "modgraph.toml")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), cliOptions{configPath: configPath, trace: true, args: []string{"main", "leaf"}}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("trace: expected exit 0, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "main\n  -> mid\n  -> leaf") {
		t.Errorf("unexpected trace output:\n%s", stdout.String())
	}

	stdout.Reset()
	code = run(context.Background(), cliOptions{configPath: configPath, impact: "leaf"}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("impact: expected exit 0, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Direct dependents (1)\n- mid\n") {
		t.Errorf("unexpected impact output:\n%s", stdout.String())
	}
}

func TestRun_UsageErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	if code := run(context.Background(), cliOptions{trace: true, impact: "x"}, &stdout, &stderr); code != exitUsage {
		t.Errorf("trace+impact: expected exit %d, got %d", exitUsage, code)
	}
	if code := run(context.Background(), cliOptions{trace: true, args: []string{"only-one"}}, &stdout, &stderr); code != exitUsage {
		t.Errorf("trace arity: expected exit %d, got %d", exitUsage, code)
	}
	missing := filepath.Join(t.TempDir(), "nope.toml")
	if code := run(context.Background(), cliOptions{configPath: missing}, &stdout, &stderr); code != exitUsage {
		t.Errorf("missing config: expected exit %d, got %d", exitUsage, code)
	}

	root := t.TempDir()
	writeFiles(t, root, map[string]string{"modgraph.toml": "[project]\nname = \"empty\"\n"})
	stderr.Reset()
	if code := run(context.Background(), cliOptions{configPath: filepath.Join(root, "modgraph.toml")}, &stdout, &stderr); code != exitUsage {
		t.Errorf("missing entry: expected exit %d, got %d", exitUsage, code)
	}
	if !strings.Contains(stderr.String(), "project.entry") {
		t.Errorf("expected entry validation message, got:\n%s", stderr.String())
	}
}
