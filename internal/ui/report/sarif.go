package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"modgraph/internal/core/app"
)

// SARIF v2.1.0 schema: https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDCycle       = "MG001"
	ruleIDVisibility  = "MG002"
	ruleIDImport      = "MG003"
	ruleIDCompilation = "MG004"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

var sarifRules = []sarifRule{
	{ID: ruleIDCycle, Name: "CircularDependency", ShortDescription: sarifMessage{Text: "Modules import each other in a cycle"}, DefaultConfig: sarifRuleDefaultConfig{Level: "error"}},
	{ID: ruleIDVisibility, Name: "VisibilityViolation", ShortDescription: sarifMessage{Text: "An import reaches a symbol its visibility does not allow"}, DefaultConfig: sarifRuleDefaultConfig{Level: "error"}},
	{ID: ruleIDImport, Name: "UnresolvedImport", ShortDescription: sarifMessage{Text: "An imported name could not be bound"}, DefaultConfig: sarifRuleDefaultConfig{Level: "error"}},
	{ID: ruleIDCompilation, Name: "CompilationFailed", ShortDescription: sarifMessage{Text: "Module discovery or ordering failed"}, DefaultConfig: sarifRuleDefaultConfig{Level: "error"}},
}

// SARIF renders r as a SARIF v2.1.0 document. File URIs are relative to
// projectRoot; files outside it keep only their base name.
func SARIF(r app.Report, projectRoot, toolVersion string) ([]byte, error) {
	results := make([]sarifResult, 0)

	for _, group := range r.CircularGroups {
		cycle := append(append([]string{}, group...), group[0])
		result := sarifResult{
			RuleID:  ruleIDCycle,
			Level:   "error",
			Message: sarifMessage{Text: fmt.Sprintf("Circular dependency: %s", strings.Join(cycle, " → "))},
		}
		if file := r.Files[group[0]]; file != "" {
			result.Locations = []sarifLocation{fileLocation(projectRoot, file, 0, 0)}
		}
		results = append(results, result)
	}

	for _, v := range r.Violations {
		result := sarifResult{
			RuleID:  ruleIDVisibility,
			Level:   "error",
			Message: sarifMessage{Text: v.Message},
		}
		if v.Location.File != "" {
			result.Locations = []sarifLocation{fileLocation(projectRoot, v.Location.File, v.Location.Line, v.Location.Column)}
		}
		results = append(results, result)
	}

	for _, err := range r.Errors {
		results = append(results, sarifResult{
			RuleID:  ruleIDImport,
			Level:   "error",
			Message: sarifMessage{Text: err.Error()},
		})
	}

	if r.CompileError != nil {
		result := sarifResult{
			RuleID:  ruleIDCompilation,
			Level:   "error",
			Message: sarifMessage{Text: r.CompileError.Error()},
		}
		if file := r.Files[r.Entry]; file != "" {
			result.Locations = []sarifLocation{fileLocation(projectRoot, file, 0, 0)}
		}
		results = append(results, result)
	}

	doc := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: "modgraph", Version: toolVersion, Rules: sarifRules}},
			Results: results,
		}},
	}
	return json.MarshalIndent(doc, "", "  ")
}

func fileLocation(projectRoot, file string, line, column int) sarifLocation {
	loc := sarifLocation{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{
				URI:       relativeURI(projectRoot, file),
				URIBaseID: "%SRCROOT%",
			},
		},
	}
	if line > 0 {
		loc.PhysicalLocation.Region = &sarifRegion{StartLine: line, StartColumn: column}
	}
	return loc
}

func relativeURI(projectRoot, file string) string {
	if projectRoot != "" {
		if rel, err := filepath.Rel(projectRoot, file); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.Base(file)
}
