package report

import (
	"gopkg.in/yaml.v3"

	"modgraph/internal/core/app"
)

// summaryDoc is the machine-readable run summary consumed by CI scripts.
type summaryDoc struct {
	Project        string             `yaml:"project"`
	Entry          string             `yaml:"entry"`
	OK             bool               `yaml:"ok"`
	Modules        int                `yaml:"modules"`
	Edges          int                `yaml:"edges"`
	RunID          string             `yaml:"run_id,omitempty"`
	CompileError   string             `yaml:"compile_error,omitempty"`
	Order          []string           `yaml:"order,omitempty"`
	CircularGroups [][]string         `yaml:"circular_groups,omitempty"`
	Violations     []summaryViolation `yaml:"violations,omitempty"`
	ImportErrors   []string           `yaml:"import_errors,omitempty"`
	Hotspots       []summaryHotspot   `yaml:"hotspots,omitempty"`
}

type summaryViolation struct {
	Symbol   string `yaml:"symbol"`
	Location string `yaml:"location"`
	Declared string `yaml:"declared"`
	Required string `yaml:"required"`
}

type summaryHotspot struct {
	Module string  `yaml:"module"`
	FanIn  int     `yaml:"fan_in"`
	FanOut int     `yaml:"fan_out"`
	Score  float64 `yaml:"score"`
}

// Summary renders r as YAML.
func Summary(r app.Report) ([]byte, error) {
	doc := summaryDoc{
		Project:        r.Project,
		Entry:          r.Entry,
		OK:             r.OK(),
		Modules:        r.Modules,
		Edges:          r.Edges,
		RunID:          r.RunID,
		Order:          r.Order,
		CircularGroups: r.CircularGroups,
	}
	if r.CompileError != nil {
		doc.CompileError = r.CompileError.Error()
	}
	for _, v := range r.Violations {
		doc.Violations = append(doc.Violations, summaryViolation{
			Symbol:   v.Symbol,
			Location: v.Location.String(),
			Declared: v.Actual.String(),
			Required: v.Required.String(),
		})
	}
	for _, err := range r.Errors {
		doc.ImportErrors = append(doc.ImportErrors, err.Error())
	}
	for _, h := range r.Hotspots {
		doc.Hotspots = append(doc.Hotspots, summaryHotspot{
			Module: h.Path,
			FanIn:  h.Metrics.FanIn,
			FanOut: h.Metrics.FanOut,
			Score:  h.Metrics.ImportanceScore,
		})
	}
	return yaml.Marshal(doc)
}
