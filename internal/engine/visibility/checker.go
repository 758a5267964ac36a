package visibility

import (
	"fmt"
	"slices"
	"strings"

	"modgraph/internal/engine/source"
	"modgraph/internal/shared/observability"
)

// Violation records one denied access. Violations are collected, not
// returned as errors, so a whole compilation unit can be reported at once.
type Violation struct {
	Symbol           string
	Location         source.Span
	DefinitionModule []string
	Required         Visibility
	Actual           Visibility
	Message          string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Location, v.Message)
}

// Checker enforces access rules from the point of view of one module.
type Checker struct {
	current    Scope
	violations []Violation
}

func NewChecker(scope Scope) *Checker {
	return &Checker{current: scope}
}

func (c *Checker) Current() Scope {
	return c.current
}

// CheckAccess reports whether the current scope may access symbol name of
// visibility vis defined in target. A denial is recorded as a Violation.
func (c *Checker) CheckAccess(name string, vis Visibility, target Scope, span source.Span) bool {
	if vis.AllowsAccess(c.current, target) {
		return true
	}

	c.violations = append(c.violations, Violation{
		Symbol:           name,
		Location:         span,
		DefinitionModule: slices.Clone(target.ModulePath),
		Required:         Required(c.current, target),
		Actual:           vis,
		Message: fmt.Sprintf("cannot access %s symbol '%s' of module '%s' from module '%s'",
			vis.Describe(), name, strings.Join(target.ModulePath, "::"), strings.Join(c.current.ModulePath, "::")),
	})
	observability.VisibilityViolationsTotal.WithLabelValues(vis.Describe()).Inc()
	return false
}

// EnterScope descends into the child module name.
func (c *Checker) EnterScope(name string) {
	c.current = c.current.Child(name)
}

// ExitScope returns to the parent module; at the crate root it is a no-op.
func (c *Checker) ExitScope() {
	if len(c.current.ModulePath) == 0 {
		return
	}
	c.current.ModulePath = c.current.ModulePath[:len(c.current.ModulePath)-1]
}

func (c *Checker) Violations() []Violation {
	return slices.Clone(c.violations)
}

func (c *Checker) HasViolations() bool {
	return len(c.violations) > 0
}

func (c *Checker) ClearViolations() {
	c.violations = nil
}

// ReExport describes a `pub use` of a symbol from another module.
type ReExport struct {
	Original   []string
	Visibility Visibility
	Alias      string
}

func PublicReExport(original []string) ReExport {
	return ReExport{Original: slices.Clone(original), Visibility: Public}
}

func AliasedReExport(original []string, alias string) ReExport {
	return ReExport{Original: slices.Clone(original), Visibility: Public, Alias: alias}
}

// Name is the name the re-exported symbol is visible under.
func (r ReExport) Name() string {
	if r.Alias != "" {
		return r.Alias
	}
	if len(r.Original) == 0 {
		return ""
	}
	return r.Original[len(r.Original)-1]
}
