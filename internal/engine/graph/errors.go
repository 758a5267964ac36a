package graph

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	coreerrors "modgraph/internal/core/errors"
)

var (
	ErrCircularDependency   = errors.New("circular dependency detected")
	ErrImpactTargetNotFound = errors.New("impact target not found")
)

// CycleError reports a dependency cycle as a closed path (first == last).
type CycleError struct {
	Cycle    []ModuleID
	Rendered string // "a → b → c → a"
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCircularDependency, e.Rendered)
}

func (e *CycleError) Unwrap() error { return ErrCircularDependency }

func (e *CycleError) ErrorCode() coreerrors.ErrorCode { return coreerrors.CodeCircular }

func (g *ModuleGraph) newCycleError(cycle []ModuleID) *CycleError {
	return &CycleError{Cycle: slices.Clone(cycle), Rendered: g.FormatCycle(cycle)}
}

// FormatCycle renders a cycle with module paths.
func (g *ModuleGraph) FormatCycle(cycle []ModuleID) string {
	return strings.Join(g.Names(cycle), " → ")
}

type ImpactTargetError struct {
	Target ModuleID
}

func (e *ImpactTargetError) Error() string {
	return fmt.Sprintf("%v: %s", ErrImpactTargetNotFound, e.Target)
}

func (e *ImpactTargetError) Unwrap() error {
	return ErrImpactTargetNotFound
}

func (e *ImpactTargetError) ErrorCode() coreerrors.ErrorCode { return coreerrors.CodeNotFound }
