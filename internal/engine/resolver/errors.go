package resolver

import (
	"errors"
	"fmt"
	"strings"

	coreerrors "modgraph/internal/core/errors"
)

var (
	ErrModuleNotFound  = errors.New("module not found")
	ErrAmbiguousModule = errors.New("ambiguous module")
	ErrInvalidPath     = errors.New("invalid module path")
)

// NotFoundError lists every candidate file that was probed.
type NotFoundError struct {
	Path     []string
	Searched []string
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "module '%s' not found", JoinPath(e.Path))
	if len(e.Searched) > 0 {
		b.WriteString(". Searched:")
		for _, p := range e.Searched {
			b.WriteString("\n  - ")
			b.WriteString(p)
		}
	}
	return b.String()
}

func (e *NotFoundError) Unwrap() error { return ErrModuleNotFound }

func (e *NotFoundError) ErrorCode() coreerrors.ErrorCode { return coreerrors.CodeNotFound }

// AmbiguousError is returned when more than one layout or root holds the
// module. Locations is sorted.
type AmbiguousError struct {
	Path      []string
	Locations []string
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ambiguous module '%s' found in:", JoinPath(e.Path))
	for _, p := range e.Locations {
		b.WriteString("\n  - ")
		b.WriteString(p)
	}
	return b.String()
}

func (e *AmbiguousError) Unwrap() error { return ErrAmbiguousModule }

func (e *AmbiguousError) ErrorCode() coreerrors.ErrorCode { return coreerrors.CodeAmbiguous }

type InvalidPathError struct {
	Input  string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid module path %q: %s", e.Input, e.Reason)
}

func (e *InvalidPathError) Unwrap() error { return ErrInvalidPath }

func (e *InvalidPathError) ErrorCode() coreerrors.ErrorCode { return coreerrors.CodeInvalidPath }
