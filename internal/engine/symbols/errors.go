package symbols

import (
	"errors"
	"fmt"
	"strings"

	coreerrors "modgraph/internal/core/errors"
	"modgraph/internal/engine/source"
)

var (
	ErrAlreadyDefined = errors.New("symbol already defined")
	ErrNotFound       = errors.New("symbol not found")
	ErrNotExported    = errors.New("symbol not exported")
	ErrTypeMismatch   = errors.New("symbol type mismatch")
)

// ErrNoActiveScope is returned by a zero-value Table.
var ErrNoActiveScope error = &noActiveScopeError{}

type AlreadyDefinedError struct {
	Name     string
	Span     source.Span
	Previous source.Span
}

func (e *AlreadyDefinedError) Error() string {
	return fmt.Sprintf("symbol '%s' already defined at %s", e.Name, e.Previous)
}

func (e *AlreadyDefinedError) Unwrap() error { return ErrAlreadyDefined }

func (e *AlreadyDefinedError) ErrorCode() coreerrors.ErrorCode { return coreerrors.CodeAlreadyDefined }

type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("symbol '%s' not found", e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func (e *NotFoundError) ErrorCode() coreerrors.ErrorCode { return coreerrors.CodeNotFound }

type NotExportedError struct {
	Name   string
	Module []string
}

func (e *NotExportedError) Error() string {
	return fmt.Sprintf("symbol '%s' not exported from module '%s'", e.Name, strings.Join(e.Module, "::"))
}

func (e *NotExportedError) Unwrap() error { return ErrNotExported }

func (e *NotExportedError) ErrorCode() coreerrors.ErrorCode { return coreerrors.CodeNotExported }

type TypeMismatchError struct {
	Name     string
	Expected string
	Found    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for '%s': expected %s, found %s", e.Name, e.Expected, e.Found)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

func (e *TypeMismatchError) ErrorCode() coreerrors.ErrorCode { return coreerrors.CodeTypeMismatch }

type noActiveScopeError struct{}

func (*noActiveScopeError) Error() string { return "no active scope" }

func (*noActiveScopeError) ErrorCode() coreerrors.ErrorCode { return coreerrors.CodeNoActiveScope }
