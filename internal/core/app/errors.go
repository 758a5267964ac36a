package app

import (
	"errors"
	"fmt"
	"strings"

	coreerrors "modgraph/internal/core/errors"
)

// ErrDiscovery marks a CompileAll that stopped because some modules could not
// be read, parsed or resolved.
var ErrDiscovery = errors.New("module discovery failed")

// DiscoveryError carries every file and import failure of one discovery so
// they are reported together.
type DiscoveryError struct {
	Errors []error
}

func (e *DiscoveryError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v with %d error(s):", ErrDiscovery, len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *DiscoveryError) Unwrap() []error {
	return append([]error{ErrDiscovery}, e.Errors...)
}

// ErrorCode is the code of the first failure.
func (e *DiscoveryError) ErrorCode() coreerrors.ErrorCode {
	for _, err := range e.Errors {
		if code, ok := coreerrors.CodeOf(err); ok {
			return code
		}
	}
	return coreerrors.CodeInternal
}

// importError ties a failed import to the module and statement it came from.
type importError struct {
	module string
	path   string
	at     string
	err    error
}

func (e *importError) Error() string {
	return fmt.Sprintf("%s: import '%s' in module '%s': %v", e.at, e.path, e.module, e.err)
}

func (e *importError) Unwrap() error { return e.err }

// ErrPathCollision marks two different files claiming one module path.
var ErrPathCollision = errors.New("module path collision")

// PathCollisionError reports an import whose module path is already taken by
// a module loaded from another file.
type PathCollisionError struct {
	Path     []string
	Existing string
	File     string
}

func (e *PathCollisionError) Error() string {
	return fmt.Sprintf("%v: '%s' is %s but the import resolved to %s",
		ErrPathCollision, strings.Join(e.Path, "::"), e.Existing, e.File)
}

func (e *PathCollisionError) Unwrap() error { return ErrPathCollision }

func (e *PathCollisionError) ErrorCode() coreerrors.ErrorCode { return coreerrors.CodeAmbiguous }
