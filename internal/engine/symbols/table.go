// Package symbols implements hierarchical, lexically scoped symbol tables
// with a per-module export map.
package symbols

import (
	"slices"
	"sort"
	"strings"

	"modgraph/internal/engine/visibility"
)

type ScopeKind uint8

const (
	ScopeModule ScopeKind = iota
	ScopeFunction
	ScopeBlock
	ScopeImpl
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeImpl:
		return "impl"
	default:
		return "invalid"
	}
}

type frame struct {
	kind    ScopeKind
	symbols map[string]Symbol
}

// Table is a stack of scopes plus the module's export map. The bottom frame
// is the module scope and is never popped. A Table is not safe for concurrent
// mutation.
type Table struct {
	scopes  []frame
	globals map[string]Symbol
}

func NewTable() *Table {
	return &Table{
		scopes:  []frame{{kind: ScopeModule, symbols: make(map[string]Symbol)}},
		globals: make(map[string]Symbol),
	}
}

func (t *Table) EnterScope(kind ScopeKind) {
	t.scopes = append(t.scopes, frame{kind: kind, symbols: make(map[string]Symbol)})
}

// ExitScope pops the innermost scope and hands its symbols to the caller.
// Popping the module scope is a driver bug and panics.
func (t *Table) ExitScope() map[string]Symbol {
	if len(t.scopes) <= 1 {
		panic("symbols: ExitScope called without a matching EnterScope")
	}
	top := t.scopes[len(t.scopes)-1]
	t.scopes = t.scopes[:len(t.scopes)-1]
	return top.symbols
}

func (t *Table) Depth() int {
	return len(t.scopes)
}

// CurrentKind is the kind of the innermost scope.
func (t *Table) CurrentKind() ScopeKind {
	if len(t.scopes) == 0 {
		return ScopeModule
	}
	return t.scopes[len(t.scopes)-1].kind
}

// Define adds sym to the innermost scope. Only a name clash inside that scope
// is an error; outer definitions are shadowed. Public symbols are also
// snapshotted into the export map.
func (t *Table) Define(sym Symbol) error {
	if len(t.scopes) == 0 {
		return ErrNoActiveScope
	}
	scope := t.scopes[len(t.scopes)-1]
	if prev, ok := scope.symbols[sym.Name]; ok {
		return &AlreadyDefinedError{Name: sym.Name, Span: sym.Span, Previous: prev.Span}
	}

	if sym.IsPublic() {
		t.ensureGlobals()
		t.globals[sym.Name] = sym.clone()
	}
	scope.symbols[sym.Name] = sym
	return nil
}

// DefineGlobal adds sym straight to the export map regardless of visibility.
func (t *Table) DefineGlobal(sym Symbol) error {
	t.ensureGlobals()
	if prev, ok := t.globals[sym.Name]; ok {
		return &AlreadyDefinedError{Name: sym.Name, Span: sym.Span, Previous: prev.Span}
	}
	t.globals[sym.Name] = sym.clone()
	return nil
}

// Lookup searches from the innermost scope outwards, then the export map.
func (t *Table) Lookup(name string) (Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].symbols[name]; ok {
			return sym, true
		}
	}
	return t.LookupGlobal(name)
}

func (t *Table) LookupCurrent(name string) (Symbol, bool) {
	if len(t.scopes) == 0 {
		return Symbol{}, false
	}
	sym, ok := t.scopes[len(t.scopes)-1].symbols[name]
	return sym, ok
}

func (t *Table) LookupGlobal(name string) (Symbol, bool) {
	sym, ok := t.globals[name]
	return sym, ok
}

// LookupModuleLevel looks only at the bottom (module) scope, whatever the
// symbol's visibility.
func (t *Table) LookupModuleLevel(name string) (Symbol, bool) {
	if len(t.scopes) == 0 {
		return Symbol{}, false
	}
	sym, ok := t.scopes[0].symbols[name]
	return sym, ok
}

// LookupFunction resolves name and requires it to be a function.
func (t *Table) LookupFunction(name string) (Symbol, Function, error) {
	sym, ok := t.Lookup(name)
	if !ok {
		return Symbol{}, Function{}, &NotFoundError{Name: name}
	}
	fn, ok := sym.Kind.(Function)
	if !ok {
		return sym, Function{}, &TypeMismatchError{Name: name, Expected: "function", Found: KindName(sym.Kind)}
	}
	return sym, fn, nil
}

func (t *Table) IsDefined(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// Exports returns the export map sorted by key. Each symbol is named by its
// key, so entries merged under an alias come back as "alias::name".
func (t *Table) Exports() []Symbol {
	out := make([]Symbol, 0, len(t.globals))
	for key, sym := range t.globals {
		sym = sym.clone()
		sym.Name = key
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// CurrentSymbols returns the innermost scope's symbols sorted by name.
func (t *Table) CurrentSymbols() []Symbol {
	if len(t.scopes) == 0 {
		return nil
	}
	return sortedSymbols(t.scopes[len(t.scopes)-1].symbols)
}

// AllSymbols returns the export map followed by every scope, outermost
// first. A public symbol appears both as export and as scope entry.
func (t *Table) AllSymbols() []Symbol {
	out := t.Exports()
	for _, scope := range t.scopes {
		out = append(out, sortedSymbols(scope.symbols)...)
	}
	return out
}

func (t *Table) Functions() []Symbol {
	return t.exportsWhere(func(k Kind) bool {
		_, ok := k.(Function)
		return ok
	})
}

func (t *Table) Types() []Symbol {
	return t.exportsWhere(func(k Kind) bool {
		_, ok := k.(TypeDef)
		return ok
	})
}

// MergeExports copies every exported symbol of other into this table's
// export map, under "alias::name" when alias is not empty.
func (t *Table) MergeExports(other *Table, alias string) {
	t.ensureGlobals()
	for name, sym := range other.globals {
		key := name
		if alias != "" {
			key = alias + "::" + name
		}
		t.globals[key] = sym.clone()
	}
}

// ImportSymbols brings the named public symbols of other into the innermost
// scope. Imported symbols are not re-exported: they never enter this table's
// export map, so LookupGlobal and Exports do not see them. A name missing
// from other's export map is looked up in its module-level frame; if other
// defines it without exporting it the call fails with NotExportedError, and
// an unknown name fails with NotFoundError. Names before the failing one stay
// imported.
func (t *Table) ImportSymbols(other *Table, names []string) error {
	for _, name := range names {
		sym, ok := other.globals[name]
		if !ok {
			sym, ok = other.LookupModuleLevel(name)
		}
		if !ok {
			return &NotFoundError{Name: name}
		}
		if !sym.IsPublic() {
			return &NotExportedError{Name: name, Module: slices.Clone(sym.Module)}
		}
		if err := t.ImportSymbol(sym); err != nil {
			return err
		}
	}
	return nil
}

// ImportSymbol places a copy of sym, already cleared for access by the
// caller, in the innermost scope. Like ImportSymbols it does not export sym. Re-importing the same symbol is a no-op;
// colliding with a different symbol of the same name is AlreadyDefinedError.
func (t *Table) ImportSymbol(sym Symbol) error {
	if len(t.scopes) == 0 {
		return ErrNoActiveScope
	}
	scope := t.scopes[len(t.scopes)-1]
	if prev, ok := scope.symbols[sym.Name]; ok {
		if slices.Equal(prev.Module, sym.Module) && prev.Span == sym.Span {
			return nil
		}
		return &AlreadyDefinedError{Name: sym.Name, Span: sym.Span, Previous: prev.Span}
	}
	scope.symbols[sym.Name] = sym.clone()
	return nil
}

// VisibleFrom reports the symbol's visibility scope for access checks.
func (s Symbol) VisibleFrom(crate string) visibility.Scope {
	return visibility.NewScope(crate, s.Module)
}

func (t *Table) exportsWhere(keep func(Kind) bool) []Symbol {
	var out []Symbol
	for _, sym := range t.Exports() {
		if keep(sym.Kind) {
			out = append(out, sym)
		}
	}
	return out
}

func (t *Table) ensureGlobals() {
	if t.globals == nil {
		t.globals = make(map[string]Symbol)
	}
}

func sortedSymbols(m map[string]Symbol) []Symbol {
	out := make([]Symbol, 0, len(m))
	for _, sym := range m {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})
	return out
}
