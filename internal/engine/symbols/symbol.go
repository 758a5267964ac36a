package symbols

import (
	"fmt"
	"slices"
	"strings"

	"modgraph/internal/engine/source"
	"modgraph/internal/engine/visibility"
)

// Type is the type checker's representation of a symbol's type. The module
// system only carries it along.
type Type interface {
	String() string
}

// Named is a minimal Type for callers without a richer type representation.
type Named struct {
	Name string
	Args []Type
}

func (n Named) String() string {
	if len(n.Args) == 0 {
		return n.Name
	}
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Name + "<" + strings.Join(args, ", ") + ">"
}

// Kind is the closed set of symbol kinds. Only the types in this file
// implement it.
type Kind interface {
	isKind()
}

type Variable struct{}

type Function struct {
	Params   []Type
	Return   Type
	IsMethod bool
	Generics []string
}

type TypeKind uint8

const (
	Struct TypeKind = iota
	Enum
	Alias
	Primitive
)

func (k TypeKind) String() string {
	switch k {
	case Struct:
		return "struct"
	case Enum:
		return "enum"
	case Alias:
		return "alias"
	case Primitive:
		return "primitive"
	default:
		return "invalid"
	}
}

type TypeDef struct {
	Kind     TypeKind
	Generics []string
}

type ModuleRef struct{}

type ImportAlias struct {
	OriginalPath []string
}

type Interface struct {
	Methods         []Function
	AssociatedTypes []string
}

type Macro struct{}

func (Variable) isKind()    {}
func (Function) isKind()    {}
func (TypeDef) isKind()     {}
func (ModuleRef) isKind()   {}
func (ImportAlias) isKind() {}
func (Interface) isKind()   {}
func (Macro) isKind()       {}

// KindName returns the lower-case name of k.
func KindName(k Kind) string {
	switch k.(type) {
	case Variable:
		return "variable"
	case Function:
		return "function"
	case TypeDef:
		return "type"
	case ModuleRef:
		return "module"
	case ImportAlias:
		return "import"
	case Interface:
		return "interface"
	case Macro:
		return "macro"
	default:
		panic(fmt.Sprintf("symbols: unknown kind %T", k))
	}
}

// Symbol is a named entity of a module.
type Symbol struct {
	Name       string
	Kind       Kind
	Type       Type
	Visibility visibility.Visibility
	Module     []string
	Span       source.Span
	Docs       string
	Mutable    bool
}

func NewVariable(name string, ty Type, mutable bool, span source.Span) Symbol {
	return Symbol{Name: name, Kind: Variable{}, Type: ty, Mutable: mutable, Span: span}
}

func NewFunction(name string, params []Type, ret Type, span source.Span) Symbol {
	return Symbol{Name: name, Kind: Function{Params: params, Return: ret}, Span: span}
}

func NewTypeDef(name string, kind TypeKind, generics []string, span source.Span) Symbol {
	return Symbol{Name: name, Kind: TypeDef{Kind: kind, Generics: generics}, Span: span}
}

func NewModuleSymbol(name string, span source.Span) Symbol {
	return Symbol{Name: name, Kind: ModuleRef{}, Span: span}
}

func NewImportAlias(name string, original []string, span source.Span) Symbol {
	return Symbol{Name: name, Kind: ImportAlias{OriginalPath: slices.Clone(original)}, Span: span}
}

func NewInterface(name string, methods []Function, associated []string, span source.Span) Symbol {
	return Symbol{Name: name, Kind: Interface{Methods: methods, AssociatedTypes: associated}, Span: span}
}

func NewMacro(name string, span source.Span) Symbol {
	return Symbol{Name: name, Kind: Macro{}, Span: span}
}

func (s Symbol) Public() Symbol {
	s.Visibility = visibility.Public
	return s
}

func (s Symbol) WithVisibility(v visibility.Visibility) Symbol {
	s.Visibility = v
	return s
}

func (s Symbol) WithDocs(docs string) Symbol {
	s.Docs = docs
	return s
}

func (s Symbol) InModule(module []string) Symbol {
	s.Module = slices.Clone(module)
	return s
}

func (s Symbol) IsPublic() bool {
	return s.Visibility == visibility.Public
}

// QualifiedName joins the owning module path and the name with "::".
func (s Symbol) QualifiedName() string {
	if len(s.Module) == 0 {
		return s.Name
	}
	return strings.Join(s.Module, "::") + "::" + s.Name
}

// clone copies the slices a Symbol owns so snapshots in the export map do not
// alias the scope entry.
func (s Symbol) clone() Symbol {
	s.Module = slices.Clone(s.Module)
	switch k := s.Kind.(type) {
	case Function:
		k.Params = slices.Clone(k.Params)
		k.Generics = slices.Clone(k.Generics)
		s.Kind = k
	case TypeDef:
		k.Generics = slices.Clone(k.Generics)
		s.Kind = k
	case ImportAlias:
		k.OriginalPath = slices.Clone(k.OriginalPath)
		s.Kind = k
	case Interface:
		k.Methods = slices.Clone(k.Methods)
		k.AssociatedTypes = slices.Clone(k.AssociatedTypes)
		s.Kind = k
	}
	return s
}
