// Package parser is a line-oriented reader for module sources. It extracts
// use statements and top-level declarations and nothing else; bodies are
// skipped by brace depth.
package parser

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"modgraph/internal/engine/graph"
	"modgraph/internal/engine/resolver"
	"modgraph/internal/engine/source"
	"modgraph/internal/engine/symbols"
	"modgraph/internal/engine/visibility"
)

const visPattern = `(?:(pub(?:\((?:crate|super)\))?|prakāśita|khaṇḍa-gata|mitra-gata)\s+)?`

var (
	useRe   = regexp.MustCompile(`^` + visPattern + `use\s+(.*?)\s*;\s*$`)
	declRe  = regexp.MustCompile(`^` + visPattern + `(fn|struct|enum|type|trait|interface|let|const|static|macro)\s+(mut\s+)?([\p{L}_][\p{L}\p{M}\p{N}_]*)(.*)$`)
	fnRe    = regexp.MustCompile(`^\s*(?:<([^>]*)>)?\s*\(([^)]*)\)\s*(?:->\s*([^{;=]+))?`)
	genRe   = regexp.MustCompile(`^\s*<([^>]*)>`)
	varRe   = regexp.MustCompile(`^\s*:\s*([^=;]+)`)
	aliasRe = regexp.MustCompile(`^(.*?)\s+as\s+([\p{L}_][\p{L}\p{M}\p{N}_]*)$`)
)

// LineParser recognises:
//
//	use a::b;  use a::b as c;  use a::b::*;  use a::b::{x, y};
//	[pub|pub(crate)|pub(super)] fn|struct|enum|type|trait|interface|let|const|static|macro NAME
//
// `///` lines directly above a declaration become its docs.
type LineParser struct{}

func New() *LineParser {
	return &LineParser{}
}

func (p *LineParser) ParseFile(path string, content []byte) (*File, error) {
	file := &File{Path: path}

	var (
		depth     int
		inComment bool
		docs      []string
		offset    int
	)

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := scanner.Text()
		file.Lines++
		lineStart := offset
		offset += len(raw) + 1

		line, stillInComment := stripComments(raw, inComment)
		inComment = stillInComment
		trimmed := strings.TrimSpace(line)

		if depth > 0 || trimmed == "" {
			if strings.HasPrefix(strings.TrimSpace(raw), "///") && depth == 0 {
				docs = append(docs, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "///")))
			} else if trimmed != "" {
				docs = nil
			}
			depth = nextDepth(depth, line)
			continue
		}

		column := strings.Index(line, trimmed) + 1
		span := source.Span{
			File:   path,
			Line:   file.Lines,
			Column: column,
			Offset: lineStart + column - 1,
			Length: len(trimmed),
		}

		switch {
		case useRe.MatchString(trimmed):
			m := useRe.FindStringSubmatch(trimmed)
			decl, err := parseUse(m[2], span)
			if err != nil {
				return nil, err
			}
			decl.Visibility = keywordVisibility(m[1])
			file.Imports = append(file.Imports, decl)
		case strings.HasPrefix(trimmed, "use ") || strings.Contains(trimmed, " use "):
			if !strings.Contains(trimmed, ";") {
				return nil, &SyntaxError{Span: span, Message: "use statement must end with ';' on the same line"}
			}
			return nil, &SyntaxError{Span: span, Message: "malformed use statement"}
		case declRe.MatchString(trimmed):
			m := declRe.FindStringSubmatch(trimmed)
			sym := declaration(m[2], m[4], m[3] != "", m[5], span)
			sym.Visibility = keywordVisibility(m[1])
			if len(docs) > 0 {
				sym.Docs = strings.Join(docs, "\n")
			}
			file.Symbols = append(file.Symbols, sym)
		}

		docs = nil
		depth = nextDepth(depth, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return file, nil
}

func keywordVisibility(keyword string) visibility.Visibility {
	if v, ok := visibility.FromKeyword(keyword); ok {
		return v
	}
	return visibility.Private
}

func parseUse(body string, span source.Span) (graph.ImportDecl, error) {
	decl := graph.ImportDecl{Kind: graph.ImportModule, Span: span}
	target := strings.TrimSpace(body)

	switch {
	case strings.HasSuffix(target, "::*"):
		decl.Kind = graph.ImportGlob
		target = strings.TrimSuffix(target, "::*")
	case strings.HasSuffix(target, "}"):
		open := strings.Index(target, "::{")
		if open < 0 {
			return decl, &SyntaxError{Span: span, Message: "selective import needs the form a::b::{x, y}"}
		}
		decl.Kind = graph.ImportSelective
		for _, name := range strings.Split(target[open+3:len(target)-1], ",") {
			if name = strings.TrimSpace(name); name != "" {
				decl.Names = append(decl.Names, name)
			}
		}
		if len(decl.Names) == 0 {
			return decl, &SyntaxError{Span: span, Message: "empty import list"}
		}
		target = target[:open]
	default:
		if m := aliasRe.FindStringSubmatch(target); m != nil {
			target, decl.Alias = m[1], m[2]
		}
	}

	path, err := resolver.ParseImportPath(target)
	if err != nil {
		return decl, &SyntaxError{Span: span, Message: err.Error()}
	}
	decl.Path = path
	return decl, nil
}

func declaration(keyword, name string, mutable bool, rest string, span source.Span) symbols.Symbol {
	switch keyword {
	case "fn":
		fn := symbols.Function{}
		if m := fnRe.FindStringSubmatch(rest); m != nil {
			fn.Generics = splitList(m[1])
			for _, param := range splitList(m[2]) {
				if _, ty, ok := strings.Cut(param, ":"); ok {
					fn.Params = append(fn.Params, namedType(ty))
				} else if param != "self" && param != "&self" && param != "&mut self" {
					fn.Params = append(fn.Params, namedType(param))
				} else {
					fn.IsMethod = true
				}
			}
			if ret := strings.TrimSpace(m[3]); ret != "" {
				fn.Return = namedType(ret)
			}
		}
		sym := symbols.NewFunction(name, fn.Params, fn.Return, span)
		sym.Kind = fn
		return sym
	case "struct":
		return symbols.NewTypeDef(name, symbols.Struct, generics(rest), span)
	case "enum":
		return symbols.NewTypeDef(name, symbols.Enum, generics(rest), span)
	case "type":
		return symbols.NewTypeDef(name, symbols.Alias, generics(rest), span)
	case "trait", "interface":
		return symbols.NewInterface(name, nil, nil, span)
	case "macro":
		return symbols.NewMacro(name, span)
	default:
		var ty symbols.Type
		if m := varRe.FindStringSubmatch(rest); m != nil {
			ty = namedType(m[1])
		}
		return symbols.NewVariable(name, ty, mutable, span)
	}
}

func generics(rest string) []string {
	if m := genRe.FindStringSubmatch(rest); m != nil {
		return splitList(m[1])
	}
	return nil
}

// namedType reads "Vec<i64>" style type text. Nested arguments split on the
// top-level commas only.
func namedType(text string) symbols.Type {
	text = strings.TrimSpace(text)
	open := strings.Index(text, "<")
	if open < 0 || !strings.HasSuffix(text, ">") {
		return symbols.Named{Name: text}
	}
	named := symbols.Named{Name: strings.TrimSpace(text[:open])}
	for _, arg := range splitTopLevel(text[open+1 : len(text)-1]) {
		named.Args = append(named.Args, namedType(arg))
	}
	return named
}

func splitTopLevel(text string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range text {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(text[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(text[start:]); last != "" {
		parts = append(parts, last)
	}
	return parts
}

func splitList(text string) []string {
	var out []string
	for _, part := range splitTopLevel(text) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// stripComments removes // and /* */ comments and the contents of string
// literals so braces inside them are not counted.
func stripComments(line string, inComment bool) (string, bool) {
	var (
		b        strings.Builder
		inString bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inComment:
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				inComment = false
				i++
			}
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
				b.WriteByte(c)
			}
		case c == '"':
			inString = true
			b.WriteByte(c)
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return b.String(), false
		case c == '/' && i+1 < len(line) && line[i+1] == '*':
			inComment = true
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), inComment
}

func nextDepth(depth int, line string) int {
	depth += strings.Count(line, "{") - strings.Count(line, "}")
	if depth < 0 {
		return 0
	}
	return depth
}
