// Package preprocessor resolves `import` directives across compilation
// units, preventing cycles and building the unit DAG (spec.md §4.2).
package preprocessor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/thrushlang/thrushc-go/internal/diagnostic"
	"github.com/thrushlang/thrushc-go/internal/lexer"
	"github.com/thrushlang/thrushc-go/internal/span"
	"github.com/thrushlang/thrushc-go/internal/token"
)

// Unit is one node of the import DAG: a source file plus the exported
// symbol names it (transitively) makes visible to its importer.
type Unit struct {
	Path     string // canonical absolute path
	Source   []byte
	Imports  []*Unit
	Exported []string
}

// Graph is the pass-scoped registry of every unit visited so far, keyed by
// canonical path — the "visited-modules set" from Design Notes §9.
type Graph struct {
	units map[string]*Unit
	stack []string // current import chain, for cycle messages
	bag   diagnostic.Bag
}

func NewGraph() *Graph {
	return &Graph{units: make(map[string]*Unit)}
}

// Load resolves path (and everything it imports, transitively) into the
// graph. Per-file errors are buffered; if any file fails, the caller should
// halt compilation after draining Diagnostics().
func (g *Graph) Load(path string) (*Unit, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return g.load(abs)
}

func (g *Graph) load(abs string) (*Unit, error) {
	if u, ok := g.units[abs]; ok {
		if lo.Contains(g.stack, abs) {
			g.bag.Errorf(diagnostic.ESyntaxUnexpected, span.Zero,
				"import cycle detected: %s", cycleChain(g.stack, abs))
			return nil, fmt.Errorf("import cycle at %s", abs)
		}
		return u, nil
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		g.bag.Errorf(diagnostic.ESyntaxUnexpected, span.Zero, "cannot read %s: %v", abs, err)
		return nil, err
	}
	u := &Unit{Path: abs, Source: src}
	g.units[abs] = u
	g.stack = append(g.stack, abs)
	defer func() { g.stack = g.stack[:len(g.stack)-1] }()

	imports, exported, err := g.scanModuleHeader(abs, src)
	if err != nil {
		return nil, err
	}
	for _, importPath := range imports {
		resolved := filepath.Join(filepath.Dir(abs), importPath)
		if filepath.Ext(resolved) == "" {
			resolved += ".th"
		}
		child, err := g.load(resolved)
		if err != nil {
			return nil, err
		}
		u.Imports = append(u.Imports, child)
	}
	u.Exported = exported
	return u, nil
}

func cycleChain(stack []string, closing string) string {
	out := ""
	for _, s := range stack {
		out += filepath.Base(s) + " -> "
	}
	return out + filepath.Base(closing)
}

// scanModuleHeader walks a minimal grammar recognizing only `import` and
// top-level `@public` constants/functions/structs/enums exposed for
// cross-module resolution (spec.md §4.2) — it does not build a full AST.
func (g *Graph) scanModuleHeader(path string, src []byte) (imports []string, exported []string, err error) {
	lx := lexer.New(path, src)
	toks, errs := lx.Lex()
	if len(errs) > 0 {
		for _, d := range errs {
			g.bag.Push(d)
		}
		return nil, nil, fmt.Errorf("lex error in %s", path)
	}
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind == token.KwImport && i+1 < len(toks) && toks[i+1].Kind == token.Str {
			imports = append(imports, string(toks[i+1].RawBytes))
			i++
			continue
		}
		if t.Kind == token.At && i+2 < len(toks) && toks[i+1].Kind == token.AtPublic {
			if name, ok := nextDeclName(toks, i+2); ok {
				exported = append(exported, name)
			}
		}
	}
	return imports, exported, nil
}

// nextDeclName scans forward from an attribute for the declared name,
// skipping any further attributes and the leading keyword.
func nextDeclName(toks []token.Token, from int) (string, bool) {
	for i := from; i < len(toks) && i < from+16; i++ {
		if toks[i].Kind == token.Ident {
			return toks[i].RawLexeme, true
		}
	}
	return "", false
}

func (g *Graph) Diagnostics() []diagnostic.Diagnostic { return g.bag.All() }
func (g *Graph) HasErrors() bool                      { return g.bag.HasErrors() }

// Flatten returns every unit reachable from root in post-order (leaves
// first), so the driver can parse dependencies before dependents.
func Flatten(root *Unit) []*Unit {
	seen := map[string]bool{}
	var out []*Unit
	var visit func(u *Unit)
	visit = func(u *Unit) {
		if seen[u.Path] {
			return
		}
		seen[u.Path] = true
		for _, dep := range u.Imports {
			visit(dep)
		}
		out = append(out, u)
	}
	visit(root)
	return out
}
