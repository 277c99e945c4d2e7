// Package symtab implements the scope-stack symbol table from spec.md §3.
// Symbols are addressed by stable id (the source-observed name), never by
// pointer identity of an owning node, which is what makes forward
// references and call cycles trivial (Design Notes §9).
package symtab

import (
	"github.com/thrushlang/thrushc-go/internal/span"
	"github.com/thrushlang/thrushc-go/internal/types"
)

type Kind uint8

const (
	KindParam Kind = iota
	KindLocal
	KindLLI
	KindLocalConst
	KindLocalStatic
	KindGlobalConst
	KindGlobalStatic
	KindFunction
	KindAsmFunction
	KindIntrinsic
	KindStruct
	KindEnum
	KindCustomType
)

// Symbol is any name-addressable entity a later pass can resolve.
type Symbol struct {
	Name   string
	Kind   Kind
	Type   types.Type
	Span   span.Span
	Mut    bool
	// Used is set by the type checker and Mutated by the linter pass
	// (spec.md §4.5); both live here so a single stable-id lookup serves
	// both passes.
	Used    bool
	Mutated bool
}

// scope is one level of the scope stack: function params, an innermost
// local block, or (for the outermost two levels) module-wide constants,
// statics, and declarations.
type scope struct {
	symbols map[string]*Symbol
}

func newScope() *scope { return &scope{symbols: make(map[string]*Symbol)} }

// Table is the full lookup chain. Globals and Functions are separate maps
// consulted only after every local scope has missed, matching the lookup
// order specified in spec.md §3.
type Table struct {
	params    *scope
	locals    []*scope // innermost last
	globals   map[string]*Symbol
	functions map[string]*Symbol
}

func New() *Table {
	return &Table{
		params:    newScope(),
		globals:   make(map[string]*Symbol),
		functions: make(map[string]*Symbol),
	}
}

func (t *Table) PushScope() { t.locals = append(t.locals, newScope()) }
func (t *Table) PopScope()  { t.locals = t.locals[:len(t.locals)-1] }

func (t *Table) ResetParams() { t.params = newScope() }

func (t *Table) DeclareParam(s *Symbol)  { t.params.symbols[s.Name] = s }
func (t *Table) DeclareLocal(s *Symbol)  { t.locals[len(t.locals)-1].symbols[s.Name] = s }
func (t *Table) DeclareGlobal(s *Symbol) { t.globals[s.Name] = s }
func (t *Table) DeclareFunction(s *Symbol) { t.functions[s.Name] = s }

// Lookup implements the order from spec.md §3: function parameters of the
// current frame, innermost local scope outward, then global
// constants/statics, then functions/assembler-functions/intrinsics.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	if s, ok := t.params.symbols[name]; ok {
		return s, true
	}
	for i := len(t.locals) - 1; i >= 0; i-- {
		if s, ok := t.locals[i].symbols[name]; ok {
			return s, true
		}
	}
	if s, ok := t.globals[name]; ok {
		return s, true
	}
	if s, ok := t.functions[name]; ok {
		return s, true
	}
	return nil, false
}

// LookupGlobal resolves only against globals/functions, skipping the
// parameter and local scopes.
func (t *Table) LookupGlobal(name string) (*Symbol, bool) {
	if s, ok := t.globals[name]; ok {
		return s, true
	}
	if s, ok := t.functions[name]; ok {
		return s, true
	}
	return nil, false
}

// AllGlobals returns every module-scope symbol, used by the linter's
// unused-symbol sweep.
func (t *Table) AllGlobals() []*Symbol {
	out := make([]*Symbol, 0, len(t.globals)+len(t.functions))
	for _, s := range t.globals {
		out = append(out, s)
	}
	for _, s := range t.functions {
		out = append(out, s)
	}
	return out
}
