// Package symbols is the codegen-level counterpart of internal/symtab:
// once the type checker has resolved every name, codegen needs the same
// lookup discipline but keyed to tinygo.org/x/go-llvm values instead of
// semantic types (spec.md §3, "LLVM symbol tables").
package symbols

import "tinygo.org/x/go-llvm"

// Scope is one level of the local scope stack: a function's parameters,
// or one block's locals/LLIs/local constants/local statics.
type Scope struct {
	Values map[string]llvm.Value
	Types  map[string]llvm.Type // the allocated type backing each value, needed for opaque-pointer GEP/load
}

func newScope() *Scope {
	return &Scope{Values: map[string]llvm.Value{}, Types: map[string]llvm.Type{}}
}

// Table mirrors symtab.Table's lookup order at the codegen level: params
// → locals innermost-out → globals → functions.
type Table struct {
	Params    *Scope
	Locals    []*Scope // innermost last
	Globals   map[string]llvm.Value
	Functions map[string]llvm.Value
	// GlobalTypes/FunctionSigs hold the llvm.Type backing each global or
	// function, since the opaque-pointer codegen (memgen/valuegen) always
	// needs the pointee type alongside the llvm.Value.
	GlobalTypes  map[string]llvm.Type
	FunctionSigs map[string]llvm.Type
}

func New() *Table {
	return &Table{
		Params:       newScope(),
		Globals:      map[string]llvm.Value{},
		Functions:    map[string]llvm.Value{},
		GlobalTypes:  map[string]llvm.Type{},
		FunctionSigs: map[string]llvm.Type{},
	}
}

func (t *Table) PushScope() { t.Locals = append(t.Locals, newScope()) }
func (t *Table) PopScope()  { t.Locals = t.Locals[:len(t.Locals)-1] }
func (t *Table) ResetParams() { t.Params = newScope() }

func (t *Table) DeclareParam(name string, v llvm.Value, ty llvm.Type) {
	t.Params.Values[name] = v
	t.Params.Types[name] = ty
}

func (t *Table) DeclareLocal(name string, v llvm.Value, ty llvm.Type) {
	s := t.Locals[len(t.Locals)-1]
	s.Values[name] = v
	s.Types[name] = ty
}

func (t *Table) DeclareGlobal(name string, v llvm.Value, ty llvm.Type) {
	t.Globals[name] = v
	t.GlobalTypes[name] = ty
}

func (t *Table) DeclareFunction(name string, v llvm.Value, sig llvm.Type) {
	t.Functions[name] = v
	t.FunctionSigs[name] = sig
}

// Lookup resolves name to its llvm.Value and the llvm.Type of what it
// points to (the allocated type for a stack slot, the pointee type for a
// global, or the function's signature type for a function), following
// spec.md §3's lookup order.
func (t *Table) Lookup(name string) (llvm.Value, llvm.Type, bool) {
	if v, ok := t.Params.Values[name]; ok {
		return v, t.Params.Types[name], true
	}
	for i := len(t.Locals) - 1; i >= 0; i-- {
		if v, ok := t.Locals[i].Values[name]; ok {
			return v, t.Locals[i].Types[name], true
		}
	}
	if v, ok := t.Globals[name]; ok {
		return v, t.GlobalTypes[name], true
	}
	if v, ok := t.Functions[name]; ok {
		return v, t.FunctionSigs[name], true
	}
	var zero llvm.Value
	var zeroTy llvm.Type
	return zero, zeroTy, false
}
