// Package types implements the Type algebra from spec.md §3: a tagged
// variant closed under composition, with structural equality.
package types

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/thrushlang/thrushc-go/internal/span"
)

// IntKind enumerates the integer families.
type IntKind uint8

const (
	S8 IntKind = iota
	S16
	S32
	S64
	U8
	U16
	U32
	U64
	U128
	USize
	SSize
)

func (k IntKind) Signed() bool {
	switch k {
	case S8, S16, S32, S64, SSize:
		return true
	default:
		return false
	}
}

// Bits returns the nominal bit width; USize/SSize are resolved against
// target data by the codegen type lowerer (spec.md §4.6).
func (k IntKind) Bits() int {
	switch k {
	case S8, U8:
		return 8
	case S16, U16:
		return 16
	case S32, U32:
		return 32
	case S64, U64, USize, SSize:
		return 64
	case U128:
		return 128
	}
	return 0
}

func (k IntKind) String() string {
	names := [...]string{"s8", "s16", "s32", "s64", "u8", "u16", "u32", "u64", "u128", "usize", "ssize"}
	if int(k) < len(names) {
		return names[k]
	}
	return "int?"
}

type FloatKind uint8

const (
	F32 FloatKind = iota
	F64
	F128
	X86_80
	PPC128
)

func (k FloatKind) String() string {
	names := [...]string{"f32", "f64", "f128", "x86_80", "ppc128"}
	if int(k) < len(names) {
		return names[k]
	}
	return "float?"
}

// Type is the closed variant every AST node, attribute bag entry, and
// diagnostic type mismatch is expressed in terms of. Every non-trivial
// composite carries the Span of its origin.
type Type interface {
	isType()
	Span() span.Span
	String() string
	// Equal performs structural equality, ignoring Span.
	Equal(other Type) bool
}

type base struct{ span span.Span }

func (base) isType()            {}
func (b base) Span() span.Span  { return b.span }

// --- scalars ---

type Int struct {
	base
	Kind IntKind
}

func NewInt(sp span.Span, kind IntKind) Int { return Int{base{sp}, kind} }
func (t Int) String() string                { return t.Kind.String() }
func (t Int) Equal(o Type) bool {
	other, ok := o.(Int)
	return ok && other.Kind == t.Kind
}

type Float struct {
	base
	Kind FloatKind
}

func NewFloat(sp span.Span, kind FloatKind) Float { return Float{base{sp}, kind} }
func (t Float) String() string                    { return t.Kind.String() }
func (t Float) Equal(o Type) bool {
	other, ok := o.(Float)
	return ok && other.Kind == t.Kind
}

type Bool struct{ base }

func NewBool(sp span.Span) Bool    { return Bool{base{sp}} }
func (Bool) String() string        { return "bool" }
func (t Bool) Equal(o Type) bool   { _, ok := o.(Bool); return ok }

type Char struct{ base }

func NewChar(sp span.Span) Char  { return Char{base{sp}} }
func (Char) String() string      { return "char" }
func (t Char) Equal(o Type) bool { _, ok := o.(Char); return ok }

type Void struct{ base }

func NewVoid(sp span.Span) Void  { return Void{base{sp}} }
func (Void) String() string      { return "void" }
func (t Void) Equal(o Type) bool { _, ok := o.(Void); return ok }

type Addr struct{ base }

func NewAddr(sp span.Span) Addr  { return Addr{base{sp}} }
func (Addr) String() string      { return "addr" }
func (t Addr) Equal(o Type) bool { _, ok := o.(Addr); return ok }

type Str struct{ base }

func NewStr(sp span.Span) Str   { return Str{base{sp}} }
func (Str) String() string      { return "str" }
func (t Str) Equal(o Type) bool { _, ok := o.(Str); return ok }

// --- composites ---

// Ptr is a raw (Pointee == nil) or typed pointer.
type Ptr struct {
	base
	Pointee Type // nil for raw `ptr`
}

func NewPtr(sp span.Span, pointee Type) Ptr { return Ptr{base{sp}, pointee} }
func (t Ptr) String() string {
	if t.Pointee == nil {
		return "ptr"
	}
	return fmt.Sprintf("ptr[%s]", t.Pointee)
}
func (t Ptr) Equal(o Type) bool {
	other, ok := o.(Ptr)
	if !ok {
		return false
	}
	if t.Pointee == nil || other.Pointee == nil {
		return t.Pointee == nil && other.Pointee == nil
	}
	return t.Pointee.Equal(other.Pointee)
}

// Array is the dynamically-sized {ptr,len} wrapper (classical backend's
// representation; see SPEC_FULL.md Open Question 2).
type Array struct {
	base
	Elem     Type
	Inferred Type // set once element type is inferred from an initializer, else nil
}

func NewArray(sp span.Span, elem Type) Array { return Array{base{sp}, elem, nil} }
func (t Array) String() string               { return fmt.Sprintf("array[%s]", t.Elem) }
func (t Array) Equal(o Type) bool {
	other, ok := o.(Array)
	return ok && t.Elem.Equal(other.Elem)
}

type FixedArray struct {
	base
	Elem Type
	N    uint32
}

func NewFixedArray(sp span.Span, elem Type, n uint32) FixedArray {
	return FixedArray{base{sp}, elem, n}
}
func (t FixedArray) String() string { return fmt.Sprintf("[%s; %d]", t.Elem, t.N) }
func (t FixedArray) Equal(o Type) bool {
	other, ok := o.(FixedArray)
	return ok && t.N == other.N && t.Elem.Equal(other.Elem)
}

// StructMods are the orthogonal struct-level modifiers.
type StructMods struct {
	Packed bool
}

type Struct struct {
	base
	Name      string
	Fields    []Type
	FieldNames []string
	Mods      StructMods
}

func NewStruct(sp span.Span, name string, fieldNames []string, fields []Type, mods StructMods) Struct {
	return Struct{base{sp}, name, fields, fieldNames, mods}
}
func (t Struct) String() string { return t.Name }
func (t Struct) Equal(o Type) bool {
	other, ok := o.(Struct)
	if !ok || t.Name != other.Name || len(t.Fields) != len(other.Fields) {
		return false
	}
	for i := range t.Fields {
		if !t.Fields[i].Equal(other.Fields[i]) {
			return false
		}
	}
	return true
}

// FieldIndex returns the struct-literal index of a field name.
func (t Struct) FieldIndex(name string) (int, bool) {
	idx := lo.IndexOf(t.FieldNames, name)
	return idx, idx >= 0
}

// Const wraps a type as compile-time immutable. Const is idempotent:
// Const(Const(T)) normalizes to Const(T) — see Normalize.
type Const struct {
	base
	Inner Type
}

func NewConst(sp span.Span, inner Type) Type {
	return Normalize(Const{base{sp}, inner})
}
func (t Const) String() string { return fmt.Sprintf("const %s", t.Inner) }
func (t Const) Equal(o Type) bool {
	other, ok := o.(Const)
	return ok && t.Inner.Equal(other.Inner)
}

// Normalize collapses nested Const and re-derives span metadata. It is the
// single place idempotency of Const is enforced (spec.md §3 invariant).
func Normalize(t Type) Type {
	c, ok := t.(Const)
	if !ok {
		return t
	}
	if inner, ok := c.Inner.(Const); ok {
		return Normalize(Const{c.base, inner.Inner})
	}
	return c
}

// FnRefMods controls call-site legality for a Fn-typed reference.
type FnRefMods struct {
	Variadic bool
}

// Fn is a first-class function-reference type; indirect calls consume it.
type Fn struct {
	base
	Params []Type
	Ret    Type
	Mods   FnRefMods
}

func NewFn(sp span.Span, params []Type, ret Type, mods FnRefMods) Fn {
	return Fn{base{sp}, params, ret, mods}
}
func (t Fn) String() string {
	parts := lo.Map(t.Params, func(p Type, _ int) string { return p.String() })
	return fmt.Sprintf("fn[%s] -> %s", strings.Join(parts, ","), t.Ret)
}
func (t Fn) Equal(o Type) bool {
	other, ok := o.(Fn)
	if !ok || len(t.Params) != len(other.Params) || !t.Ret.Equal(other.Ret) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equal(other.Params[i]) {
			return false
		}
	}
	return true
}

// Unresolved is a placeholder replaced during type-check resolution; any
// occurrence reaching codegen is a compiler bug (spec.md §3 invariant).
type Unresolved struct {
	base
	Hint string
}

func NewUnresolved(sp span.Span, hint string) Unresolved { return Unresolved{base{sp}, hint} }
func (t Unresolved) String() string                      { return fmt.Sprintf("<unresolved:%s>", t.Hint) }
func (t Unresolved) Equal(o Type) bool {
	_, ok := o.(Unresolved)
	return ok
}

// IsUnresolved reports whether t (recursively through Const) is Unresolved.
func IsUnresolved(t Type) bool {
	switch v := t.(type) {
	case Unresolved:
		return true
	case Const:
		return IsUnresolved(v.Inner)
	default:
		return false
	}
}

// --- classification helpers shared by the type checker and codegen ---

// Underlying strips Const wrappers.
func Underlying(t Type) Type {
	if c, ok := t.(Const); ok {
		return Underlying(c.Inner)
	}
	return t
}

func IsInt(t Type) bool   { _, ok := Underlying(t).(Int); return ok }
func IsFloat(t Type) bool { _, ok := Underlying(t).(Float); return ok }
func IsNumeric(t Type) bool {
	return IsInt(t) || IsFloat(t)
}

// IsPointerLike matches Ptr(_), Ptr(Some(T)), or Addr — "pointer-like type"
// in the glossary: accepted wherever memory operations require an address.
func IsPointerLike(t Type) bool {
	switch Underlying(t).(type) {
	case Ptr, Addr:
		return true
	default:
		return false
	}
}

func IsIndexable(t Type) bool {
	switch Underlying(t).(type) {
	case Array, FixedArray:
		return true
	case Ptr:
		p := Underlying(t).(Ptr)
		if p.Pointee == nil {
			return false
		}
		switch Underlying(p.Pointee).(type) {
		case Array, FixedArray, Struct:
			return true
		}
	}
	return false
}

// Conforms reports whether value type `from` may be used where `to` is
// expected, per the conformance rules exercised throughout §4.4.
func Conforms(from, to Type) bool {
	from, to = Underlying(from), Underlying(to)
	if from.Equal(to) {
		return true
	}
	if IsInt(from) && IsInt(to) {
		// narrower integer literals widen implicitly; any integer type conforms
		// to any other, and call arguments are checked with this same rule.
		return true
	}
	if IsFloat(from) && IsFloat(to) {
		return true
	}
	if p1, ok := from.(Ptr); ok {
		if p2, ok := to.(Ptr); ok {
			if p1.Pointee == nil || p2.Pointee == nil {
				return true
			}
			return p1.Pointee.Equal(p2.Pointee)
		}
	}
	return false
}

// Wider returns the larger of two numeric types by bit width (arithmetic
// result widening rule in §4.4).
func Wider(a, b Type) Type {
	ua, ub := Underlying(a), Underlying(b)
	if ai, ok := ua.(Int); ok {
		if bi, ok := ub.(Int); ok {
			if bi.Kind.Bits() > ai.Kind.Bits() {
				return b
			}
			return a
		}
	}
	if _, ok := ua.(Float); ok {
		if _, ok := ub.(Float); ok {
			af, bf := ua.(Float), ub.(Float)
			if bf.Kind > af.Kind {
				return b
			}
			return a
		}
	}
	return a
}
