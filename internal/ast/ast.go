// Package ast is the single sum type described in spec.md §3: literals,
// expressions, statements, and declarations, each node embedding its
// computed Type, Span, and metadata.
package ast

import (
	"github.com/thrushlang/thrushc-go/internal/attribute"
	"github.com/thrushlang/thrushc-go/internal/span"
	"github.com/thrushlang/thrushc-go/internal/types"
)

// Node is implemented by every AST member.
type Node interface {
	Span() span.Span
}

// Expr is any expression-family node; every Expr carries a computed Type.
type Expr interface {
	Node
	Type() types.Type
	SetType(types.Type)
	exprNode()
}

// Stmt is any statement-family node.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is any top-level declaration-family node.
type Decl interface {
	Stmt
	declNode()
}

type base struct {
	sp span.Span
	ty types.Type
}

func (b base) Span() span.Span     { return b.sp }
func (b *base) Type() types.Type   { return b.ty }
func (b *base) SetType(t types.Type) { b.ty = t }

func newBase(sp span.Span) base { return base{sp: sp} }

// File is the root of one parsed compilation unit.
type File struct {
	Path    string
	Imports []*Import
	Decls   []Decl
}

func (f *File) Span() span.Span { return span.Zero }

type Import struct {
	base
	Path  string
	Alias string
}

func (*Import) exprNode() {}
func (*Import) Span() span.Span { return span.Span{} }

// ---------------- literals ----------------

type Integer struct {
	base
	Raw    string
	Value  uint64
	Signed bool
}

func NewInteger(sp span.Span, raw string, v uint64, signed bool) *Integer {
	return &Integer{base: newBase(sp), Raw: raw, Value: v, Signed: signed}
}
func (*Integer) exprNode() {}

type FloatLit struct {
	base
	Raw   string
	Value float64
}

func NewFloatLit(sp span.Span, raw string, v float64) *FloatLit {
	return &FloatLit{base: newBase(sp), Raw: raw, Value: v}
}
func (*FloatLit) exprNode() {}

type CharLit struct {
	base
	Value byte
}

func NewCharLit(sp span.Span, v byte) *CharLit { return &CharLit{base: newBase(sp), Value: v} }
func (*CharLit) exprNode()                     {}

// StrLitKind distinguishes C-string (NUL-terminated) from raw-bytes.
type StrLitKind uint8

const (
	CString StrLitKind = iota
	RawBytes
)

type StrLit struct {
	base
	Value string
	Bytes []byte
	Kind  StrLitKind
}

func NewStrLit(sp span.Span, value string, bytes []byte, kind StrLitKind) *StrLit {
	return &StrLit{base: newBase(sp), Value: value, Bytes: bytes, Kind: kind}
}
func (*StrLit) exprNode() {}

type BoolLit struct {
	base
	Value bool
}

func NewBoolLit(sp span.Span, v bool) *BoolLit { return &BoolLit{base: newBase(sp), Value: v} }
func (*BoolLit) exprNode()                     {}

type NullPtr struct{ base }

func NewNullPtr(sp span.Span) *NullPtr { return &NullPtr{base: newBase(sp)} }
func (*NullPtr) exprNode()             {}

// ---------------- expressions ----------------

type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpAnd
	OpOr
	OpXor
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLogAnd
	OpLogOr
)

type BinaryOp struct {
	base
	Op          BinOp
	Left, Right Expr
}

func NewBinaryOp(sp span.Span, op BinOp, l, r Expr) *BinaryOp {
	return &BinaryOp{base: newBase(sp), Op: op, Left: l, Right: r}
}
func (*BinaryOp) exprNode() {}

type UnOp uint8

const (
	OpNeg UnOp = iota
	OpNot
	OpPreInc
	OpPreDec
	OpPostInc
	OpPostDec
)

type UnaryOp struct {
	base
	Op      UnOp
	Operand Expr
}

func NewUnaryOp(sp span.Span, op UnOp, operand Expr) *UnaryOp {
	return &UnaryOp{base: newBase(sp), Op: op, Operand: operand}
}
func (*UnaryOp) exprNode() {}

// Group is a parenthesized expression, kept so codegen/linter can tell a
// grouped place-expression from a synthesized one.
type Group struct {
	base
	Inner Expr
}

func NewGroup(sp span.Span, inner Expr) *Group { return &Group{base: newBase(sp), Inner: inner} }
func (*Group) exprNode()                       {}

// As is a cast expression.
type As struct {
	base
	Operand Expr
	Target  types.Type
}

func NewAs(sp span.Span, operand Expr, target types.Type) *As {
	return &As{base: newBase(sp), Operand: operand, Target: target}
}
func (*As) exprNode() {}

type Deref struct {
	base
	Operand Expr
}

func NewDeref(sp span.Span, operand Expr) *Deref { return &Deref{base: newBase(sp), Operand: operand} }
func (*Deref) exprNode()                         {}

// DirectRef is `&expr` / address-of a place-expression.
type DirectRef struct {
	base
	Operand Expr
}

func NewDirectRef(sp span.Span, operand Expr) *DirectRef {
	return &DirectRef{base: newBase(sp), Operand: operand}
}
func (*DirectRef) exprNode() {}

// Reference is a bare identifier resolved to a symbol (variable, const,
// static, function, enum member...) during type-check.
type Reference struct {
	base
	Name       string
	IsAllocated bool // place-expression metadata, consumed by DirectRef/linter
}

func NewReference(sp span.Span, name string) *Reference {
	return &Reference{base: newBase(sp), Name: name}
}
func (*Reference) exprNode() {}

type Call struct {
	base
	Callee Expr
	Args   []Expr
}

func NewCall(sp span.Span, callee Expr, args []Expr) *Call {
	return &Call{base: newBase(sp), Callee: callee, Args: args}
}
func (*Call) exprNode() {}

// IndirectCall calls through a Fn-typed value.
type IndirectCall struct {
	base
	Callee Expr
	Args   []Expr
}

func NewIndirectCall(sp span.Span, callee Expr, args []Expr) *IndirectCall {
	return &IndirectCall{base: newBase(sp), Callee: callee, Args: args}
}
func (*IndirectCall) exprNode() {}

type Index struct {
	base
	Base  Expr
	Index Expr
}

func NewIndex(sp span.Span, base_ Expr, idx Expr) *Index {
	return &Index{base: newBase(sp), Base: base_, Index: idx}
}
func (*Index) exprNode() {}

type Property struct {
	base
	Base  Expr
	Field string
}

func NewProperty(sp span.Span, base_ Expr, field string) *Property {
	return &Property{base: newBase(sp), Base: base_, Field: field}
}
func (*Property) exprNode() {}

// Constructor is `new StructName { field: expr, ... }`.
type Constructor struct {
	base
	StructName string
	Fields     []string
	Values     []Expr
}

func NewConstructor(sp span.Span, name string, fields []string, values []Expr) *Constructor {
	return &Constructor{base: newBase(sp), StructName: name, Fields: fields, Values: values}
}
func (*Constructor) exprNode() {}

// FixedArrayLit is `fixed [e1, e2, ...]`.
type FixedArrayLit struct {
	base
	Elems []Expr
}

func NewFixedArrayLit(sp span.Span, elems []Expr) *FixedArrayLit {
	return &FixedArrayLit{base: newBase(sp), Elems: elems}
}
func (*FixedArrayLit) exprNode() {}

// ArrayLit is `[e1, e2, ...]`, the dynamically-sized {ptr,len} array.
type ArrayLit struct {
	base
	Elems []Expr
}

func NewArrayLit(sp span.Span, elems []Expr) *ArrayLit {
	return &ArrayLit{base: newBase(sp), Elems: elems}
}
func (*ArrayLit) exprNode() {}

type EnumValue struct {
	base
	EnumName   string
	VariantName string
}

func NewEnumValue(sp span.Span, enumName, variant string) *EnumValue {
	return &EnumValue{base: newBase(sp), EnumName: enumName, VariantName: variant}
}
func (*EnumValue) exprNode() {}

// AsmDialect selects the inline-asm template syntax.
type AsmDialect uint8

const (
	Intel AsmDialect = iota
	ATT
)

// AsmValue is an inline `asm { template : constraints : operands }` expr.
type AsmValue struct {
	base
	Template    string
	Constraints string
	Operands    []Expr
	Dialect     AsmDialect
	SideEffects bool
}

func NewAsmValue(sp span.Span, template, constraints string, operands []Expr, dialect AsmDialect, sideEffects bool) *AsmValue {
	return &AsmValue{base: newBase(sp), Template: template, Constraints: constraints, Operands: operands, Dialect: dialect, SideEffects: sideEffects}
}
func (*AsmValue) exprNode() {}

// BuiltinKind enumerates the value-producing builtins.
type BuiltinKind uint8

const (
	BuiltinSizeof BuiltinKind = iota
	BuiltinAlignof
	BuiltinHalloc
	BuiltinMemset
	BuiltinMemmove
	BuiltinMemcpy
)

type Builtin struct {
	base
	Kind     BuiltinKind
	TypeArg  types.Type // for sizeof/alignof/halloc
	Args     []Expr     // for memset/memmove/memcpy
}

func NewBuiltin(sp span.Span, kind BuiltinKind, typeArg types.Type, args []Expr) *Builtin {
	return &Builtin{base: newBase(sp), Kind: kind, TypeArg: typeArg, Args: args}
}
func (*Builtin) exprNode() {}

// LLIKind enumerates the low-level-instruction primitives (`alloc`, `load`,
// `write`, `address`), one-to-one with LLVM IR operations (glossary).
type LLIKind uint8

const (
	LLIAlloc LLIKind = iota
	LLILoad
	LLIWrite
	LLIAddress
)

type LLI struct {
	base
	Kind    LLIKind
	AllocTy types.Type // for alloc
	Target  Expr        // for load/write/address
	Value   Expr        // for write
}

func NewLLI(sp span.Span, kind LLIKind, allocTy types.Type, target, value Expr) *LLI {
	return &LLI{base: newBase(sp), Kind: kind, AllocTy: allocTy, Target: target, Value: value}
}
func (*LLI) exprNode() {}

type Unreachable struct{ base }

func NewUnreachable(sp span.Span) *Unreachable { return &Unreachable{base: newBase(sp)} }
func (*Unreachable) exprNode()                 {}
func (*Unreachable) stmtNode()                 {}

// ---------------- statements ----------------

type Local struct {
	base
	Name        string
	DeclaredTy  types.Type
	Init        Expr // nil when undefined (metadata.Undefined is set)
	Mut         bool
	Undefined   bool
	Attrs       *attribute.Bag
	Mods        *attribute.Bag
	IsAllocated bool
}

func NewLocal(sp span.Span, name string, ty types.Type, init Expr, mut bool) *Local {
	return &Local{base: newBase(sp), Name: name, DeclaredTy: ty, Init: init, Mut: mut, Undefined: init == nil, IsAllocated: true}
}
func (*Local) stmtNode() {}

type ConstDecl struct {
	base
	Name string
	Ty   types.Type
	Init Expr
	Attrs *attribute.Bag
}

func NewConstDecl(sp span.Span, name string, ty types.Type, init Expr) *ConstDecl {
	return &ConstDecl{base: newBase(sp), Name: name, Ty: ty, Init: init}
}
func (*ConstDecl) stmtNode() {}
func (*ConstDecl) declNode() {}

type StaticDecl struct {
	base
	Name string
	Ty   types.Type
	Init Expr
	Attrs *attribute.Bag
	Mods  *attribute.Bag
}

func NewStaticDecl(sp span.Span, name string, ty types.Type, init Expr) *StaticDecl {
	return &StaticDecl{base: newBase(sp), Name: name, Ty: ty, Init: init}
}
func (*StaticDecl) stmtNode() {}
func (*StaticDecl) declNode() {}

type Block struct {
	base
	Stmts []Stmt
}

func NewBlock(sp span.Span, stmts []Stmt) *Block { return &Block{base: newBase(sp), Stmts: stmts} }
func (*Block) stmtNode()                         {}

// Terminates reports whether the block's last statement is a terminator
// (return/break/continue/unreachable), used to suppress redundant merge
// branches (spec.md §4.8, testable property #6).
func (b *Block) Terminates() bool {
	if len(b.Stmts) == 0 {
		return false
	}
	switch b.Stmts[len(b.Stmts)-1].(type) {
	case *Return, *Break, *Continue, *Unreachable:
		return true
	}
	return false
}

type ElifArm struct {
	Cond Expr
	Body *Block
}

type If struct {
	base
	Cond  Expr
	Then  *Block
	Elifs []ElifArm
	Else  *Block // nil if absent
}

func NewIf(sp span.Span, cond Expr, then *Block, elifs []ElifArm, els *Block) *If {
	return &If{base: newBase(sp), Cond: cond, Then: then, Elifs: elifs, Else: els}
}
func (*If) stmtNode() {}

type While struct {
	base
	PreLocal *Local // non-nil for `while (local: cond)` / `while local: cond` forms
	Cond     Expr
	Body     *Block
}

func NewWhile(sp span.Span, pre *Local, cond Expr, body *Block) *While {
	return &While{base: newBase(sp), PreLocal: pre, Cond: cond, Body: body}
}
func (*While) stmtNode() {}

// For supports all three forms: Init/Cond/Step nil ⇒ infinite.
type For struct {
	base
	Init *Local
	Cond Expr
	Step Stmt
	Body *Block
}

func NewFor(sp span.Span, init *Local, cond Expr, step Stmt, body *Block) *For {
	return &For{base: newBase(sp), Init: init, Cond: cond, Step: step, Body: body}
}
func (*For) stmtNode() {}

type Loop struct {
	base
	Body *Block
}

func NewLoop(sp span.Span, body *Block) *Loop { return &Loop{base: newBase(sp), Body: body} }
func (*Loop) stmtNode()                       {}

type Break struct{ base }

func NewBreak(sp span.Span) *Break { return &Break{base: newBase(sp)} }
func (*Break) stmtNode()           {}

type Continue struct{ base }

func NewContinue(sp span.Span) *Continue { return &Continue{base: newBase(sp)} }
func (*Continue) stmtNode()              {}

type Return struct {
	base
	Value Expr // nil for bare `return` in void functions
}

func NewReturn(sp span.Span, value Expr) *Return { return &Return{base: newBase(sp), Value: value} }
func (*Return) stmtNode()                        {}

// Mut reassigns an existing mutable place (`x = expr;` / compound forms are
// desugared by the parser into BinaryOp + Mut).
type Mut struct {
	base
	Target Expr
	Value  Expr
}

func NewMut(sp span.Span, target, value Expr) *Mut { return &Mut{base: newBase(sp), Target: target, Value: value} }
func (*Mut) stmtNode()                             {}

type ExprStmt struct {
	base
	Expr Expr
}

func NewExprStmt(sp span.Span, e Expr) *ExprStmt { return &ExprStmt{base: newBase(sp), Expr: e} }
func (*ExprStmt) stmtNode()                       {}

type Pass struct{ base }

func NewPass(sp span.Span) *Pass { return &Pass{base: newBase(sp)} }
func (*Pass) stmtNode()          {}

// ---------------- declarations ----------------

type FunctionParameter struct {
	base
	Name string
	Ty   types.Type
	Mut  bool
}

func NewFunctionParameter(sp span.Span, name string, ty types.Type, mut bool) *FunctionParameter {
	return &FunctionParameter{base: newBase(sp), Name: name, Ty: ty, Mut: mut}
}
func (*FunctionParameter) exprNode() {} // allows uniform traversal with Expr visitors

type Function struct {
	base
	Name       string
	Params     []*FunctionParameter
	Variadic   bool
	Ret        types.Type
	Body       *Block // nil for a forward declaration / prototype
	Attrs      *attribute.Bag
}

func NewFunction(sp span.Span, name string, params []*FunctionParameter, ret types.Type, body *Block) *Function {
	return &Function{base: newBase(sp), Name: name, Params: params, Ret: ret, Body: body, Attrs: attribute.NewBag()}
}
func (*Function) stmtNode() {}
func (*Function) declNode() {}

// AssemblerFunction declares a function whose body is a single inline-asm
// template (spec.md §4.9.3).
type AssemblerFunction struct {
	base
	Name        string
	Params      []*FunctionParameter
	Ret         types.Type
	Template    string
	Constraints string
	Dialect     AsmDialect
	Attrs       *attribute.Bag
}

func NewAssemblerFunction(sp span.Span, name string, params []*FunctionParameter, ret types.Type, template, constraints string, dialect AsmDialect) *AssemblerFunction {
	return &AssemblerFunction{base: newBase(sp), Name: name, Params: params, Ret: ret, Template: template, Constraints: constraints, Dialect: dialect, Attrs: attribute.NewBag()}
}
func (*AssemblerFunction) stmtNode() {}
func (*AssemblerFunction) declNode() {}

// Intrinsic is a forward-only declaration bound to a compiler-known name
// (no user body; resolved directly by codegen's builtins table).
type Intrinsic struct {
	base
	Name   string
	Params []*FunctionParameter
	Ret    types.Type
	Attrs  *attribute.Bag
}

func NewIntrinsic(sp span.Span, name string, params []*FunctionParameter, ret types.Type) *Intrinsic {
	return &Intrinsic{base: newBase(sp), Name: name, Params: params, Ret: ret, Attrs: attribute.NewBag()}
}
func (*Intrinsic) stmtNode() {}
func (*Intrinsic) declNode() {}

type StructDecl struct {
	base
	Name       string
	FieldNames []string
	FieldTypes []types.Type
	Mods       types.StructMods
	Attrs      *attribute.Bag
}

func NewStructDecl(sp span.Span, name string, fieldNames []string, fieldTypes []types.Type, mods types.StructMods) *StructDecl {
	return &StructDecl{base: newBase(sp), Name: name, FieldNames: fieldNames, FieldTypes: fieldTypes, Mods: mods, Attrs: attribute.NewBag()}
}
func (*StructDecl) stmtNode() {}
func (*StructDecl) declNode() {}

type EnumVariant struct {
	Name  string
	Value Expr // nil ⇒ auto-incremented from previous
}

type EnumDecl struct {
	base
	Name     string
	Underlying types.Type
	Variants []EnumVariant
	Attrs    *attribute.Bag
}

func NewEnumDecl(sp span.Span, name string, underlying types.Type, variants []EnumVariant) *EnumDecl {
	return &EnumDecl{base: newBase(sp), Name: name, Underlying: underlying, Variants: variants, Attrs: attribute.NewBag()}
}
func (*EnumDecl) stmtNode() {}
func (*EnumDecl) declNode() {}

// CustomType is a `type Name = T;` alias.
type CustomType struct {
	base
	Name string
	Ty   types.Type
}

func NewCustomType(sp span.Span, name string, ty types.Type) *CustomType {
	return &CustomType{base: newBase(sp), Name: name, Ty: ty}
}
func (*CustomType) stmtNode() {}
func (*CustomType) declNode() {}

// GlobalAssembler is a top-level `asm { ... }` block emitted verbatim as
// LLVM module-level inline assembly.
type GlobalAssembler struct {
	base
	Template string
}

func NewGlobalAssembler(sp span.Span, template string) *GlobalAssembler {
	return &GlobalAssembler{base: newBase(sp), Template: template}
}
func (*GlobalAssembler) stmtNode() {}
func (*GlobalAssembler) declNode() {}
