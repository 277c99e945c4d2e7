package typechecker

import (
	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/diagnostic"
	"github.com/thrushlang/thrushc-go/internal/span"
	"github.com/thrushlang/thrushc-go/internal/symtab"
	"github.com/thrushlang/thrushc-go/internal/types"
)

// inferExpr fills e's Type and returns it. expected is the type flowing
// down from the syntactic context (a declared local type, a parameter
// type, an operand of a binary op...); it may be nil when no expectation
// exists (e.g. a bare expression statement).
func (c *Checker) inferExpr(e ast.Expr, expected types.Type) types.Type {
	var t types.Type
	switch n := e.(type) {
	case *ast.Integer:
		t = c.inferInteger(n, expected)
	case *ast.FloatLit:
		t = c.inferFloat(n, expected)
	case *ast.CharLit:
		t = types.NewChar(n.Span())
	case *ast.StrLit:
		t = types.NewStr(n.Span())
	case *ast.BoolLit:
		t = types.NewBool(n.Span())
	case *ast.NullPtr:
		if expected != nil && types.IsPointerLike(expected) {
			t = expected
		} else {
			t = types.NewPtr(n.Span(), nil)
		}
	case *ast.BinaryOp:
		t = c.inferBinaryOp(n)
	case *ast.UnaryOp:
		t = c.inferUnaryOp(n)
	case *ast.Group:
		t = c.inferExpr(n.Inner, expected)
	case *ast.As:
		t = c.inferAs(n)
	case *ast.Deref:
		t = c.inferDeref(n)
	case *ast.DirectRef:
		t = c.inferDirectRef(n)
	case *ast.Reference:
		t = c.inferReference(n)
	case *ast.Call:
		t = c.inferCall(n)
	case *ast.IndirectCall:
		t = c.inferIndirectCall(n)
	case *ast.Index:
		t = c.inferIndex(n)
	case *ast.Property:
		t = c.inferProperty(n)
	case *ast.Constructor:
		t = c.inferConstructor(n)
	case *ast.FixedArrayLit:
		t = c.inferFixedArrayLit(n, expected)
	case *ast.ArrayLit:
		t = c.inferArrayLit(n, expected)
	case *ast.EnumValue:
		t = c.inferEnumValue(n)
	case *ast.AsmValue:
		t = types.NewVoid(n.Span())
		for _, op := range n.Operands {
			c.inferExpr(op, nil)
		}
	case *ast.Builtin:
		t = c.inferBuiltin(n)
	case *ast.LLI:
		t = c.inferLLI(n)
	case *ast.Unreachable:
		t = types.NewVoid(n.Span())
	default:
		t = types.NewUnresolved(e.Span(), "unhandled-expr")
	}
	e.SetType(t)
	return t
}

func (c *Checker) inferInteger(n *ast.Integer, expected types.Type) types.Type {
	if expected != nil && types.IsInt(expected) {
		return expected
	}
	if n.Signed {
		return types.NewInt(n.Span(), types.S32)
	}
	return types.NewInt(n.Span(), types.U32)
}

func (c *Checker) inferFloat(n *ast.FloatLit, expected types.Type) types.Type {
	if expected != nil && types.IsFloat(expected) {
		return expected
	}
	return types.NewFloat(n.Span(), types.F64)
}

// inferBinaryOp implements spec.md §4.4's arithmetic/shift/bitwise/
// comparison/logical operator rules: the left operand is inferred without
// an expectation and the right operand against the left's type, then widened to a common numeric type for arithmetic,
// required to be integers for shift/bitwise, and collapsed to bool for
// comparison/logical operators.
func (c *Checker) inferBinaryOp(n *ast.BinaryOp) types.Type {
	lt := c.inferExpr(n.Left, nil)
	rt := c.inferExpr(n.Right, lt)
	switch n.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		if !types.IsNumeric(lt) || !types.IsNumeric(rt) {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "arithmetic operator requires numeric operands, found %s and %s", lt, rt)
			return types.NewUnresolved(n.Span(), "arith")
		}
		return types.Wider(lt, rt)
	case ast.OpShl, ast.OpShr, ast.OpAnd, ast.OpOr, ast.OpXor:
		if !types.IsInt(lt) || !types.IsInt(rt) {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "bitwise/shift operator requires integer operands, found %s and %s", lt, rt)
			return types.NewUnresolved(n.Span(), "bitwise")
		}
		return lt
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if !types.Conforms(lt, rt) && !types.Conforms(rt, lt) {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "cannot compare %s with %s", lt, rt)
		}
		return types.NewBool(n.Span())
	case ast.OpLogAnd, ast.OpLogOr:
		boolTy := types.NewBool(n.Span())
		if !types.Underlying(lt).Equal(boolTy) || !types.Underlying(rt).Equal(boolTy) {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "logical operator requires bool operands, found %s and %s", lt, rt)
		}
		return boolTy
	}
	return types.NewUnresolved(n.Span(), "binop")
}

// inferUnaryOp implements the unary operator rules: `-`/`!` require
// numeric/bool operands respectively; `++`/`--` (pre/post) require a
// mutable, addressable place-expression (spec.md §4.4, §4.5 linter
// cross-check on Mutated).
func (c *Checker) inferUnaryOp(n *ast.UnaryOp) types.Type {
	ot := c.inferExpr(n.Operand, nil)
	switch n.Op {
	case ast.OpNeg:
		if !types.IsNumeric(ot) {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "unary '-' requires a numeric operand, found %s", ot)
		}
		return ot
	case ast.OpNot:
		boolTy := types.NewBool(n.Span())
		if !types.Underlying(ot).Equal(boolTy) {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "unary '!' requires a bool operand, found %s", ot)
		}
		return boolTy
	case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
		if !types.IsNumeric(ot) {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "increment/decrement requires a numeric place, found %s", ot)
		}
		if ref, ok := n.Operand.(*ast.Reference); ok {
			if sym, found := c.symbols.Lookup(ref.Name); found && !sym.Mut {
				c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "cannot increment/decrement immutable binding %q", ref.Name)
			}
		}
		return ot
	}
	return types.NewUnresolved(n.Span(), "unop")
}

// inferAs implements the `as` cast rule: numeric-to-numeric casts are
// always legal (narrowing/truncation is the programmer's responsibility,
// per the glossary's "numeric cast" entry); pointer casts require both
// sides to be pointer-like; anything else is a diagnostic.
func (c *Checker) inferAs(n *ast.As) types.Type {
	from := c.inferExpr(n.Operand, nil)
	to := n.Target
	boolTy := types.NewBool(n.Span())
	switch {
	case types.IsNumeric(from) && types.IsNumeric(to):
	case types.IsPointerLike(from) && types.IsPointerLike(to):
	case types.IsInt(from) && types.IsPointerLike(to):
	case types.IsPointerLike(from) && types.IsInt(to):
	case types.Underlying(from).Equal(boolTy) && types.IsInt(to):
	default:
		c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "cannot cast %s as %s", from, to)
	}
	return to
}

func (c *Checker) inferDeref(n *ast.Deref) types.Type {
	ot := c.inferExpr(n.Operand, nil)
	if !types.IsPointerLike(ot) {
		c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "cannot dereference non-pointer type %s", ot)
		return types.NewUnresolved(n.Span(), "deref")
	}
	if ptr, ok := types.Underlying(ot).(types.Ptr); ok && ptr.Pointee != nil {
		return ptr.Pointee
	}
	return types.NewUnresolved(n.Span(), "opaque-deref")
}

// inferDirectRef implements `&expr`: the operand must be an allocated
// place-expression (a Local/parameter/static backed by a stack slot or
// global), else E0007/E0008 (spec.md §4.4, §8 testable property: "DirectRef
// of a non-allocated reference is a diagnosed error").
func (c *Checker) inferDirectRef(n *ast.DirectRef) types.Type {
	ref, ok := n.Operand.(*ast.Reference)
	if !ok {
		c.inferExpr(n.Operand, nil)
		c.bag.Errorf(diagnostic.EAddrNotAllocated1, n.Span(), "cannot take the address of a non-place expression")
		return types.NewPtr(n.Span(), types.NewUnresolved(n.Span(), "addr-of"))
	}
	sym, found := c.symbols.Lookup(ref.Name)
	if !found {
		c.bag.Errorf(diagnostic.EScopeUndeclared, n.Span(), "undeclared identifier %q", ref.Name)
		return types.NewPtr(n.Span(), types.NewUnresolved(n.Span(), ref.Name))
	}
	if sym.Kind == symtab.KindLLI {
		c.bag.Errorf(diagnostic.EAddrNotAllocated2, n.Span(), "cannot take the address of low-level-instruction value %q, it is not a stack allocation", ref.Name)
	}
	ref.IsAllocated = true
	ref.SetType(sym.Type)
	return types.NewPtr(n.Span(), sym.Type)
}

func (c *Checker) inferReference(n *ast.Reference) types.Type {
	sym, found := c.symbols.Lookup(n.Name)
	if !found {
		c.bag.Errorf(diagnostic.EScopeUndeclared, n.Span(), "undeclared identifier %q", n.Name)
		return types.NewUnresolved(n.Span(), n.Name)
	}
	sym.Used = true
	return sym.Type
}

// inferCall validates a direct function/assembler-function/intrinsic call:
// arity (respecting variadic functions), then per-argument conformance.
// A callee that resolves to a Fn-typed local/parameter is instead routed
// through inferIndirectCall's rules, matching the "direct vs. indirect
// disambiguated on the resolved symbol's Fn-ness" comment left by the
// parser.
func (c *Checker) inferCall(n *ast.Call) types.Type {
	ref, ok := n.Callee.(*ast.Reference)
	if !ok {
		return c.inferIndirectCall(ast.NewIndirectCall(n.Span(), n.Callee, n.Args))
	}
	sym, found := c.symbols.Lookup(ref.Name)
	if !found {
		c.bag.Errorf(diagnostic.EScopeUndeclared, n.Span(), "call to undeclared function %q", ref.Name)
		for _, a := range n.Args {
			c.inferExpr(a, nil)
		}
		return types.NewUnresolved(n.Span(), ref.Name)
	}
	sym.Used = true
	fnTy, ok := types.Underlying(sym.Type).(types.Fn)
	if !ok {
		return c.inferIndirectCall(ast.NewIndirectCall(n.Span(), n.Callee, n.Args))
	}
	c.checkCallArgs(n.Span(), ref.Name, fnTy, n.Args)
	return fnTy.Ret
}

func (c *Checker) inferIndirectCall(n *ast.IndirectCall) types.Type {
	calleeTy := c.inferExpr(n.Callee, nil)
	fnTy, ok := types.Underlying(calleeTy).(types.Fn)
	if !ok {
		c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "cannot call a value of non-function type %s", calleeTy)
		for _, a := range n.Args {
			c.inferExpr(a, nil)
		}
		return types.NewUnresolved(n.Span(), "indirect-call")
	}
	c.checkCallArgs(n.Span(), "<indirect>", fnTy, n.Args)
	return fnTy.Ret
}

func (c *Checker) checkCallArgs(sp span.Span, name string, fnTy types.Fn, args []ast.Expr) {
	if len(args) < len(fnTy.Params) || (!fnTy.Mods.Variadic && len(args) != len(fnTy.Params)) {
		c.bag.Errorf(diagnostic.ETypeMismatch, sp, "call to %q expects %d argument(s), found %d", name, len(fnTy.Params), len(args))
	}
	for i, a := range args {
		if i < len(fnTy.Params) {
			got := c.inferExpr(a, fnTy.Params[i])
			if !types.Conforms(got, fnTy.Params[i]) {
				c.bag.Errorf(diagnostic.ETypeMismatch, a.Span(), "argument %d to %q has type %s, expected %s", i+1, name, got, fnTy.Params[i])
			}
			continue
		}
		// Extra variadic argument: inferred with no expectation.
		c.inferExpr(a, nil)
	}
}

func (c *Checker) inferIndex(n *ast.Index) types.Type {
	bt := c.inferExpr(n.Base, nil)
	c.inferExpr(n.Index, types.NewInt(n.Span(), types.USize))
	if !types.IsIndexable(bt) {
		c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "cannot index into non-indexable type %s", bt)
		return types.NewUnresolved(n.Span(), "index")
	}
	switch u := types.Underlying(bt).(type) {
	case types.Array:
		return u.Elem
	case types.FixedArray:
		return u.Elem
	case types.Ptr:
		return types.Underlying(u.Pointee)
	}
	return types.NewUnresolved(n.Span(), "index")
}

func (c *Checker) inferProperty(n *ast.Property) types.Type {
	bt := c.inferExpr(n.Base, nil)
	st, ok := types.Underlying(bt).(types.Struct)
	if !ok {
		if ptr, isPtr := types.Underlying(bt).(types.Ptr); isPtr && ptr.Pointee != nil {
			st, ok = types.Underlying(ptr.Pointee).(types.Struct)
		}
	}
	if !ok {
		c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "cannot access field %q on non-struct type %s", n.Field, bt)
		return types.NewUnresolved(n.Span(), "property")
	}
	idx, found := st.FieldIndex(n.Field)
	if !found {
		c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "struct %s has no field %q", st.Name, n.Field)
		return types.NewUnresolved(n.Span(), "property")
	}
	return st.Fields[idx]
}

func (c *Checker) inferConstructor(n *ast.Constructor) types.Type {
	sym, found := c.symbols.Lookup(n.StructName)
	if !found {
		c.bag.Errorf(diagnostic.EScopeUndeclared, n.Span(), "undeclared struct %q", n.StructName)
		for _, v := range n.Values {
			c.inferExpr(v, nil)
		}
		return types.NewUnresolved(n.Span(), n.StructName)
	}
	st, ok := types.Underlying(sym.Type).(types.Struct)
	if !ok {
		c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "%q is not a struct type", n.StructName)
		for _, v := range n.Values {
			c.inferExpr(v, nil)
		}
		return types.NewUnresolved(n.Span(), n.StructName)
	}
	for i, field := range n.Fields {
		idx, found := st.FieldIndex(field)
		if !found {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "struct %s has no field %q", st.Name, field)
			c.inferExpr(n.Values[i], nil)
			continue
		}
		got := c.inferExpr(n.Values[i], st.Fields[idx])
		if !types.Conforms(got, st.Fields[idx]) {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Values[i].Span(), "field %q of %s expects %s, found %s", field, st.Name, st.Fields[idx], got)
		}
	}
	return st
}

// inferFixedArrayLit checks `fixed [e1, e2, ...]` against an expected
// FixedArray/Array element type when the context provides one (the
// declared-local case), else infers the element type from the first
// element (spec.md §4.4, §3 "pointer anchor" discipline: a composite
// literal directly initializing a local reuses its slot rather than
// allocating a temporary then copying).
func (c *Checker) inferFixedArrayLit(n *ast.FixedArrayLit, expected types.Type) types.Type {
	var elemExpect types.Type
	if expected != nil {
		switch u := types.Underlying(expected).(type) {
		case types.FixedArray:
			elemExpect = u.Elem
		case types.Array:
			elemExpect = u.Elem
		}
	}
	var elemTy types.Type
	for i, el := range n.Elems {
		got := c.inferExpr(el, elemExpect)
		if i == 0 {
			elemTy = got
		} else if elemExpect == nil && !types.Conforms(got, elemTy) {
			c.bag.Errorf(diagnostic.ETypeMismatch, el.Span(), "fixed array element %d has type %s, expected %s", i, got, elemTy)
		}
	}
	if elemExpect != nil {
		elemTy = elemExpect
	}
	if elemTy == nil {
		elemTy = types.NewUnresolved(n.Span(), "empty-fixed-array")
	}
	return types.NewFixedArray(n.Span(), elemTy, uint32(len(n.Elems)))
}

// inferArrayLit checks `[e1, e2, ...]`, the dynamically-sized {ptr,len}
// array representation (SPEC_FULL.md Open Question 2).
func (c *Checker) inferArrayLit(n *ast.ArrayLit, expected types.Type) types.Type {
	var elemExpect types.Type
	if expected != nil {
		if arr, ok := types.Underlying(expected).(types.Array); ok {
			elemExpect = arr.Elem
		}
	}
	var elemTy types.Type
	for i, el := range n.Elems {
		got := c.inferExpr(el, elemExpect)
		if i == 0 {
			elemTy = got
		}
	}
	if elemExpect != nil {
		elemTy = elemExpect
	}
	if elemTy == nil {
		elemTy = types.NewUnresolved(n.Span(), "empty-array")
	}
	arr := types.NewArray(n.Span(), elemTy)
	return arr
}

func (c *Checker) inferEnumValue(n *ast.EnumValue) types.Type {
	sym, found := c.symbols.Lookup(n.EnumName)
	if !found {
		c.bag.Errorf(diagnostic.EScopeUndeclared, n.Span(), "undeclared enum %q", n.EnumName)
		return types.NewUnresolved(n.Span(), n.EnumName)
	}
	return sym.Type
}

// inferBuiltin covers sizeof/alignof (type-level, always usize), halloc
// (heap allocation, returns ptr[T]), and the memcpy/memmove/memset family
// (spec.md §4.4, §8 testable property: "exactly one memcpy intrinsic is
// emitted per call site").
func (c *Checker) inferBuiltin(n *ast.Builtin) types.Type {
	switch n.Kind {
	case ast.BuiltinSizeof, ast.BuiltinAlignof:
		return types.NewInt(n.Span(), types.USize)
	case ast.BuiltinHalloc:
		return types.NewPtr(n.Span(), n.TypeArg)
	case ast.BuiltinMemcpy, ast.BuiltinMemmove:
		if len(n.Args) != 3 {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "memcpy/memmove expects (dst, src, len)")
		}
		for i, a := range n.Args {
			if i == 2 {
				c.inferExpr(a, types.NewInt(n.Span(), types.USize))
				continue
			}
			dt := c.inferExpr(a, nil)
			if !types.IsPointerLike(dt) {
				c.bag.Errorf(diagnostic.ETypeMismatch, a.Span(), "memcpy/memmove operand %d must be pointer-like, found %s", i, dt)
			}
		}
		return types.NewVoid(n.Span())
	case ast.BuiltinMemset:
		if len(n.Args) != 3 {
			c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "memset expects (dst, value, len)")
		}
		if len(n.Args) > 0 {
			dt := c.inferExpr(n.Args[0], nil)
			if !types.IsPointerLike(dt) {
				c.bag.Errorf(diagnostic.ETypeMismatch, n.Args[0].Span(), "memset destination must be pointer-like, found %s", dt)
			}
		}
		if len(n.Args) > 1 {
			c.inferExpr(n.Args[1], types.NewInt(n.Span(), types.U8))
		}
		if len(n.Args) > 2 {
			c.inferExpr(n.Args[2], types.NewInt(n.Span(), types.USize))
		}
		return types.NewVoid(n.Span())
	}
	return types.NewUnresolved(n.Span(), "builtin")
}

// inferLLI types the low-level-instruction primitives one-to-one with
// their LLVM IR operations (glossary: "LLI"): alloc produces a pointer to
// its allocated type, load dereferences, write always yields void, and
// address behaves like DirectRef on a known-allocated target.
func (c *Checker) inferLLI(n *ast.LLI) types.Type {
	switch n.Kind {
	case ast.LLIAlloc:
		return types.NewPtr(n.Span(), n.AllocTy)
	case ast.LLILoad:
		tt := c.inferExpr(n.Target, nil)
		if ptr, ok := types.Underlying(tt).(types.Ptr); ok && ptr.Pointee != nil {
			return ptr.Pointee
		}
		c.bag.Errorf(diagnostic.ETypeMismatch, n.Span(), "load target must be a typed pointer, found %s", tt)
		return types.NewUnresolved(n.Span(), "load")
	case ast.LLIWrite:
		tt := c.inferExpr(n.Target, nil)
		var pointee types.Type
		if ptr, ok := types.Underlying(tt).(types.Ptr); ok {
			pointee = ptr.Pointee
		}
		c.inferExpr(n.Value, pointee)
		return types.NewVoid(n.Span())
	case ast.LLIAddress:
		return c.inferExpr(n.Target, nil)
	}
	return types.NewUnresolved(n.Span(), "lli")
}
