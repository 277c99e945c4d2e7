package valuegen

import (
	"tinygo.org/x/go-llvm"

	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/codegen"
	"github.com/thrushlang/thrushc-go/internal/codegen/memgen"
	"github.com/thrushlang/thrushc-go/internal/codegen/typegen"
	"github.com/thrushlang/thrushc-go/internal/types"
)

// emitBinaryOp dispatches arithmetic/shift/bitwise/comparison/logical
// operators to their signed/unsigned/float LLVM instruction variant
// based on the already-resolved operand types (spec.md §4.4's operator
// tables, realized in codegen).
func emitBinaryOp(ctx *codegen.Context, n *ast.BinaryOp) llvm.Value {
	l := Emit(ctx, n.Left)
	r := Emit(ctx, n.Right)
	float := types.IsFloat(n.Left.Type()) || types.IsFloat(n.Right.Type())
	signed := typegen.IsSigned(n.Left.Type())

	switch n.Op {
	case ast.OpAdd:
		if float {
			return ctx.Builder.CreateFAdd(l, r, "fadd")
		}
		return ctx.Builder.CreateAdd(l, r, "add")
	case ast.OpSub:
		if float {
			return ctx.Builder.CreateFSub(l, r, "fsub")
		}
		return ctx.Builder.CreateSub(l, r, "sub")
	case ast.OpMul:
		if float {
			return ctx.Builder.CreateFMul(l, r, "fmul")
		}
		return ctx.Builder.CreateMul(l, r, "mul")
	case ast.OpDiv:
		if float {
			return ctx.Builder.CreateFDiv(l, r, "fdiv")
		}
		if signed {
			return ctx.Builder.CreateSDiv(l, r, "sdiv")
		}
		return ctx.Builder.CreateUDiv(l, r, "udiv")
	case ast.OpMod:
		if float {
			return ctx.Builder.CreateFRem(l, r, "frem")
		}
		if signed {
			return ctx.Builder.CreateSRem(l, r, "srem")
		}
		return ctx.Builder.CreateURem(l, r, "urem")
	case ast.OpShl:
		return ctx.Builder.CreateShl(l, r, "shl")
	case ast.OpShr:
		if signed {
			return ctx.Builder.CreateAShr(l, r, "ashr")
		}
		return ctx.Builder.CreateLShr(l, r, "lshr")
	case ast.OpAnd:
		return ctx.Builder.CreateAnd(l, r, "and")
	case ast.OpOr:
		return ctx.Builder.CreateOr(l, r, "or")
	case ast.OpXor:
		return ctx.Builder.CreateXor(l, r, "xor")
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if float {
			return ctx.Builder.CreateFCmp(floatPredicate(n.Op), l, r, "fcmp")
		}
		return ctx.Builder.CreateICmp(intPredicate(n.Op, signed), l, r, "icmp")
	case ast.OpLogAnd:
		return ctx.Builder.CreateAnd(l, r, "land")
	case ast.OpLogOr:
		return ctx.Builder.CreateOr(l, r, "lor")
	}
	var zero llvm.Value
	return zero
}

func intPredicate(op ast.BinOp, signed bool) llvm.IntPredicate {
	switch op {
	case ast.OpEq:
		return llvm.IntEQ
	case ast.OpNe:
		return llvm.IntNE
	case ast.OpLt:
		if signed {
			return llvm.IntSLT
		}
		return llvm.IntULT
	case ast.OpLe:
		if signed {
			return llvm.IntSLE
		}
		return llvm.IntULE
	case ast.OpGt:
		if signed {
			return llvm.IntSGT
		}
		return llvm.IntUGT
	case ast.OpGe:
		if signed {
			return llvm.IntSGE
		}
		return llvm.IntUGE
	}
	return llvm.IntEQ
}

func floatPredicate(op ast.BinOp) llvm.FloatPredicate {
	switch op {
	case ast.OpEq:
		return llvm.FloatOEQ
	case ast.OpNe:
		return llvm.FloatONE
	case ast.OpLt:
		return llvm.FloatOLT
	case ast.OpLe:
		return llvm.FloatOLE
	case ast.OpGt:
		return llvm.FloatOGT
	case ast.OpGe:
		return llvm.FloatOGE
	}
	return llvm.FloatOEQ
}

// emitUnaryOp implements negation, logical-not, and the four inc/dec
// forms. Pre-forms store then return the updated value; post-forms store
// then return the original value, matching C-family semantics (glossary
// entry "pre/post increment").
func emitUnaryOp(ctx *codegen.Context, n *ast.UnaryOp) llvm.Value {
	switch n.Op {
	case ast.OpNeg:
		v := Emit(ctx, n.Operand)
		if types.IsFloat(n.Operand.Type()) {
			return ctx.Builder.CreateFNeg(v, "fneg")
		}
		return ctx.Builder.CreateNeg(v, "neg")
	case ast.OpNot:
		v := Emit(ctx, n.Operand)
		return ctx.Builder.CreateNot(v, "not")
	case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
		return emitIncDec(ctx, n)
	}
	var zero llvm.Value
	return zero
}

func emitIncDec(ctx *codegen.Context, n *ast.UnaryOp) llvm.Value {
	addr := Address(ctx, n.Operand)
	elemTy := typegen.Lower(ctx.LLVMCtx, ctx.Target, n.Operand.Type())
	old := ctx.Builder.CreateLoad2(elemTy, addr, "incdec.old")
	one := llvm.ConstInt(elemTy, 1, false)
	if types.IsFloat(n.Operand.Type()) {
		one = llvm.ConstFloat(elemTy, 1)
	}
	var updated llvm.Value
	isDec := n.Op == ast.OpPreDec || n.Op == ast.OpPostDec
	if types.IsFloat(n.Operand.Type()) {
		if isDec {
			updated = ctx.Builder.CreateFSub(old, one, "incdec.new")
		} else {
			updated = ctx.Builder.CreateFAdd(old, one, "incdec.new")
		}
	} else if isDec {
		updated = ctx.Builder.CreateSub(old, one, "incdec.new")
	} else {
		updated = ctx.Builder.CreateAdd(old, one, "incdec.new")
	}
	ctx.Builder.CreateStore(updated, addr)
	if n.Op == ast.OpPreInc || n.Op == ast.OpPreDec {
		return updated
	}
	return old
}

// emitCall resolves a direct (named function/assembler-function/
// intrinsic) or indirect (Fn-typed value) call uniformly, since both
// ultimately lower to the same llvm.CreateCall2.
func emitCall(ctx *codegen.Context, callee ast.Expr, args []ast.Expr, retTy types.Type) llvm.Value {
	argVals := make([]llvm.Value, len(args))
	for i, a := range args {
		argVals[i] = Emit(ctx, a)
	}
	name := ""
	if retTy != nil {
		if _, isVoid := types.Underlying(retTy).(types.Void); !isVoid {
			name = "call"
		}
	}
	if ref, ok := callee.(*ast.Reference); ok {
		if fn, sig, found := ctx.Symbols.Lookup(ref.Name); found {
			return ctx.Builder.CreateCall2(sig, fn, argVals, name)
		}
	}
	fnVal := Emit(ctx, callee)
	sig := typegen.Lower(ctx.LLVMCtx, ctx.Target, callee.Type())
	if sig.TypeKind() == llvm.PointerTypeKind {
		sig = sig.ElementType()
	}
	return ctx.Builder.CreateCall2(sig, fnVal, argVals, name)
}

// emitConstructor builds a struct value field-by-field. If the enclosing
// context has a pending anchor (spec.md §4.7 pointer anchor discipline),
// fields are written directly into that destination instead of building
// a temporary aggregate and copying it, avoiding the extra memcpy
// forbidden by testable property #10.
func emitConstructor(ctx *codegen.Context, n *ast.Constructor) llvm.Value {
	st, ok := types.Underlying(n.Type()).(types.Struct)
	if !ok {
		var zero llvm.Value
		return zero
	}
	structTy := typegen.Lower(ctx.LLVMCtx, ctx.Target, st)
	if dst, dstTy, had := ctx.TakeAnchor(); had {
		ctx.MarkTriggered()
		for i, field := range n.Fields {
			idx, _ := st.FieldIndex(field)
			fieldPtr := memgen.GEPField(ctx, dst, dstTy, idx, "ctor."+field)
			ctx.Builder.CreateStore(Emit(ctx, n.Values[i]), fieldPtr)
		}
		return ctx.Builder.CreateLoad2(structTy, dst, "ctor.loaded")
	}
	agg := llvm.Undef(structTy)
	for i, field := range n.Fields {
		idx, _ := st.FieldIndex(field)
		agg = ctx.Builder.CreateInsertValue(agg, Emit(ctx, n.Values[i]), idx, "ctor."+field)
	}
	return agg
}

func emitFixedArrayLit(ctx *codegen.Context, n *ast.FixedArrayLit) llvm.Value {
	fa, ok := types.Underlying(n.Type()).(types.FixedArray)
	if !ok {
		var zero llvm.Value
		return zero
	}
	arrTy := typegen.Lower(ctx.LLVMCtx, ctx.Target, fa)
	if dst, dstTy, had := ctx.TakeAnchor(); had {
		ctx.MarkTriggered()
		for i, el := range n.Elems {
			idx := llvm.ConstInt(ctx.LLVMCtx.Int32Type(), uint64(i), false)
			zero := llvm.ConstInt(ctx.LLVMCtx.Int32Type(), 0, false)
			elPtr := ctx.Builder.CreateGEP2(dstTy, dst, []llvm.Value{zero, idx}, "fixedlit")
			ctx.Builder.CreateStore(Emit(ctx, el), elPtr)
		}
		return ctx.Builder.CreateLoad2(arrTy, dst, "fixedlit.loaded")
	}
	agg := llvm.Undef(arrTy)
	for i, el := range n.Elems {
		agg = ctx.Builder.CreateInsertValue(agg, Emit(ctx, el), i, "fixedlit")
	}
	return agg
}

// emitArrayLit builds the {ptr,len} wrapper: elements are materialized
// into a stack allocation (the caller, not the dynamic array, owns that
// storage's lifetime — `halloc` is required for values that must outlive
// the current frame, per spec.md §4.7's allocation-site table), then
// wrapped with a length field.
func emitArrayLit(ctx *codegen.Context, n *ast.ArrayLit) llvm.Value {
	arr, ok := types.Underlying(n.Type()).(types.Array)
	if !ok {
		var zero llvm.Value
		return zero
	}
	elemTy := typegen.Lower(ctx.LLVMCtx, ctx.Target, arr.Elem)
	backing := ctx.Builder.CreateAlloca(llvm.ArrayType(elemTy, len(n.Elems)), "arrlit.backing")
	for i, el := range n.Elems {
		idx := llvm.ConstInt(ctx.LLVMCtx.Int32Type(), uint64(i), false)
		zero := llvm.ConstInt(ctx.LLVMCtx.Int32Type(), 0, false)
		elPtr := ctx.Builder.CreateGEP2(llvm.ArrayType(elemTy, len(n.Elems)), backing, []llvm.Value{zero, idx}, "arrlit.elem")
		ctx.Builder.CreateStore(Emit(ctx, el), elPtr)
	}
	dataPtr := ctx.Builder.CreateGEP2(llvm.ArrayType(elemTy, len(n.Elems)), backing,
		[]llvm.Value{llvm.ConstInt(ctx.LLVMCtx.Int32Type(), 0, false), llvm.ConstInt(ctx.LLVMCtx.Int32Type(), 0, false)}, "arrlit.data")
	wrapperTy := typegen.Lower(ctx.LLVMCtx, ctx.Target, arr)
	wrapper := llvm.Undef(wrapperTy)
	wrapper = ctx.Builder.CreateInsertValue(wrapper, dataPtr, 0, "arrlit.wrap.ptr")
	lenTy := wrapperTy.StructElementTypes()[1]
	wrapper = ctx.Builder.CreateInsertValue(wrapper, llvm.ConstInt(lenTy, uint64(len(n.Elems)), false), 1, "arrlit.wrap.len")
	return wrapper
}
