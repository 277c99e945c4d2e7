// Package valuegen emits LLVM IR for expressions (spec.md §4.7/§4.9),
// consuming the already-typed internal/ast.Expr tree produced by
// internal/typechecker.
package valuegen

import (
	"tinygo.org/x/go-llvm"

	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/codegen"
	"github.com/thrushlang/thrushc-go/internal/codegen/memgen"
	"github.com/thrushlang/thrushc-go/internal/codegen/typegen"
	"github.com/thrushlang/thrushc-go/internal/types"
)

// Emit lowers one already-type-checked expression to its LLVM value.
func Emit(ctx *codegen.Context, e ast.Expr) llvm.Value {
	switch n := e.(type) {
	case *ast.Integer:
		return llvm.ConstInt(typegen.Lower(ctx.LLVMCtx, ctx.Target, n.Type()), n.Value, typegen.IsSigned(n.Type()))
	case *ast.FloatLit:
		return llvm.ConstFloat(typegen.Lower(ctx.LLVMCtx, ctx.Target, n.Type()), n.Value)
	case *ast.CharLit:
		return llvm.ConstInt(ctx.LLVMCtx.Int8Type(), uint64(n.Value), false)
	case *ast.StrLit:
		return ctx.Builder.CreateGlobalStringPtr(n.Value, "str")
	case *ast.BoolLit:
		v := uint64(0)
		if n.Value {
			v = 1
		}
		return llvm.ConstInt(ctx.LLVMCtx.Int1Type(), v, false)
	case *ast.NullPtr:
		return llvm.ConstNull(typegen.Lower(ctx.LLVMCtx, ctx.Target, n.Type()))
	case *ast.BinaryOp:
		return emitBinaryOp(ctx, n)
	case *ast.UnaryOp:
		return emitUnaryOp(ctx, n)
	case *ast.Group:
		return Emit(ctx, n.Inner)
	case *ast.As:
		from := Emit(ctx, n.Operand)
		return memgen.NumericCast(ctx, from, n.Operand.Type(), n.Target, ctx.LLVMCtx, ctx.Target, "cast")
	case *ast.Deref:
		return emitDeref(ctx, n)
	case *ast.DirectRef:
		return emitDirectRef(ctx, n)
	case *ast.Reference:
		return emitReferenceLoad(ctx, n)
	case *ast.Call:
		return emitCall(ctx, n.Callee, n.Args, n.Type())
	case *ast.IndirectCall:
		return emitCall(ctx, n.Callee, n.Args, n.Type())
	case *ast.Index:
		ptr := addressOfIndex(ctx, n)
		elemTy := typegen.Lower(ctx.LLVMCtx, ctx.Target, n.Type())
		return ctx.Builder.CreateLoad2(elemTy, ptr, "idxload")
	case *ast.Property:
		ptr := addressOfProperty(ctx, n)
		fieldTy := typegen.Lower(ctx.LLVMCtx, ctx.Target, n.Type())
		return ctx.Builder.CreateLoad2(fieldTy, ptr, "fieldload")
	case *ast.Constructor:
		return emitConstructor(ctx, n)
	case *ast.FixedArrayLit:
		return emitFixedArrayLit(ctx, n)
	case *ast.ArrayLit:
		return emitArrayLit(ctx, n)
	case *ast.Builtin:
		return emitBuiltin(ctx, n)
	case *ast.LLI:
		return emitLLI(ctx, n)
	case *ast.Unreachable:
		ctx.Builder.CreateUnreachable()
		var zero llvm.Value
		return zero
	}
	var zero llvm.Value
	return zero
}

// Address returns the pointer to a place-expression's storage, used by
// Mut, DirectRef, and the pre/post inc/dec operators instead of
// re-deriving the pointer ad hoc at each call site.
func Address(ctx *codegen.Context, e ast.Expr) llvm.Value {
	switch n := e.(type) {
	case *ast.Reference:
		ptr, _, _ := ctx.Symbols.Lookup(n.Name)
		return ptr
	case *ast.Deref:
		return Emit(ctx, n.Operand)
	case *ast.Index:
		return addressOfIndex(ctx, n)
	case *ast.Property:
		return addressOfProperty(ctx, n)
	case *ast.Group:
		return Address(ctx, n.Inner)
	}
	var zero llvm.Value
	return zero
}

func emitReferenceLoad(ctx *codegen.Context, n *ast.Reference) llvm.Value {
	ptr, ty, ok := ctx.Symbols.Lookup(n.Name)
	if !ok {
		var zero llvm.Value
		return zero
	}
	return ctx.Builder.CreateLoad2(ty, ptr, n.Name)
}

func emitDeref(ctx *codegen.Context, n *ast.Deref) llvm.Value {
	ptr := Emit(ctx, n.Operand)
	elemTy := typegen.Lower(ctx.LLVMCtx, ctx.Target, n.Type())
	return ctx.Builder.CreateLoad2(elemTy, ptr, "deref")
}

func emitDirectRef(ctx *codegen.Context, n *ast.DirectRef) llvm.Value {
	return Address(ctx, n.Operand)
}

func addressOfIndex(ctx *codegen.Context, n *ast.Index) llvm.Value {
	base := Address(ctx, n.Base)
	idx := Emit(ctx, n.Index)
	switch bt := types.Underlying(n.Base.Type()).(type) {
	case types.FixedArray:
		elemTy := typegen.Lower(ctx.LLVMCtx, ctx.Target, bt.Elem)
		zero := llvm.ConstInt(ctx.LLVMCtx.Int32Type(), 0, false)
		return ctx.Builder.CreateGEP2(typegen.Lower(ctx.LLVMCtx, ctx.Target, bt), base, []llvm.Value{zero, idx}, "fixedidx")
	case types.Array:
		// {ptr,len}: field 0 is the data pointer; load it, then GEP by idx.
		arrTy := typegen.Lower(ctx.LLVMCtx, ctx.Target, bt)
		dataPtrAddr := memgen.GEPField(ctx, base, arrTy, 0, "arrdataptr")
		elemPtrTy := llvm.PointerType(typegen.Lower(ctx.LLVMCtx, ctx.Target, bt.Elem), 0)
		dataPtr := ctx.Builder.CreateLoad2(elemPtrTy, dataPtrAddr, "arrdata")
		return memgen.GEPIndex(ctx, dataPtr, typegen.Lower(ctx.LLVMCtx, ctx.Target, bt.Elem), idx, "arrelem")
	case types.Ptr:
		elemTy := typegen.Lower(ctx.LLVMCtx, ctx.Target, bt.Pointee)
		loaded := ctx.Builder.CreateLoad2(typegen.Lower(ctx.LLVMCtx, ctx.Target, n.Base.Type()), base, "ptrload")
		return memgen.GEPIndex(ctx, loaded, elemTy, idx, "ptridx")
	}
	var zero llvm.Value
	return zero
}

func addressOfProperty(ctx *codegen.Context, n *ast.Property) llvm.Value {
	base := Address(ctx, n.Base)
	st, ok := types.Underlying(n.Base.Type()).(types.Struct)
	if !ok {
		if ptr, isPtr := types.Underlying(n.Base.Type()).(types.Ptr); isPtr {
			base = ctx.Builder.CreateLoad2(typegen.Lower(ctx.LLVMCtx, ctx.Target, n.Base.Type()), base, "ptrbase")
			st, ok = types.Underlying(ptr.Pointee).(types.Struct)
		}
	}
	if !ok {
		var zero llvm.Value
		return zero
	}
	idx, _ := st.FieldIndex(n.Field)
	structTy := typegen.Lower(ctx.LLVMCtx, ctx.Target, st)
	return memgen.GEPField(ctx, base, structTy, idx, "field."+n.Field)
}
