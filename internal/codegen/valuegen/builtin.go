package valuegen

import (
	"tinygo.org/x/go-llvm"

	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/codegen"
	"github.com/thrushlang/thrushc-go/internal/codegen/memgen"
	"github.com/thrushlang/thrushc-go/internal/codegen/typegen"
)

// emitBuiltin lowers sizeof/alignof to constants derived from target
// data, halloc to a call into the C allocator (`malloc`, declared lazily
// the first time it's needed), and memcpy/memmove/memset to the
// corresponding LLVM memory intrinsics — exactly one intrinsic call per
// builtin invocation (spec.md §8 testable property #10).
func emitBuiltin(ctx *codegen.Context, n *ast.Builtin) llvm.Value {
	switch n.Kind {
	case ast.BuiltinSizeof:
		ty := typegen.Lower(ctx.LLVMCtx, ctx.Target, n.TypeArg)
		return llvm.SizeOf(ty)
	case ast.BuiltinAlignof:
		ty := typegen.Lower(ctx.LLVMCtx, ctx.Target, n.TypeArg)
		return llvm.AlignOf(ty)
	case ast.BuiltinHalloc:
		return emitHalloc(ctx, n)
	case ast.BuiltinMemcpy:
		return emitMemIntrinsic(ctx, n, "llvm.memcpy.p0.p0.i64")
	case ast.BuiltinMemmove:
		return emitMemIntrinsic(ctx, n, "llvm.memmove.p0.p0.i64")
	case ast.BuiltinMemset:
		return emitMemset(ctx, n)
	}
	var zero llvm.Value
	return zero
}

func emitHalloc(ctx *codegen.Context, n *ast.Builtin) llvm.Value {
	mallocFn := ctx.Module.NamedFunction("malloc")
	i8ptr := llvm.PointerType(ctx.LLVMCtx.Int8Type(), 0)
	sizeTy := ctx.LLVMCtx.Int64Type()
	sig := llvm.FunctionType(i8ptr, []llvm.Type{sizeTy}, false)
	if mallocFn.IsNil() {
		mallocFn = llvm.AddFunction(ctx.Module, "malloc", sig)
	}
	size := llvm.SizeOf(typegen.Lower(ctx.LLVMCtx, ctx.Target, n.TypeArg))
	raw := ctx.Builder.CreateCall2(sig, mallocFn, []llvm.Value{size}, "halloc.raw")
	elemPtrTy := llvm.PointerType(typegen.Lower(ctx.LLVMCtx, ctx.Target, n.TypeArg), 0)
	return ctx.Builder.CreateBitCast(raw, elemPtrTy, "halloc")
}

func emitMemIntrinsic(ctx *codegen.Context, n *ast.Builtin, intrinsicName string) llvm.Value {
	dst := Emit(ctx, n.Args[0])
	src := Emit(ctx, n.Args[1])
	length := Emit(ctx, n.Args[2])
	i8ptr := llvm.PointerType(ctx.LLVMCtx.Int8Type(), 0)
	i64 := ctx.LLVMCtx.Int64Type()
	i1 := ctx.LLVMCtx.Int1Type()
	sig := llvm.FunctionType(ctx.LLVMCtx.VoidType(), []llvm.Type{i8ptr, i8ptr, i64, i1}, false)
	fn := ctx.Module.NamedFunction(intrinsicName)
	if fn.IsNil() {
		fn = llvm.AddFunction(ctx.Module, intrinsicName, sig)
	}
	dstCast := ctx.Builder.CreateBitCast(dst, i8ptr, "memop.dst")
	srcCast := ctx.Builder.CreateBitCast(src, i8ptr, "memop.src")
	lenCast := ctx.Builder.CreateIntCast2(length, i64, false, "memop.len")
	isVolatile := llvm.ConstInt(i1, 0, false)
	return ctx.Builder.CreateCall2(sig, fn, []llvm.Value{dstCast, srcCast, lenCast, isVolatile}, "")
}

func emitMemset(ctx *codegen.Context, n *ast.Builtin) llvm.Value {
	dst := Emit(ctx, n.Args[0])
	val := Emit(ctx, n.Args[1])
	length := Emit(ctx, n.Args[2])
	i8ptr := llvm.PointerType(ctx.LLVMCtx.Int8Type(), 0)
	i8 := ctx.LLVMCtx.Int8Type()
	i64 := ctx.LLVMCtx.Int64Type()
	i1 := ctx.LLVMCtx.Int1Type()
	sig := llvm.FunctionType(ctx.LLVMCtx.VoidType(), []llvm.Type{i8ptr, i8, i64, i1}, false)
	fn := ctx.Module.NamedFunction("llvm.memset.p0.i64")
	if fn.IsNil() {
		fn = llvm.AddFunction(ctx.Module, "llvm.memset.p0.i64", sig)
	}
	dstCast := ctx.Builder.CreateBitCast(dst, i8ptr, "memset.dst")
	valCast := ctx.Builder.CreateIntCast2(val, i8, false, "memset.val")
	lenCast := ctx.Builder.CreateIntCast2(length, i64, false, "memset.len")
	isVolatile := llvm.ConstInt(i1, 0, false)
	return ctx.Builder.CreateCall2(sig, fn, []llvm.Value{dstCast, valCast, lenCast, isVolatile}, "")
}

// emitLLI lowers the four low-level-instruction primitives one-to-one
// with their LLVM operation (glossary entry "LLI").
func emitLLI(ctx *codegen.Context, n *ast.LLI) llvm.Value {
	switch n.Kind {
	case ast.LLIAlloc:
		ty := typegen.Lower(ctx.LLVMCtx, ctx.Target, n.AllocTy)
		entry := ctx.Builder.GetInsertBlock().Parent().EntryBasicBlock()
		return memgen.AllocaStack(ctx, entry, ty, "lli.alloc")
	case ast.LLILoad:
		ptr := Emit(ctx, n.Target)
		elemTy := typegen.Lower(ctx.LLVMCtx, ctx.Target, n.Type())
		return ctx.Builder.CreateLoad2(elemTy, ptr, "lli.load")
	case ast.LLIWrite:
		ptr := Emit(ctx, n.Target)
		val := Emit(ctx, n.Value)
		return ctx.Builder.CreateStore(val, ptr)
	case ast.LLIAddress:
		return Address(ctx, n.Target)
	}
	var zero llvm.Value
	return zero
}
