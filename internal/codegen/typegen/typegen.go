// Package typegen lowers the semantic internal/types.Type algebra to
// tinygo.org/x/go-llvm types, the table from spec.md §4.6.
package typegen

import (
	"tinygo.org/x/go-llvm"

	"github.com/thrushlang/thrushc-go/internal/types"
)

// Lower maps one semantic type to its LLVM representation. usize/ssize
// resolve against the pointer width of llctx/target (spec.md §4.6: "USize/
// SSize are resolved against target data").
func Lower(llctx llvm.Context, target llvm.TargetData, t types.Type) llvm.Type {
	switch u := types.Underlying(t).(type) {
	case types.Int:
		return lowerInt(llctx, target, u.Kind)
	case types.Float:
		return lowerFloat(llctx, u.Kind)
	case types.Bool:
		return llctx.Int1Type()
	case types.Char:
		return llctx.Int8Type()
	case types.Void:
		return llctx.VoidType()
	case types.Addr:
		return llvm.PointerType(llctx.Int8Type(), 0)
	case types.Str:
		return llvm.PointerType(llctx.Int8Type(), 0)
	case types.Ptr:
		if u.Pointee == nil {
			return llvm.PointerType(llctx.Int8Type(), 0)
		}
		return llvm.PointerType(Lower(llctx, target, u.Pointee), 0)
	case types.Array:
		// {ptr, len} wrapper, the authoritative representation (SPEC_FULL.md
		// Open Question 2).
		elem := Lower(llctx, target, u.Elem)
		return llctx.StructType([]llvm.Type{
			llvm.PointerType(elem, 0),
			lowerInt(llctx, target, types.USize),
		}, false)
	case types.FixedArray:
		return llvm.ArrayType(Lower(llctx, target, u.Elem), int(u.N))
	case types.Struct:
		fields := make([]llvm.Type, len(u.Fields))
		for i, f := range u.Fields {
			fields[i] = Lower(llctx, target, f)
		}
		return llctx.StructType(fields, u.Mods.Packed)
	case types.Fn:
		params := make([]llvm.Type, len(u.Params))
		for i, p := range u.Params {
			params[i] = Lower(llctx, target, p)
		}
		ret := Lower(llctx, target, u.Ret)
		return llvm.PointerType(llvm.FunctionType(ret, params, u.Mods.Variadic), 0)
	case types.Unresolved:
		// Reaching codegen with an Unresolved type is a compiler bug
		// (spec.md §3 invariant); callers should have aborted after
		// type-check diagnostics, but lower to i8 defensively rather than
		// panic, consistent with the diagnostic engine's "never panic on a
		// recoverable finding" policy extended to codegen internals.
		return llctx.Int8Type()
	}
	return llctx.VoidType()
}

func lowerInt(llctx llvm.Context, target llvm.TargetData, k types.IntKind) llvm.Type {
	switch k {
	case types.S8, types.U8:
		return llctx.Int8Type()
	case types.S16, types.U16:
		return llctx.Int16Type()
	case types.S32, types.U32:
		return llctx.Int32Type()
	case types.S64, types.U64:
		return llctx.Int64Type()
	case types.U128:
		return llctx.IntType(128)
	case types.USize, types.SSize:
		if !target.IsNil() {
			return llctx.IntType(int(target.PointerSize()) * 8)
		}
		return llctx.Int64Type()
	}
	return llctx.Int32Type()
}

func lowerFloat(llctx llvm.Context, k types.FloatKind) llvm.Type {
	switch k {
	case types.F32:
		return llctx.FloatType()
	case types.F64:
		return llctx.DoubleType()
	case types.F128:
		return llctx.FP128Type()
	case types.X86_80:
		return llctx.X86FP80Type()
	case types.PPC128:
		return llctx.PPCFP128Type()
	}
	return llctx.DoubleType()
}

// IsSigned reports whether t's underlying integer kind is signed, needed
// at every cast/arithmetic/comparison site to pick the signed vs.
// unsigned LLVM instruction variant (spec.md §4.4's "numeric cast"
// semantics carried through to codegen).
func IsSigned(t types.Type) bool {
	if i, ok := types.Underlying(t).(types.Int); ok {
		return i.Kind.Signed()
	}
	return false
}
