// Package memgen implements spec.md §4.7: allocation sites (stack, heap,
// static-global), obfuscated global names, GEP/load/store helpers with
// volatile/atomic modifier application, and numeric casts. The pointer
// anchor discipline lives on codegen.Context, not here.
package memgen

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
	"tinygo.org/x/go-llvm"

	"github.com/thrushlang/thrushc-go/internal/attribute"
	"github.com/thrushlang/thrushc-go/internal/codegen"
	"github.com/thrushlang/thrushc-go/internal/codegen/typegen"
	"github.com/thrushlang/thrushc-go/internal/span"
	"github.com/thrushlang/thrushc-go/internal/types"
)

// Site classifies where a value's storage lives, mirroring spec.md §4.7's
// three allocation kinds.
type Site uint8

const (
	SiteStack Site = iota
	SiteHeap
	SiteStaticGlobal
)

// AllocaStack emits an `alloca` in the function's entry block for a local
// declaration. LLVM requires every `alloca` used inside a loop to
// dominate its uses, so — per spec.md §8 testable property "alloca
// dominance" — callers always pass the function's entry block, never the
// block currently being built, even when the local is declared inside a
// nested loop body.
func AllocaStack(ctx *codegen.Context, entry llvm.BasicBlock, ty llvm.Type, name string) llvm.Value {
	tmp := ctx.LLVMCtx.NewBuilder()
	defer tmp.Dispose()
	if first := entry.FirstInstruction(); !first.IsNil() {
		tmp.SetInsertPointBefore(first)
	} else {
		tmp.SetInsertPointAtEnd(entry)
	}
	return tmp.CreateAlloca(ty, name)
}

// ObfuscatedName derives the `{rand}` fragment of a generated global
// symbol deterministically (non-reproducible process-random names would
// break reproducible builds). Two distinct declarations of the same source
// name always differ in span, and therefore in fragment (spec.md §8
// testable property #7, "obfuscated-name uniqueness").
func ObfuscatedName(modulePath string, declSpan span.Span, name string) string {
	sum := blake2b.Sum256([]byte(modulePath + "." + declSpan.String() + "." + name))
	return name + "." + hex.EncodeToString(sum[:])[:6]
}

// DeclareGlobal emits a module-level global and applies the thread-local
// mode from mods; it sets no linkage, which is left to the caller.
// Obfuscation is applied by the caller via ObfuscatedName before the name
// reaches here, keeping this function a thin wrapper over llvm.AddGlobal.
func DeclareGlobal(ctx *codegen.Context, ty llvm.Type, linkerName string, mods *attribute.Bag) llvm.Value {
	g := llvm.AddGlobal(ctx.Module, ty, linkerName)
	if mods != nil {
		if tm, ok := mods.FindMod(attribute.ThreadMode); ok {
			g.SetThreadLocalMode(threadLocalMode(tm.ThreadMode))
		}
	}
	return g
}

func threadLocalMode(mode attribute.ThreadModeValue) llvm.ThreadLocalMode {
	switch mode {
	case attribute.InitialExec:
		return llvm.InitialExecTLSModel
	case attribute.GeneralDynamic:
		return llvm.GeneralDynamicTLSModel
	case attribute.LocalExec:
		return llvm.LocalExecTLSModel
	case attribute.LocalDynamic:
		return llvm.LocalDynamicTLSModel
	}
	return llvm.GeneralDynamicTLSModel
}

// Load reads through a typed pointer, applying volatile/atomic ordering
// from mods to the load it emits. The loads and stores that valuegen and
// stmtgen emit directly do not go through Load/Store and carry no
// volatile flag or atomic ordering.
func Load(ctx *codegen.Context, ptr llvm.Value, elemTy llvm.Type, mods *attribute.Bag, name string) llvm.Value {
	v := ctx.Builder.CreateLoad2(elemTy, ptr, name)
	applyMemoryModifiers(v, mods)
	return v
}

// Store writes through a typed pointer, applying volatile/atomic ordering
// the same way Load does.
func Store(ctx *codegen.Context, value, ptr llvm.Value, mods *attribute.Bag) llvm.Value {
	v := ctx.Builder.CreateStore(value, ptr)
	applyMemoryModifiers(v, mods)
	return v
}

func applyMemoryModifiers(inst llvm.Value, mods *attribute.Bag) {
	if mods == nil {
		return
	}
	if mods.IsVolatile() {
		inst.SetVolatile(true)
	}
	if m, ok := mods.FindMod(attribute.AtomicOrdering); ok {
		inst.SetOrdering(atomicOrdering(m.Atomic))
	}
}

// atomicOrdering maps the language's own ordering names (parsed in
// internal/parser/attributes.go's parseModifierArg) onto their C11/LLVM
// equivalents: Free→Unordered, Relax→Monotonic, Grab→Acquire,
// Drop→Release, Sync→AcquireRelease, Strict→SequentiallyConsistent.
func atomicOrdering(v attribute.AtomicOrderingValue) llvm.AtomicOrdering {
	switch v {
	case attribute.OrderFree:
		return llvm.AtomicOrderingUnordered
	case attribute.OrderRelax:
		return llvm.AtomicOrderingMonotonic
	case attribute.OrderGrab:
		return llvm.AtomicOrderingAcquire
	case attribute.OrderDrop:
		return llvm.AtomicOrderingRelease
	case attribute.OrderSync:
		return llvm.AtomicOrderingAcquireRelease
	case attribute.OrderStrict:
		return llvm.AtomicOrderingSequentiallyConsistent
	}
	return llvm.AtomicOrderingNotAtomic
}

// GEPField indexes into a struct value's field, producing a typed
// pointer. `structTy` must be the (opaque-pointer-era) pointee type since
// LLVM's GEP requires it explicitly.
func GEPField(ctx *codegen.Context, base llvm.Value, structTy llvm.Type, index int, name string) llvm.Value {
	zero := llvm.ConstInt(ctx.LLVMCtx.Int32Type(), 0, false)
	idx := llvm.ConstInt(ctx.LLVMCtx.Int32Type(), uint64(index), false)
	return ctx.Builder.CreateGEP2(structTy, base, []llvm.Value{zero, idx}, name)
}

// GEPIndex indexes into an array-like value at a runtime index.
func GEPIndex(ctx *codegen.Context, base llvm.Value, elemTy llvm.Type, idx llvm.Value, name string) llvm.Value {
	return ctx.Builder.CreateGEP2(elemTy, base, []llvm.Value{idx}, name)
}

// NumericCast implements the `as` cast codegen rule: int-to-int uses
// sign/zero extension or truncation depending on relative width and the
// *source*'s signedness (spec.md glossary, "numeric cast"); int-to-float
// and float-to-int dispatch on signedness too; float-to-float always
// widens/narrows via FPCast; pointer<->int uses Ptr(Int)/Int(Ptr).
func NumericCast(ctx *codegen.Context, v llvm.Value, from, to types.Type, llctx llvm.Context, target llvm.TargetData, name string) llvm.Value {
	fromTy := typegen.Lower(llctx, target, from)
	toTy := typegen.Lower(llctx, target, to)

	switch {
	case types.IsInt(from) && types.IsInt(to):
		fromBits := fromTy.IntTypeWidth()
		toBits := toTy.IntTypeWidth()
		switch {
		case fromBits == toBits:
			return v
		case fromBits > toBits:
			return ctx.Builder.CreateTrunc(v, toTy, name)
		case typegen.IsSigned(from):
			return ctx.Builder.CreateSExt(v, toTy, name)
		default:
			return ctx.Builder.CreateZExt(v, toTy, name)
		}
	case types.IsInt(from) && types.IsFloat(to):
		if typegen.IsSigned(from) {
			return ctx.Builder.CreateSIToFP(v, toTy, name)
		}
		return ctx.Builder.CreateUIToFP(v, toTy, name)
	case types.IsFloat(from) && types.IsInt(to):
		if typegen.IsSigned(to) {
			return ctx.Builder.CreateFPToSI(v, toTy, name)
		}
		return ctx.Builder.CreateFPToUI(v, toTy, name)
	case types.IsFloat(from) && types.IsFloat(to):
		return ctx.Builder.CreateFPCast(v, toTy, name)
	case types.IsPointerLike(from) && types.IsInt(to):
		return ctx.Builder.CreatePtrToInt(v, toTy, name)
	case types.IsInt(from) && types.IsPointerLike(to):
		return ctx.Builder.CreateIntToPtr(v, toTy, name)
	case types.IsPointerLike(from) && types.IsPointerLike(to):
		return ctx.Builder.CreateBitCast(v, toTy, name)
	}
	return v
}

