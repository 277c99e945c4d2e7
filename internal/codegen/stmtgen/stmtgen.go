// Package stmtgen emits control-flow LLVM IR (spec.md §4.8): if/elif/
// else, while, for, loop, break/continue, and return, always consulting
// ast.Block.Terminates() before adding a redundant merge branch
// (testable property #6).
package stmtgen

import (
	"tinygo.org/x/go-llvm"

	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/codegen"
	"github.com/thrushlang/thrushc-go/internal/codegen/memgen"
	"github.com/thrushlang/thrushc-go/internal/codegen/typegen"
	"github.com/thrushlang/thrushc-go/internal/codegen/valuegen"
)

// EmitBlock emits every statement of b in the current insert point,
// pushing/popping one codegen-level scope so locals declared inside
// don't leak out.
func EmitBlock(ctx *codegen.Context, b *ast.Block) {
	ctx.Symbols.PushScope()
	defer ctx.Symbols.PopScope()
	for _, s := range b.Stmts {
		EmitStmt(ctx, s)
	}
}

func EmitStmt(ctx *codegen.Context, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Local:
		emitLocal(ctx, n)
	case *ast.ConstDecl:
		emitLocalConst(ctx, n)
	case *ast.StaticDecl:
		emitLocalStatic(ctx, n)
	case *ast.Block:
		EmitBlock(ctx, n)
	case *ast.If:
		emitIf(ctx, n)
	case *ast.While:
		emitWhile(ctx, n)
	case *ast.For:
		emitFor(ctx, n)
	case *ast.Loop:
		emitLoop(ctx, n)
	case *ast.Break:
		frame := ctx.CurrentLoop()
		ctx.Builder.CreateBr(frame.BreakBlock)
	case *ast.Continue:
		frame := ctx.CurrentLoop()
		ctx.Builder.CreateBr(frame.ContinueBlock)
	case *ast.Return:
		emitReturn(ctx, n)
	case *ast.Mut:
		emitMut(ctx, n)
	case *ast.ExprStmt:
		valuegen.Emit(ctx, n.Expr)
	case *ast.Pass:
		// no-op
	case *ast.Unreachable:
		ctx.Builder.CreateUnreachable()
	}
}

func entryBlock(ctx *codegen.Context) llvm.BasicBlock {
	return ctx.Builder.GetInsertBlock().Parent().EntryBasicBlock()
}

func emitLocal(ctx *codegen.Context, n *ast.Local) {
	ty := typegen.Lower(ctx.LLVMCtx, ctx.Target, n.DeclaredTy)
	slot := memgen.AllocaStack(ctx, entryBlock(ctx), ty, n.Name)
	ctx.Symbols.DeclareLocal(n.Name, slot, ty)
	if n.Init != nil {
		ctx.SetAnchor(slot, ty)
		val := valuegen.Emit(ctx, n.Init)
		if !ctx.AnchorTriggered() {
			ctx.Builder.CreateStore(val, slot)
		}
		ctx.TakeAnchor() // clear, in case the literal didn't consume it
	}
}

func emitLocalConst(ctx *codegen.Context, n *ast.ConstDecl) {
	ty := typegen.Lower(ctx.LLVMCtx, ctx.Target, n.Ty)
	slot := memgen.AllocaStack(ctx, entryBlock(ctx), ty, n.Name)
	val := valuegen.Emit(ctx, n.Init)
	ctx.Builder.CreateStore(val, slot)
	ctx.Symbols.DeclareLocal(n.Name, slot, ty)
}

func emitLocalStatic(ctx *codegen.Context, n *ast.StaticDecl) {
	ty := typegen.Lower(ctx.LLVMCtx, ctx.Target, n.Ty)
	linkerName := memgen.ObfuscatedName(ctx.Name, n.Span(), n.Name)
	g := memgen.DeclareGlobal(ctx, ty, linkerName, n.Mods)
	if n.Init != nil {
		g.SetInitializer(valuegen.Emit(ctx, n.Init))
	} else {
		g.SetInitializer(llvm.ConstNull(ty))
	}
	ctx.Symbols.DeclareLocal(n.Name, g, ty)
}

// emitIf chains condbr/block pairs. The join block is always created, but
// only arms whose body does not terminate branch to it, avoiding the
// redundant merge branch testable property #6 forbids.
func emitIf(ctx *codegen.Context, n *ast.If) {
	fn := ctx.Builder.GetInsertBlock().Parent()
	join := ctx.LLVMCtx.AddBasicBlock(fn, "if.end")

	emitArm := func(cond ast.Expr, body *ast.Block, next llvm.BasicBlock) {
		condVal := valuegen.Emit(ctx, cond)
		thenBB := ctx.LLVMCtx.InsertBasicBlock(next, "if.then")
		ctx.Builder.CreateCondBr(condVal, thenBB, next)
		ctx.Builder.SetInsertPointAtEnd(thenBB)
		EmitBlock(ctx, body)
		if !body.Terminates() {
			ctx.Builder.CreateBr(join)
		}
	}

	// Build from the innermost fallback (else, or join) outward so each
	// arm's "next" block already exists when emitted.
	next := join
	if n.Else != nil {
		elseBB := ctx.LLVMCtx.InsertBasicBlock(join, "if.else")
		next = elseBB
	}
	chain := append([]ast.ElifArm{{Cond: n.Cond, Body: n.Then}}, n.Elifs...)

	origin := ctx.Builder.GetInsertBlock()
	cur := next
	// Emit elif/then arms in reverse so earlier arms fall through to
	// later arms' condition blocks, matching source order of evaluation.
	for i := len(chain) - 1; i >= 0; i-- {
		arm := chain[i]
		armNext := cur
		condBB := ctx.LLVMCtx.InsertBasicBlock(armNext, "if.cond")
		ctx.Builder.SetInsertPointAtEnd(condBB)
		emitArm(arm.Cond, arm.Body, armNext)
		cur = condBB
	}
	// Control enters the chain at the first arm's condition block, from
	// the block that preceded this `if`.
	ctx.Builder.SetInsertPointAtEnd(origin)
	ctx.Builder.CreateBr(cur)

	if n.Else != nil {
		elseBB := next
		ctx.Builder.SetInsertPointAtEnd(elseBB)
		EmitBlock(ctx, n.Else)
		if !n.Else.Terminates() {
			ctx.Builder.CreateBr(join)
		}
	}
	ctx.Builder.SetInsertPointAtEnd(join)
}

func emitWhile(ctx *codegen.Context, n *ast.While) {
	fn := ctx.Builder.GetInsertBlock().Parent()
	condBB := ctx.LLVMCtx.AddBasicBlock(fn, "while.cond")
	bodyBB := ctx.LLVMCtx.AddBasicBlock(fn, "while.body")
	endBB := ctx.LLVMCtx.AddBasicBlock(fn, "while.end")

	if n.PreLocal != nil {
		EmitStmt(ctx, n.PreLocal)
	}
	ctx.Builder.CreateBr(condBB)
	ctx.Builder.SetInsertPointAtEnd(condBB)
	cond := valuegen.Emit(ctx, n.Cond)
	ctx.Builder.CreateCondBr(cond, bodyBB, endBB)

	ctx.Builder.SetInsertPointAtEnd(bodyBB)
	ctx.PushLoop(condBB, endBB)
	EmitBlock(ctx, n.Body)
	if !n.Body.Terminates() {
		ctx.Builder.CreateBr(condBB)
	}
	ctx.PopLoop()

	ctx.Builder.SetInsertPointAtEnd(endBB)
}

func emitFor(ctx *codegen.Context, n *ast.For) {
	fn := ctx.Builder.GetInsertBlock().Parent()
	condBB := ctx.LLVMCtx.AddBasicBlock(fn, "for.cond")
	bodyBB := ctx.LLVMCtx.AddBasicBlock(fn, "for.body")
	stepBB := ctx.LLVMCtx.AddBasicBlock(fn, "for.step")
	endBB := ctx.LLVMCtx.AddBasicBlock(fn, "for.end")

	ctx.Symbols.PushScope()
	defer ctx.Symbols.PopScope()

	if n.Init != nil {
		EmitStmt(ctx, n.Init)
	}
	ctx.Builder.CreateBr(condBB)
	ctx.Builder.SetInsertPointAtEnd(condBB)
	if n.Cond != nil {
		cond := valuegen.Emit(ctx, n.Cond)
		ctx.Builder.CreateCondBr(cond, bodyBB, endBB)
	} else {
		ctx.Builder.CreateBr(bodyBB)
	}

	ctx.Builder.SetInsertPointAtEnd(bodyBB)
	ctx.PushLoop(stepBB, endBB)
	EmitBlock(ctx, n.Body)
	if !n.Body.Terminates() {
		ctx.Builder.CreateBr(stepBB)
	}
	ctx.PopLoop()

	ctx.Builder.SetInsertPointAtEnd(stepBB)
	if n.Step != nil {
		EmitStmt(ctx, n.Step)
	}
	ctx.Builder.CreateBr(condBB)

	ctx.Builder.SetInsertPointAtEnd(endBB)
}

func emitLoop(ctx *codegen.Context, n *ast.Loop) {
	fn := ctx.Builder.GetInsertBlock().Parent()
	bodyBB := ctx.LLVMCtx.AddBasicBlock(fn, "loop.body")
	endBB := ctx.LLVMCtx.AddBasicBlock(fn, "loop.end")

	ctx.Builder.CreateBr(bodyBB)
	ctx.Builder.SetInsertPointAtEnd(bodyBB)
	ctx.PushLoop(bodyBB, endBB)
	EmitBlock(ctx, n.Body)
	if !n.Body.Terminates() {
		ctx.Builder.CreateBr(bodyBB)
	}
	ctx.PopLoop()

	ctx.Builder.SetInsertPointAtEnd(endBB)
}

func emitReturn(ctx *codegen.Context, n *ast.Return) {
	if n.Value == nil {
		ctx.Builder.CreateRetVoid()
		return
	}
	ctx.Builder.CreateRet(valuegen.Emit(ctx, n.Value))
}

func emitMut(ctx *codegen.Context, n *ast.Mut) {
	addr := valuegen.Address(ctx, n.Target)
	ctx.SetAnchor(addr, typegen.Lower(ctx.LLVMCtx, ctx.Target, n.Target.Type()))
	val := valuegen.Emit(ctx, n.Value)
	if !ctx.AnchorTriggered() {
		ctx.Builder.CreateStore(val, addr)
	}
	ctx.TakeAnchor()
}
