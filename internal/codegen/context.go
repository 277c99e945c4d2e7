// Package codegen holds the pass-scoped handle threaded explicitly
// through every codegen subpackage (typegen/memgen/valuegen/stmtgen/
// declgen/debuginfo), never stored in a package global (Design Notes §9,
// "Global mutable state" — mirrors the teacher's own `ArchParser`
// instances being passed explicitly through `TranslateAssembly` rather
// than held in package state).
package codegen

import (
	"tinygo.org/x/go-llvm"

	"github.com/thrushlang/thrushc-go/internal/codegen/symbols"
)

// LoopFrame records the break/continue targets of one enclosing loop, a
// stack so nested loops resolve `break`/`continue` to their own loop
// (spec.md §4.8, testable property: "break/continue always target the
// innermost enclosing loop").
type LoopFrame struct {
	ContinueBlock llvm.BasicBlock
	BreakBlock    llvm.BasicBlock
}

// Context is created once per compiled unit (one Thrush module) and
// passed by pointer to every codegen helper.
type Context struct {
	// Name is the module's source-derived identifier (e.g. the input
	// file's base name), used to seed obfuscated global names. It is
	// deliberately independent of the LLVM target triple, which changes
	// per build target and would make symbol names non-reproducible
	// across cross-compiles of the same source.
	Name string

	LLVMCtx llvm.Context
	Module  llvm.Module
	Builder llvm.Builder
	Target  llvm.TargetData

	Symbols *symbols.Table

	LoopStack []LoopFrame

	// PendingAnchor is the pointer-anchor discipline from spec.md §4.7:
	// when a composite literal directly initializes a known destination
	// (a local's alloca, a struct field, an array slot), the outer
	// initializer pushes that destination here so the nested literal
	// codegen can write in place instead of allocating a temporary and
	// then memcpy-ing it (testable property #10: "exactly one memcpy
	// intrinsic is emitted per call site", never an extra copy-elision
	// copy).
	PendingAnchor   llvm.Value
	PendingAnchorTy llvm.Type
	anchorTriggered bool
}

func New(name string) *Context {
	ctx := llvm.NewContext()
	mod := ctx.NewModule(name)
	return &Context{
		Name:    name,
		LLVMCtx: ctx,
		Module:  mod,
		Builder: ctx.NewBuilder(),
		Symbols: symbols.New(),
	}
}

// SetAnchor records the in-place destination for the composite literal
// about to be evaluated.
func (c *Context) SetAnchor(dst llvm.Value, dstTy llvm.Type) {
	c.PendingAnchor = dst
	c.PendingAnchorTy = dstTy
	c.anchorTriggered = false
}

// TakeAnchor consumes and clears the pending anchor; a nested literal
// calls this once it has decided to use it (or ignore it) so a sibling
// literal in the same initializer list never sees a stale anchor.
func (c *Context) TakeAnchor() (llvm.Value, llvm.Type, bool) {
	dst, ty, had := c.PendingAnchor, c.PendingAnchorTy, !c.PendingAnchor.IsNil()
	c.PendingAnchor = llvm.Value{}
	c.PendingAnchorTy = llvm.Type{}
	return dst, ty, had
}

// MarkTriggered records that the current anchor was actually consumed,
// so the caller knows not to additionally copy the literal's temporary
// into the destination.
func (c *Context) MarkTriggered() { c.anchorTriggered = true }

func (c *Context) AnchorTriggered() bool { return c.anchorTriggered }

func (c *Context) PushLoop(continueBB, breakBB llvm.BasicBlock) {
	c.LoopStack = append(c.LoopStack, LoopFrame{ContinueBlock: continueBB, BreakBlock: breakBB})
}

func (c *Context) PopLoop() { c.LoopStack = c.LoopStack[:len(c.LoopStack)-1] }

func (c *Context) CurrentLoop() LoopFrame {
	return c.LoopStack[len(c.LoopStack)-1]
}
