package jit_test

import (
	"testing"

	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/codegen"
	"github.com/thrushlang/thrushc-go/internal/codegen/declgen"
	"github.com/thrushlang/thrushc-go/internal/jit"
	"github.com/thrushlang/thrushc-go/internal/lexer"
	"github.com/thrushlang/thrushc-go/internal/parser"
	"github.com/thrushlang/thrushc-go/internal/symtab"
	"github.com/thrushlang/thrushc-go/internal/typechecker"
)

func buildModule(t *testing.T, src string) *codegen.Context {
	t.Helper()
	toks, lerrs := lexer.New("t.th", []byte(src)).Lex()
	if len(lerrs) != 0 {
		t.Fatalf("lex errors: %v", lerrs)
	}
	symbols := symtab.New()
	file, perrs := parser.New("t.th", toks, symbols).Parse()
	if len(perrs) != 0 {
		t.Fatalf("parse errors: %v", perrs)
	}
	if diags := typechecker.New(symbols).Check(file); len(diags) != 0 {
		t.Fatalf("typecheck errors: %v", diags)
	}
	ctx := codegen.New("t")
	for _, d := range file.Decls {
		if fn, ok := d.(*ast.Function); ok {
			declgen.DeclareFunctionSig(ctx, fn)
		}
	}
	for _, d := range file.Decls {
		if fn, ok := d.(*ast.Function); ok {
			declgen.EmitFunction(ctx, fn)
		}
	}
	return ctx
}

func TestRunMain_ReturnsEntryPointResult(t *testing.T) {
	ctx := buildModule(t, `fn main() s32 { return 7; }`)
	engine, err := jit.New(ctx.Module, nil)
	if err != nil {
		t.Fatalf("jit.New: %v", err)
	}
	defer engine.Dispose()

	code, err := engine.RunMain("")
	if err != nil {
		t.Fatalf("RunMain: %v", err)
	}
	if code != 7 {
		t.Fatalf("RunMain() = %d, want 7", code)
	}
}

func TestRunConstructorsAndDestructors_SkipUnknownNames(t *testing.T) {
	ctx := buildModule(t, `fn main() s32 { return 0; }`)
	engine, err := jit.New(ctx.Module, nil)
	if err != nil {
		t.Fatalf("jit.New: %v", err)
	}
	defer engine.Dispose()

	// Names with no matching function must be silently skipped rather than
	// panicking, since the caller only has the attribute-collected name
	// list, not a guarantee every constructor survived codegen.
	engine.RunConstructors([]string{"does_not_exist"})
	engine.RunDestructors([]string{"also_missing"})
}
