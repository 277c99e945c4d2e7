package declgen_test

import (
	"strings"
	"testing"

	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/codegen"
	"github.com/thrushlang/thrushc-go/internal/codegen/declgen"
	"github.com/thrushlang/thrushc-go/internal/lexer"
	"github.com/thrushlang/thrushc-go/internal/parser"
	"github.com/thrushlang/thrushc-go/internal/symtab"
	"github.com/thrushlang/thrushc-go/internal/typechecker"
)

func emit(t *testing.T, src string) string {
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
		switch n := d.(type) {
		case *ast.Function:
			declgen.DeclareFunctionSig(ctx, n)
		}
	}
	for _, d := range file.Decls {
		switch n := d.(type) {
		case *ast.Function:
			declgen.EmitFunction(ctx, n)
		case *ast.StaticDecl:
			declgen.DeclareGlobalStatic(ctx, n)
		case *ast.ConstDecl:
			declgen.DeclareGlobalConst(ctx, n)
		}
	}
	return ctx.Module.String()
}

func TestDeclareFunctionSig_ForwardDeclarationMatchesDefinition(t *testing.T) {
	ir := emit(t, `
		fn f() s32;
		fn g() s32 { return f(); }
		fn f() s32 { return 7; }
	`)
	if strings.Count(ir, "define internal i32 @f()") != 1 {
		t.Fatalf("expected exactly one definition of @f, got:\n%s", ir)
	}
	if !strings.Contains(ir, "call i32 @f()") {
		t.Fatalf("expected g to call f before f's definition is textually reached:\n%s", ir)
	}
}

func TestEmitFunction_ExternNameOverridesSymbol(t *testing.T) {
	ir := emit(t, `
		@extern("c_puts")
		fn puts_wrapper(msg: addr) s32;
	`)
	if !strings.Contains(ir, "@c_puts") {
		t.Fatalf("expected the linker name to be the @extern name, got:\n%s", ir)
	}
	if strings.Contains(ir, "@puts_wrapper") {
		t.Fatalf("did not expect the source identifier to leak into the module, got:\n%s", ir)
	}
}

func TestDeclareGlobalConst_EmitsInitializer(t *testing.T) {
	ir := emit(t, `const LIMIT: s32 = 42;`)
	if !strings.Contains(ir, "constant i32 42") {
		t.Fatalf("expected a constant global initialized to 42, got:\n%s", ir)
	}
}
