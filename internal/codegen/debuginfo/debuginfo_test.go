package debuginfo_test

import (
	"strings"
	"testing"

	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/codegen"
	"github.com/thrushlang/thrushc-go/internal/codegen/debuginfo"
	"github.com/thrushlang/thrushc-go/internal/codegen/declgen"
	"github.com/thrushlang/thrushc-go/internal/lexer"
	"github.com/thrushlang/thrushc-go/internal/parser"
	"github.com/thrushlang/thrushc-go/internal/symtab"
	"github.com/thrushlang/thrushc-go/internal/typechecker"
)

func TestAttachSubprogram_AddsDICompileUnitAndSubprogram(t *testing.T) {
	src := `fn main() s32 { return 0; }`
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
	dbg := debuginfo.New(ctx.Module, "t.th")

	fn := file.Decls[0].(*ast.Function)
	declgen.DeclareFunctionSig(ctx, fn)
	declgen.EmitFunction(ctx, fn)
	llfn, _, ok := ctx.Symbols.Lookup(fn.Name)
	if !ok {
		t.Fatal("expected main to be declared in the symbol table")
	}
	dbg.AttachSubprogram(llfn, fn)
	dbg.Finalize()

	ir := ctx.Module.String()
	if !strings.Contains(ir, "DICompileUnit") {
		t.Fatalf("expected a DICompileUnit entry, got:\n%s", ir)
	}
	if !strings.Contains(ir, "DISubprogram") {
		t.Fatalf("expected a DISubprogram entry for main, got:\n%s", ir)
	}
}
