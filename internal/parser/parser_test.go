package parser

import (
	"testing"

	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/lexer"
	"github.com/thrushlang/thrushc-go/internal/symtab"
)

func parseSource(t *testing.T, src string) *ast.File {
	t.Helper()
	toks, errs := lexer.New("t.th", []byte(src)).Lex()
	if len(errs) != 0 {
		t.Fatalf("lex errors: %v", errs)
	}
	file, perrs := New("t.th", toks, symtab.New()).Parse()
	for _, e := range perrs {
		t.Logf("parse diagnostic: %v", e)
	}
	return file
}

func TestParse_SimpleFunction(t *testing.T) {
	file := parseSource(t, "fn main() s32 { return 0; }")
	if len(file.Decls) != 1 {
		t.Fatalf("want 1 decl, got %d", len(file.Decls))
	}
	fn, ok := file.Decls[0].(*ast.Function)
	if !ok {
		t.Fatalf("decl is %T, want *ast.Function", file.Decls[0])
	}
	if fn.Name != "main" {
		t.Errorf("fn.Name = %q, want main", fn.Name)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("want 1 statement in body, got %d", len(fn.Body.Stmts))
	}
	if _, ok := fn.Body.Stmts[0].(*ast.Return); !ok {
		t.Errorf("body statement is %T, want *ast.Return", fn.Body.Stmts[0])
	}
}

func TestParse_ForwardDeclarationAllowsMutualRecursion(t *testing.T) {
	// S4 from spec.md §8: `f` is called before its definition.
	file := parseSource(t, `
		fn f() s32;
		fn g() s32 { return f(); }
		fn f() s32 { return 7; }
	`)
	if len(file.Decls) != 3 {
		t.Fatalf("want 3 decls, got %d", len(file.Decls))
	}
}

func TestParse_LocalWithoutInitializerIsUndefined(t *testing.T) {
	file := parseSource(t, `fn main() s32 { local x: s32; return 0; }`)
	fn := file.Decls[0].(*ast.Function)
	local := fn.Body.Stmts[0].(*ast.Local)
	if !local.Undefined {
		t.Error("local without initializer should be marked Undefined")
	}
}

func TestParse_IfElifElse(t *testing.T) {
	file := parseSource(t, `
		fn main() s32 {
			if true { return 1; } elif false { return 2; } else { return 3; }
		}
	`)
	fn := file.Decls[0].(*ast.Function)
	ifStmt := fn.Body.Stmts[0].(*ast.If)
	if len(ifStmt.Elifs) != 1 {
		t.Errorf("want 1 elif arm, got %d", len(ifStmt.Elifs))
	}
	if ifStmt.Else == nil {
		t.Error("expected an else block")
	}
}

func TestParse_FixedArrayLiteral(t *testing.T) {
	file := parseSource(t, `fn main() s32 { local x: array[s32; 3] = fixed [1,2,3]; return x[2]; }`)
	fn := file.Decls[0].(*ast.Function)
	local := fn.Body.Stmts[0].(*ast.Local)
	lit, ok := local.Init.(*ast.FixedArrayLit)
	if !ok {
		t.Fatalf("init is %T, want *ast.FixedArrayLit", local.Init)
	}
	if len(lit.Elems) != 3 {
		t.Errorf("want 3 elements, got %d", len(lit.Elems))
	}
}

func TestParse_BreakContinueOutsideLoopIsError(t *testing.T) {
	toks, _ := lexer.New("t.th", []byte(`fn main() s32 { break; return 0; }`)).Lex()
	_, errs := New("t.th", toks, symtab.New()).Parse()
	if len(errs) == 0 {
		t.Fatal("expected a diagnostic for break outside a loop")
	}
}
