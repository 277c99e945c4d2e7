package linter

import (
	"testing"

	"github.com/thrushlang/thrushc-go/internal/diagnostic"
	"github.com/thrushlang/thrushc-go/internal/lexer"
	"github.com/thrushlang/thrushc-go/internal/parser"
	"github.com/thrushlang/thrushc-go/internal/symtab"
	"github.com/thrushlang/thrushc-go/internal/typechecker"
)

func lintSource(t *testing.T, src string) []diagnostic.Diagnostic {
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
	if tcerrs := typechecker.New(symbols).Check(file); len(tcerrs) != 0 {
		t.Fatalf("typecheck errors: %v", tcerrs)
	}
	return New(symbols).Lint(file)
}

func TestLint_ReadBeforeFirstWriteIsDiagnosed(t *testing.T) {
	diags := lintSource(t, `fn main() s32 { local x: s32; return x; }`)
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for reading an uninitialized local")
	}
}

func TestLint_WriteBeforeReadIsClean(t *testing.T) {
	diags := lintSource(t, `fn main() s32 { local mut x: s32; x = 5; return x; }`)
	for _, d := range diags {
		if d.Message != "" && d.Code == diagnostic.ETypeMismatch {
			t.Fatalf("unexpected diagnostic: %v", d)
		}
	}
}

func TestLint_NeverMutatedLocalIsWarned(t *testing.T) {
	diags := lintSource(t, `fn main() s32 { local mut x: s32 = 1; return x; }`)
	found := false
	for _, d := range diags {
		if d.Severity == diagnostic.SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a warning for the mut local that is never mutated")
	}
}

func TestLint_MutatedLocalIsNotWarned(t *testing.T) {
	diags := lintSource(t, `fn main() s32 { local mut x: s32 = 1; x = 2; return x; }`)
	for _, d := range diags {
		if d.Severity == diagnostic.SeverityWarning {
			t.Fatalf("unexpected never-mutated warning for a local that is mutated: %v", d)
		}
	}
}

func TestLint_UnusedGlobalFunctionIsWarned(t *testing.T) {
	diags := lintSource(t, `
		fn helper() s32 { return 1; }
		fn main() s32 { return 0; }
	`)
	found := false
	for _, d := range diags {
		if d.Severity == diagnostic.SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a warning for the unused helper function")
	}
}
