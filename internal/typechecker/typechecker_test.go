package typechecker

import (
	"testing"

	"github.com/thrushlang/thrushc-go/internal/diagnostic"
	"github.com/thrushlang/thrushc-go/internal/lexer"
	"github.com/thrushlang/thrushc-go/internal/parser"
	"github.com/thrushlang/thrushc-go/internal/symtab"
)

func checkSource(t *testing.T, src string) []diagnostic.Diagnostic {
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
	return New(symbols).Check(file)
}

func TestCheck_ReturnTypeMismatchIsDiagnosed(t *testing.T) {
	diags := checkSource(t, `fn main() bool { return 0; }`)
	if len(diags) == 0 {
		t.Fatal("expected a type mismatch diagnostic for returning s32 where bool is expected")
	}
}

func TestCheck_ValidArithmeticIsClean(t *testing.T) {
	diags := checkSource(t, `fn main() s32 { local x: s32 = 1 + 2 * 3; return x; }`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestCheck_CallArityMismatchIsDiagnosed(t *testing.T) {
	diags := checkSource(t, `
		fn add(a: s32, b: s32) s32 { return a + b; }
		fn main() s32 { return add(1); }
	`)
	found := false
	for _, d := range diags {
		if d.Code == diagnostic.ETypeMismatch {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a call-arity type mismatch diagnostic")
	}
}

func TestCheck_UndeclaredIdentifierIsDiagnosed(t *testing.T) {
	diags := checkSource(t, `fn main() s32 { return unknown_name; }`)
	found := false
	for _, d := range diags {
		if d.Code == diagnostic.EScopeUndeclared {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an undeclared-identifier diagnostic")
	}
}

func TestCheck_AssignToImmutableIsDiagnosed(t *testing.T) {
	diags := checkSource(t, `fn main() s32 { local x: s32 = 1; x = 2; return x; }`)
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for assigning to an immutable local")
	}
}

func TestCheck_MutableAssignIsClean(t *testing.T) {
	diags := checkSource(t, `fn main() s32 { local mut x: s32 = 1; x = 2; return x; }`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestCheck_AddressOfNonPlaceIsDiagnosed(t *testing.T) {
	diags := checkSource(t, `fn main() s32 { local x: ptr[s32] = &1; return 0; }`)
	found := false
	for _, d := range diags {
		if d.Code == diagnostic.EAddrNotAllocated1 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an address-of-non-place diagnostic")
	}
}
