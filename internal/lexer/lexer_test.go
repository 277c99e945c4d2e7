package lexer

import (
	"testing"

	"github.com/thrushlang/thrushc-go/internal/token"
)

func TestLex_Punctuation(t *testing.T) {
	toks, errs := New("t.th", []byte("fn main() s32 { return 0; }")).Lex()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Kind != token.KwFn {
		t.Fatalf("toks[0].Kind = %v, want KwFn", toks[0].Kind)
	}
	if toks[len(toks)-1].Kind != token.EOF {
		t.Fatalf("last token must be EOF, got %v", toks[len(toks)-1].Kind)
	}
}

func TestLex_SpanInvariant(t *testing.T) {
	src := []byte("local x: s32 = 42;")
	toks, errs := New("t.th", src).Lex()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	for _, tk := range toks {
		if tk.Span.StartCol > tk.Span.EndCol {
			t.Errorf("token %v has StartCol > EndCol", tk)
		}
	}
}

func TestLex_IntegerRadixes(t *testing.T) {
	cases := []struct {
		src  string
		kind token.Kind
	}{
		{"42", token.Integer},
		{"0x2A", token.Integer},
		{"0b101010", token.Integer},
		{"0o52", token.Integer},
		{"1_000_000", token.Integer},
		{"3.14", token.Float},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			toks, errs := New("t.th", []byte(c.src)).Lex()
			if len(errs) != 0 {
				t.Fatalf("unexpected errors for %q: %v", c.src, errs)
			}
			if toks[0].Kind != c.kind {
				t.Errorf("Lex(%q)[0].Kind = %v, want %v", c.src, toks[0].Kind, c.kind)
			}
		})
	}
}

func TestLex_DuplicateRadixPrefixFails(t *testing.T) {
	_, errs := New("t.th", []byte("0x0x1")).Lex()
	if len(errs) == 0 {
		t.Fatal("expected a lexical error for duplicate radix prefix")
	}
}

func TestLex_TooManyDotsFails(t *testing.T) {
	_, errs := New("t.th", []byte("1.2.3")).Lex()
	if len(errs) == 0 {
		t.Fatal("expected a lexical error for multiple '.' in a numeric literal")
	}
}

func TestLex_StringEscapes(t *testing.T) {
	toks, errs := New("t.th", []byte(`"hi\n"`)).Lex()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if string(toks[0].RawBytes) != "hi\n" {
		t.Errorf("string literal decoded to %q, want %q", toks[0].RawBytes, "hi\n")
	}
}

func TestLex_ASCIILexemeIsLinkerSafe(t *testing.T) {
	toks, errs := New("t.th", []byte("café")).Lex()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	for _, r := range toks[0].ASCIILexeme {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '@'
		if !ok {
			t.Errorf("ascii_lexeme %q contains non [A-Za-z0-9_@] rune %q", toks[0].ASCIILexeme, r)
		}
	}
}
