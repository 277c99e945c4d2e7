// Package parser implements the two-pass parser from spec.md §4.3: a
// forward-declaration pre-pass followed by a recursive-descent/Pratt full
// pass, backed by internal/symtab for out-of-order and mutually recursive
// references.
package parser

import (
	"strconv"
	"strings"

	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/diagnostic"
	"github.com/thrushlang/thrushc-go/internal/span"
	"github.com/thrushlang/thrushc-go/internal/symtab"
	"github.com/thrushlang/thrushc-go/internal/token"
)

// Parser holds the token cursor, the shared symbol table, and the
// diagnostic accumulator threaded through both passes.
type Parser struct {
	file    string
	toks    []token.Token
	pos     int
	symbols *symtab.Table
	bag     diagnostic.Bag

	loopDepth int
	fnDepth   int
}

func New(file string, toks []token.Token, symbols *symtab.Table) *Parser {
	return &Parser{file: file, toks: toks, symbols: symbols}
}

// Parse runs the forward-declaration pre-pass then the full pass, returning
// the file AST and every diagnostic accumulated across both.
func (p *Parser) Parse() (*ast.File, []diagnostic.Diagnostic) {
	p.forwardPass()
	p.pos = 0
	decls := p.fullPass()
	return &ast.File{Path: p.file, Decls: decls}, p.bag.All()
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(off int) token.Token {
	i := p.pos + off
	if i >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[i]
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) prevSpan() span.Span {
	if p.pos == 0 {
		return span.Zero
	}
	return p.toks[p.pos-1].Span
}

// expect consumes the current token if it matches k, else emits a
// diagnostic with an expected-token hint and does not advance (so recovery
// can resynchronize from here).
func (p *Parser) expect(k token.Kind, help string) token.Token {
	if p.at(k) {
		return p.advance()
	}
	p.bag.Push(diagnostic.New(diagnostic.SeverityError, diagnostic.ESyntaxUnexpected, p.cur().Span,
		"unexpected token "+p.cur().Kind.String()).WithHelp(help))
	return p.cur()
}

// synchronize advances until a synchronizing token (`; } )` or EOF), so one
// statement's error never aborts the rest of the file (spec.md §4.3).
func (p *Parser) synchronize() {
	for {
		switch p.cur().Kind {
		case token.Semicolon:
			p.advance()
			return
		case token.RBrace, token.RParen, token.EOF:
			return
		default:
			p.advance()
		}
	}
}

func parseUintLiteral(raw string) uint64 {
	s := strings.ReplaceAll(raw, "_", "")
	radix := 10
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		radix = 16
		s = s[2:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		radix = 2
		s = s[2:]
	case strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O"):
		radix = 8
		s = s[2:]
	}
	v, _ := strconv.ParseUint(s, radix, 64)
	return v
}
