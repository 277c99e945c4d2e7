package parser

import (
	"strconv"

	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/attribute"
	"github.com/thrushlang/thrushc-go/internal/diagnostic"
	"github.com/thrushlang/thrushc-go/internal/token"
)

func parseFloatLiteral(raw string) float64 {
	v, _ := strconv.ParseFloat(raw, 64)
	return v
}

// binding powers for the Pratt expression parser, lowest to highest.
const (
	bpLowest = iota
	bpLogical
	bpEquality
	bpRelational
	bpBitOr
	bpBitXor
	bpBitAnd
	bpShift
	bpAdditive
	bpMultiplicative
	bpUnary
	bpPostfix
)

var binOpOf = map[token.Kind]ast.BinOp{
	token.Plus: ast.OpAdd, token.Minus: ast.OpSub, token.Star: ast.OpMul,
	token.Slash: ast.OpDiv, token.Percent: ast.OpMod,
	token.Shl: ast.OpShl, token.Shr: ast.OpShr,
	token.Amp: ast.OpAnd, token.Pipe: ast.OpOr, token.Caret: ast.OpXor,
	token.Eq: ast.OpEq, token.Ne: ast.OpNe, token.Lt: ast.OpLt, token.Le: ast.OpLe,
	token.Gt: ast.OpGt, token.Ge: ast.OpGe,
	token.KwAnd: ast.OpLogAnd, token.KwOr: ast.OpLogOr,
}

func bindingPower(k token.Kind) int {
	switch k {
	case token.KwAnd, token.KwOr:
		return bpLogical
	case token.Eq, token.Ne:
		return bpEquality
	case token.Lt, token.Le, token.Gt, token.Ge:
		return bpRelational
	case token.Pipe:
		return bpBitOr
	case token.Caret:
		return bpBitXor
	case token.Amp:
		return bpBitAnd
	case token.Shl, token.Shr:
		return bpShift
	case token.Plus, token.Minus:
		return bpAdditive
	case token.Star, token.Slash, token.Percent:
		return bpMultiplicative
	default:
		return bpLowest
	}
}

// parseExpr is the Pratt-style precedence-climbing entry point.
func (p *Parser) parseExpr(minBp int) ast.Expr {
	left := p.parseUnary()
	left = p.maybeAs(left)
	for {
		bp := bindingPower(p.cur().Kind)
		if bp <= minBp || bp == bpLowest {
			break
		}
		op, ok := binOpOf[p.cur().Kind]
		if !ok {
			break
		}
		sp := p.cur().Span
		p.advance()
		right := p.parseExpr(bp)
		left = ast.NewBinaryOp(sp, op, left, right)
		left = p.maybeAs(left)
	}
	return left
}

func (p *Parser) maybeAs(e ast.Expr) ast.Expr {
	for p.at(token.KwAs) {
		sp := p.cur().Span
		p.advance()
		target := p.parseType()
		e = ast.NewAs(sp, e, target)
	}
	return e
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur().Kind {
	case token.Minus:
		sp := p.cur().Span
		p.advance()
		return ast.NewUnaryOp(sp, ast.OpNeg, p.parseExpr(bpUnary))
	case token.Bang:
		sp := p.cur().Span
		p.advance()
		return ast.NewUnaryOp(sp, ast.OpNot, p.parseExpr(bpUnary))
	case token.PlusPlus:
		sp := p.cur().Span
		p.advance()
		return ast.NewUnaryOp(sp, ast.OpPreInc, p.parseExpr(bpUnary))
	case token.MinusMinus:
		sp := p.cur().Span
		p.advance()
		return ast.NewUnaryOp(sp, ast.OpPreDec, p.parseExpr(bpUnary))
	case token.Amp:
		sp := p.cur().Span
		p.advance()
		return ast.NewDirectRef(sp, p.parseExpr(bpUnary))
	case token.Star:
		sp := p.cur().Span
		p.advance()
		return ast.NewDeref(sp, p.parseExpr(bpUnary))
	default:
		return p.parsePostfix(p.parsePrimary())
	}
}

func (p *Parser) parsePostfix(e ast.Expr) ast.Expr {
	for {
		switch p.cur().Kind {
		case token.LParen:
			sp := p.cur().Span
			p.advance()
			var args []ast.Expr
			for !p.at(token.RParen) && !p.at(token.EOF) {
				args = append(args, p.parseExpr(bpLowest))
				if !p.at(token.RParen) {
					p.expect(token.Comma, "expected ',' between call arguments")
				}
			}
			p.expect(token.RParen, "expected ')' closing call arguments")
			if ref, ok := e.(*ast.Reference); ok {
				_ = ref
			}
			e = ast.NewCall(sp, e, args)
		case token.Dot:
			p.advance()
			name := p.expect(token.Ident, "expected field name after '.'")
			e = ast.NewProperty(name.Span, e, name.RawLexeme)
		case token.LBracket:
			sp := p.cur().Span
			p.advance()
			idx := p.parseExpr(bpLowest)
			p.expect(token.RBracket, "expected ']' closing index expression")
			e = ast.NewIndex(sp, e, idx)
		case token.PlusPlus:
			sp := p.cur().Span
			p.advance()
			e = ast.NewUnaryOp(sp, ast.OpPostInc, e)
		case token.MinusMinus:
			sp := p.cur().Span
			p.advance()
			e = ast.NewUnaryOp(sp, ast.OpPostDec, e)
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case token.Integer:
		p.advance()
		return ast.NewInteger(t.Span, t.RawLexeme, parseUintLiteral(t.RawLexeme), true)
	case token.Float:
		p.advance()
		return ast.NewFloatLit(t.Span, t.RawLexeme, parseFloatLiteral(t.RawLexeme))
	case token.Char:
		p.advance()
		return ast.NewCharLit(t.Span, t.RawBytes[0])
	case token.Str:
		p.advance()
		return ast.NewStrLit(t.Span, string(t.RawBytes), t.RawBytes, ast.CString)
	case token.KwTrue:
		p.advance()
		return ast.NewBoolLit(t.Span, true)
	case token.KwFalse:
		p.advance()
		return ast.NewBoolLit(t.Span, false)
	case token.KwNullptr:
		p.advance()
		return ast.NewNullPtr(t.Span)
	case token.KwUnreachable:
		p.advance()
		return ast.NewUnreachable(t.Span)
	case token.LParen:
		p.advance()
		inner := p.parseExpr(bpLowest)
		p.expect(token.RParen, "expected ')' closing grouped expression")
		return ast.NewGroup(t.Span, inner)
	case token.KwNew:
		return p.parseConstructor()
	case token.KwFixed:
		p.advance()
		p.expect(token.LBracket, "expected '[' after fixed")
		elems := p.parseExprList(token.RBracket)
		p.expect(token.RBracket, "expected ']' closing fixed array literal")
		return ast.NewFixedArrayLit(t.Span, elems)
	case token.LBracket:
		p.advance()
		elems := p.parseExprList(token.RBracket)
		p.expect(token.RBracket, "expected ']' closing array literal")
		return ast.NewArrayLit(t.Span, elems)
	case token.KwDeref:
		p.advance()
		return ast.NewDeref(t.Span, p.parseExpr(bpUnary))
	case token.KwAsm:
		return p.parseAsmValue()
	case token.KwAlloc:
		p.advance()
		p.expect(token.LBracket, "expected '[' after alloc")
		ty := p.parseType()
		p.expect(token.RBracket, "expected ']' closing alloc[T]")
		return ast.NewLLI(t.Span, ast.LLIAlloc, ty, nil, nil)
	case token.KwLoad:
		p.advance()
		target := p.parseExpr(bpUnary)
		return ast.NewLLI(t.Span, ast.LLILoad, nil, target, nil)
	case token.KwWrite:
		p.advance()
		target := p.parseExpr(bpUnary)
		p.expect(token.Comma, "expected ',' between write target and value")
		value := p.parseExpr(bpLowest)
		return ast.NewLLI(t.Span, ast.LLIWrite, nil, target, value)
	case token.KwAddress:
		p.advance()
		target := p.parseExpr(bpUnary)
		return ast.NewLLI(t.Span, ast.LLIAddress, nil, target, nil)
	case token.KwSizeof:
		p.advance()
		p.expect(token.LParen, "expected '(' after sizeof")
		ty := p.parseType()
		p.expect(token.RParen, "expected ')' closing sizeof(T)")
		return ast.NewBuiltin(t.Span, ast.BuiltinSizeof, ty, nil)
	case token.KwAlignof:
		p.advance()
		p.expect(token.LParen, "expected '(' after alignof")
		ty := p.parseType()
		p.expect(token.RParen, "expected ')' closing alignof(T)")
		return ast.NewBuiltin(t.Span, ast.BuiltinAlignof, ty, nil)
	case token.KwHalloc:
		p.advance()
		p.expect(token.LBracket, "expected '[' after halloc")
		ty := p.parseType()
		p.expect(token.RBracket, "expected ']' closing halloc[T]")
		return ast.NewBuiltin(t.Span, ast.BuiltinHalloc, ty, nil)
	case token.KwMemset, token.KwMemmove, token.KwMemcpy:
		return p.parseMemBuiltin()
	case token.Ident:
		p.advance()
		// Direct vs. indirect call is disambiguated later by the type
		// checker on the resolved symbol's Fn-ness (spec.md §4.4); both
		// parse here as Reference followed by a Call in parsePostfix.
		return ast.NewReference(t.Span, t.RawLexeme)
	default:
		p.bag.Errorf(diagnostic.ESyntaxUnexpected, t.Span, "unexpected token %v in expression", t.Kind)
		p.synchronize()
		return ast.NewReference(t.Span, "<error>")
	}
}

func (p *Parser) parseExprList(closing token.Kind) []ast.Expr {
	var out []ast.Expr
	for !p.at(closing) && !p.at(token.EOF) {
		out = append(out, p.parseExpr(bpLowest))
		if !p.at(closing) {
			p.expect(token.Comma, "expected ','")
		}
	}
	return out
}

func (p *Parser) parseConstructor() ast.Expr {
	sp := p.cur().Span
	p.advance() // 'new'
	name := p.expect(token.Ident, "expected struct name after 'new'")
	p.expect(token.LBrace, "expected '{' opening constructor fields")
	var fields []string
	var values []ast.Expr
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fname := p.expect(token.Ident, "expected field name")
		p.expect(token.Colon, "expected ':' after field name")
		val := p.parseExpr(bpLowest)
		fields = append(fields, fname.RawLexeme)
		values = append(values, val)
		if !p.at(token.RBrace) {
			p.expect(token.Comma, "expected ',' between constructor fields")
		}
	}
	p.expect(token.RBrace, "expected '}' closing constructor")
	return ast.NewConstructor(sp, name.RawLexeme, fields, values)
}

func (p *Parser) parseMemBuiltin() ast.Expr {
	t := p.cur()
	var kind ast.BuiltinKind
	switch t.Kind {
	case token.KwMemset:
		kind = ast.BuiltinMemset
	case token.KwMemmove:
		kind = ast.BuiltinMemmove
	case token.KwMemcpy:
		kind = ast.BuiltinMemcpy
	}
	p.advance()
	p.expect(token.LParen, "expected '(' after memory builtin")
	args := p.parseExprList(token.RParen)
	p.expect(token.RParen, "expected ')' closing memory builtin arguments")
	return ast.NewBuiltin(t.Span, kind, nil, args)
}

// parseAsmValue parses `asm { template : constraints : operand, ... }`.
func (p *Parser) parseAsmValue() ast.Expr {
	sp := p.cur().Span
	p.advance()
	attrs := p.parseAttributes()
	p.expect(token.LBrace, "expected '{' opening inline asm block")
	template := ""
	if p.at(token.Str) {
		template = string(p.advance().RawBytes)
	}
	constraints := ""
	if p.at(token.Colon) {
		p.advance()
		if p.at(token.Str) {
			constraints = string(p.advance().RawBytes)
		}
	}
	var operands []ast.Expr
	if p.at(token.Colon) {
		p.advance()
		operands = p.parseExprList(token.RBrace)
	}
	p.expect(token.RBrace, "expected '}' closing inline asm block")
	dialect := ast.Intel
	for _, a := range attrs.All() {
		if a.Kind == attribute.AsmSyntax && a.Arg == "att" {
			dialect = ast.ATT
		}
	}
	sideEffects := attrs.Has(attribute.AsmSideEffects)
	return ast.NewAsmValue(sp, template, constraints, operands, dialect, sideEffects)
}
