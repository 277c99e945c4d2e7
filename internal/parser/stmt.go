package parser

import (
	"github.com/thrushlang/thrushc-go/internal/ast"
	"github.com/thrushlang/thrushc-go/internal/diagnostic"
	"github.com/thrushlang/thrushc-go/internal/symtab"
	"github.com/thrushlang/thrushc-go/internal/token"
	"github.com/thrushlang/thrushc-go/internal/types"
)

// parseBlock parses `{ stmt* }`, pushing/popping one local scope.
func (p *Parser) parseBlock() *ast.Block {
	sp := p.cur().Span
	p.expect(token.LBrace, "expected '{' opening a block")
	p.symbols.PushScope()
	defer p.symbols.PopScope()
	var stmts []ast.Stmt
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(token.RBrace, "expected '}' closing a block")
	return ast.NewBlock(sp, stmts)
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur().Kind {
	case token.KwLocal:
		return p.parseLocal()
	case token.KwConst:
		return p.parseConstDecl()
	case token.KwStatic:
		return p.parseStaticDecl()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwLoop:
		return p.parseLoop()
	case token.KwBreak:
		sp := p.cur().Span
		p.advance()
		if p.loopDepth == 0 {
			p.bag.Errorf(diagnostic.ESyntaxUnexpected, sp, "'break' outside of a loop")
		}
		p.expect(token.Semicolon, "expected ';' after break")
		return ast.NewBreak(sp)
	case token.KwContinue:
		sp := p.cur().Span
		p.advance()
		if p.loopDepth == 0 {
			p.bag.Errorf(diagnostic.ESyntaxUnexpected, sp, "'continue' outside of a loop")
		}
		p.expect(token.Semicolon, "expected ';' after continue")
		return ast.NewContinue(sp)
	case token.KwReturn:
		sp := p.cur().Span
		p.advance()
		if p.fnDepth == 0 {
			p.bag.Errorf(diagnostic.ESyntaxUnexpected, sp, "'return' outside of a function")
		}
		var value ast.Expr
		if !p.at(token.Semicolon) {
			value = p.parseExpr(bpLowest)
		}
		p.expect(token.Semicolon, "expected ';' after return")
		return ast.NewReturn(sp, value)
	case token.KwPass:
		sp := p.cur().Span
		p.advance()
		p.expect(token.Semicolon, "expected ';' after pass")
		return ast.NewPass(sp)
	case token.LBrace:
		return p.parseBlock()
	default:
		return p.parseExprOrMutStmt()
	}
}

func (p *Parser) parseExprOrMutStmt() ast.Stmt {
	sp := p.cur().Span
	e := p.parseExpr(bpLowest)
	if p.at(token.Assign) {
		p.advance()
		value := p.parseExpr(bpLowest)
		p.expect(token.Semicolon, "expected ';' after assignment")
		return ast.NewMut(sp, e, value)
	}
	p.expect(token.Semicolon, "expected ';' after expression statement")
	return ast.NewExprStmt(sp, e)
}

// parseLocal parses `local [mut] [modifiers] name : T [attrs] (= expr)? ;`.
func (p *Parser) parseLocal() *ast.Local {
	sp := p.cur().Span
	p.advance()
	mut := false
	if p.at(token.KwMut) {
		mut = true
		p.advance()
	}
	mods := p.parseModifiers()
	name := p.expect(token.Ident, "expected local variable name")
	p.expect(token.Colon, "expected ':' before local type")
	ty := p.parseType()
	attrs := p.parseAttributes()
	var init ast.Expr
	if p.at(token.Assign) {
		p.advance()
		init = p.parseExpr(bpLowest)
	}
	p.expect(token.Semicolon, "expected ';' after local declaration")
	local := ast.NewLocal(sp, name.RawLexeme, ty, init, mut)
	local.Attrs = attrs
	local.Mods = mods
	p.symbols.DeclareLocal(&symtab.Symbol{
		Name: name.RawLexeme, Kind: symtab.KindLocal, Type: ty, Span: sp, Mut: mut,
	})
	return local
}

func (p *Parser) parseConstDecl() *ast.ConstDecl {
	sp := p.cur().Span
	p.advance()
	name := p.expect(token.Ident, "expected constant name")
	p.expect(token.Colon, "expected ':' before constant type")
	ty := p.parseType()
	attrs := p.parseAttributes()
	p.expect(token.Assign, "constants require an initializer")
	init := p.parseExpr(bpLowest)
	p.expect(token.Semicolon, "expected ';' after constant declaration")
	decl := ast.NewConstDecl(sp, name.RawLexeme, ty, init)
	decl.Attrs = attrs
	kind := symtab.KindLocalConst
	if p.fnDepth == 0 {
		kind = symtab.KindGlobalConst
	}
	p.declareEitherScope(name.RawLexeme, kind, ty, sp, false)
	return decl
}

func (p *Parser) parseStaticDecl() *ast.StaticDecl {
	sp := p.cur().Span
	p.advance()
	mods := p.parseModifiers()
	name := p.expect(token.Ident, "expected static variable name")
	p.expect(token.Colon, "expected ':' before static type")
	ty := p.parseType()
	attrs := p.parseAttributes()
	var init ast.Expr
	if p.at(token.Assign) {
		p.advance()
		init = p.parseExpr(bpLowest)
	}
	p.expect(token.Semicolon, "expected ';' after static declaration")
	decl := ast.NewStaticDecl(sp, name.RawLexeme, ty, init)
	decl.Attrs = attrs
	decl.Mods = mods
	kind := symtab.KindLocalStatic
	if p.fnDepth == 0 {
		kind = symtab.KindGlobalStatic
	}
	p.declareEitherScope(name.RawLexeme, kind, ty, sp, true)
	return decl
}

func (p *Parser) declareEitherScope(name string, kind symtab.Kind, ty types.Type, sp interface{}, mut bool) {
	sym := &symtab.Symbol{Name: name, Kind: kind, Type: ty}
	if kind == symtab.KindGlobalConst || kind == symtab.KindGlobalStatic {
		p.symbols.DeclareGlobal(sym)
	} else {
		p.symbols.DeclareLocal(sym)
	}
}

// parseIf parses if/elif*/else, each arm owning its own block.
func (p *Parser) parseIf() *ast.If {
	sp := p.cur().Span
	p.advance()
	cond := p.parseExpr(bpLowest)
	then := p.parseBlock()
	var elifs []ast.ElifArm
	for p.at(token.KwElif) {
		p.advance()
		c := p.parseExpr(bpLowest)
		b := p.parseBlock()
		elifs = append(elifs, ast.ElifArm{Cond: c, Body: b})
	}
	var els *ast.Block
	if p.at(token.KwElse) {
		p.advance()
		els = p.parseBlock()
	}
	return ast.NewIf(sp, cond, then, elifs, els)
}

// parseWhile parses all three forms: `while cond {}`, `while (local: cond) {}`,
// `while local: cond {}`.
func (p *Parser) parseWhile() *ast.While {
	sp := p.cur().Span
	p.advance()
	var pre *ast.Local
	parenForm := p.at(token.LParen)
	if parenForm {
		p.advance()
	}
	if p.at(token.KwLocal) {
		pre = p.parseLocalNoSemi()
		p.expect(token.Colon, "expected ':' after while-local")
	}
	cond := p.parseExpr(bpLowest)
	if parenForm {
		p.expect(token.RParen, "expected ')' closing while condition")
	}
	p.loopDepth++
	body := p.parseBlock()
	p.loopDepth--
	return ast.NewWhile(sp, pre, cond, body)
}

// parseLocalNoSemi is used by the while-local forms, which bind a local
// without a trailing ';' before the ':' separator.
func (p *Parser) parseLocalNoSemi() *ast.Local {
	sp := p.cur().Span
	p.advance()
	mut := false
	if p.at(token.KwMut) {
		mut = true
		p.advance()
	}
	name := p.expect(token.Ident, "expected local name")
	var ty types.Type
	if p.at(token.Colon) {
		// A ':' here is always left as the while-local separator; this
		// local carries no declared type.
	}
	var init ast.Expr
	if p.at(token.Assign) {
		p.advance()
		init = p.parseExpr(bpLowest)
	}
	local := ast.NewLocal(sp, name.RawLexeme, ty, init, mut)
	p.symbols.DeclareLocal(&symtab.Symbol{Name: name.RawLexeme, Kind: symtab.KindLocal, Type: ty, Span: sp, Mut: mut})
	return local
}

// parseFor parses the three for-forms: infinite `for {}`, normalized
// infinite `for ;; {}`, and the full `for local; cond; actions {}` form,
// each with its own scope.
func (p *Parser) parseFor() *ast.For {
	sp := p.cur().Span
	p.advance()
	p.symbols.PushScope()
	defer p.symbols.PopScope()

	if p.at(token.LBrace) {
		p.loopDepth++
		body := p.parseBlock()
		p.loopDepth--
		return ast.NewFor(sp, nil, nil, nil, body)
	}
	if p.at(token.Semicolon) {
		p.advance()
		p.expect(token.Semicolon, "expected second ';' in infinite for")
		p.loopDepth++
		body := p.parseBlock()
		p.loopDepth--
		return ast.NewFor(sp, nil, nil, nil, body)
	}
	init := p.parseLocal()
	cond := p.parseExpr(bpLowest)
	p.expect(token.Semicolon, "expected ';' after for condition")
	step := p.parseExprOrMutStmt()
	p.loopDepth++
	body := p.parseBlock()
	p.loopDepth--
	return ast.NewFor(sp, init, cond, step, body)
}

func (p *Parser) parseLoop() *ast.Loop {
	sp := p.cur().Span
	p.advance()
	p.loopDepth++
	body := p.parseBlock()
	p.loopDepth--
	return ast.NewLoop(sp, body)
}
